package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/stretchr/testify/assert"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func TestNewLogger(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").Level)
	assert.Equal(t, logrus.InfoLevel, NewLogger("loud").Level)
}

func TestNewRouter(t *testing.T) {
	cfg := &config.Config{
		Service: config.ServiceInventory,
		Server:  config.ServerConfig{Environment: "production"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "DELETE"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
	}
	logger := NewLogger("error")
	router := NewRouter(cfg, "test", okPinger{}, logger)

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "inventory-service")
	})

	t.Run("Metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "go_goroutines")
	})

	t.Run("CORS preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
