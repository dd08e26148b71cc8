package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/staybook/reservation-backend/internal/utils"
	"golang.org/x/time/rate"
)

// rateLimiterStore holds one token bucket per caller
type rateLimiterStore struct {
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

func newRateLimiterStore(cfg config.RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:    cfg.Burst,
	}
}

func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimit limits requests per authenticated username, falling back to
// the client IP for anonymous callers
func RateLimit(cfg config.RateLimitConfig, logger *logrus.Logger) gin.HandlerFunc {
	store := newRateLimiterStore(cfg)

	return func(c *gin.Context) {
		key := "ip:" + utils.GetRealIP(c)
		if userCtx, ok := GetUserContext(c); ok {
			key = "user:" + userCtx.Username
		}

		if !store.getLimiter(key).Allow() {
			logger.WithFields(logrus.Fields{
				"key":  key,
				"path": c.Request.URL.Path,
			}).Warn("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests. Try again later.",
				"code":    "RATE_LIMIT_EXCEEDED",
			})
			return
		}
		c.Next()
	}
}
