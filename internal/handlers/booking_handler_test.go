package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookings struct {
	createResult *models.BookingResult
	createErr    error
	lastActor    services.Actor
	lastRequest  *models.CreateBookingRequest

	booking  *models.Booking
	bookings []models.Booking
	offers   []models.Room
	err      error
}

func (s *stubBookings) Create(_ context.Context, actor services.Actor, req *models.CreateBookingRequest) (*models.BookingResult, error) {
	s.lastActor = actor
	s.lastRequest = req
	return s.createResult, s.createErr
}

func (s *stubBookings) Cancel(_ context.Context, actor services.Actor, requestID uuid.UUID) (*models.Booking, error) {
	s.lastActor = actor
	if s.err != nil {
		return nil, s.err
	}
	b := *s.booking
	b.Status = models.BookingStatusCancelled
	return &b, nil
}

func (s *stubBookings) FindAll(_ context.Context, actor services.Actor) ([]models.Booking, error) {
	if !actor.IsAdmin() {
		return nil, services.ErrAccessDenied
	}
	return s.bookings, s.err
}

func (s *stubBookings) FindAllByUsername(_ context.Context, actor services.Actor, username string) ([]models.Booking, error) {
	if !actor.CanAccess(username) {
		return nil, services.ErrAccessDenied
	}
	return s.bookings, s.err
}

func (s *stubBookings) FindByRequestID(_ context.Context, requestID uuid.UUID) (*models.Booking, error) {
	if s.booking == nil || s.booking.RequestID != requestID {
		return nil, services.ErrBookingNotFound
	}
	return s.booking, nil
}

func (s *stubBookings) GetOffers(context.Context) ([]models.Room, error) {
	return s.offers, s.err
}

func setupBookingRouter(stub *stubBookings, username string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewBookingHandler(stub, testLogger())

	router := gin.New()
	group := router.Group("/api/v1/booking", withUser(username, role))
	{
		group.GET("", handler.FindAll)
		group.POST("", handler.Create)
		group.GET("/offers", handler.GetOffers)
		group.GET("/by-username/:username", handler.FindAllByUsername)
		group.GET("/:requestId", handler.FindByRequestID)
		group.DELETE("/:requestId", handler.Cancel)
	}
	return router
}

func TestBookingHandler_Create(t *testing.T) {
	roomID := uuid.New()
	requestID := uuid.New()

	t.Run("Confirmed", func(t *testing.T) {
		start := models.MustParseDate("2026-01-16")
		end := models.MustParseDate("2026-01-20")
		stub := &stubBookings{createResult: &models.BookingResult{
			Success:   true,
			Message:   "Booking confirmed",
			RequestID: &requestID,
			RoomID:    &roomID,
			StartDate: &start,
			EndDate:   &end,
		}}
		router := setupBookingRouter(stub, "alice", models.RoleUser)

		w := doJSON(t, router, "POST", "/api/v1/booking", map[string]interface{}{
			"roomId":    roomID,
			"startDate": "2026-01-16",
			"endDate":   "2026-01-20",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var result models.BookingResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.True(t, result.Success)
		assert.Equal(t, requestID, *result.RequestID)
		assert.Equal(t, "2026-01-20", result.EndDate.String())

		assert.Equal(t, "alice", stub.lastActor.Username)
		assert.Equal(t, models.RoleUser, stub.lastActor.Role)
		assert.NotEmpty(t, stub.lastActor.UserAgent)
		assert.Equal(t, roomID, *stub.lastRequest.RoomID)
		assert.False(t, stub.lastRequest.AutoSelect)
	})

	t.Run("Rejected is still 200", func(t *testing.T) {
		stub := &stubBookings{createResult: &models.BookingResult{Success: false, Message: "Room is not available", RequestID: &requestID}}
		router := setupBookingRouter(stub, "alice", models.RoleUser)

		w := doJSON(t, router, "POST", "/api/v1/booking", `{"autoSelect":true,"startDate":"2026-01-16","endDate":"2026-01-20"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":false`)
		assert.Contains(t, w.Body.String(), "Room is not available")
		assert.True(t, stub.lastRequest.AutoSelect)
	})

	t.Run("Malformed date", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{}, "alice", models.RoleUser)

		w := doJSON(t, router, "POST", "/api/v1/booking", `{"roomId":"`+roomID.String()+`","startDate":"16/01/2026","endDate":"2026-01-20"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	})

	t.Run("Service validation error", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{createErr: services.ErrInvalidRange}, "alice", models.RoleUser)

		w := doJSON(t, router, "POST", "/api/v1/booking", `{"roomId":"`+roomID.String()+`","startDate":"2026-01-20","endDate":"2026-01-16"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("No rooms for auto-select", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{createErr: services.ErrNoRoomsAvailable}, "alice", models.RoleUser)

		w := doJSON(t, router, "POST", "/api/v1/booking", `{"autoSelect":true,"startDate":"2026-01-16","endDate":"2026-01-20"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookingHandler_Cancel(t *testing.T) {
	booking := &models.Booking{
		ID:        uuid.New(),
		RequestID: uuid.New(),
		Username:  "alice",
		RoomID:    uuid.New(),
		Status:    models.BookingStatusConfirmed,
	}

	t.Run("Owner cancels", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{booking: booking}, "alice", models.RoleUser)

		w := doJSON(t, router, "DELETE", "/api/v1/booking/"+booking.RequestID.String(), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var got models.Booking
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, models.BookingStatusCancelled, got.Status)
	})

	t.Run("Access denied", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{booking: booking, err: services.ErrAccessDenied}, "bob", models.RoleUser)

		w := doJSON(t, router, "DELETE", "/api/v1/booking/"+booking.RequestID.String(), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ACCESS_DENIED", decodeError(t, w).Code)
	})

	t.Run("Invalid request id", func(t *testing.T) {
		router := setupBookingRouter(&stubBookings{booking: booking}, "alice", models.RoleUser)

		w := doJSON(t, router, "DELETE", "/api/v1/booking/42", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBookingHandler_Queries(t *testing.T) {
	booking := models.Booking{ID: uuid.New(), RequestID: uuid.New(), Username: "alice", Status: models.BookingStatusConfirmed}
	stub := &stubBookings{booking: &booking, bookings: []models.Booking{booking}}

	t.Run("FindAll requires admin", func(t *testing.T) {
		w := doJSON(t, setupBookingRouter(stub, "alice", models.RoleUser), "GET", "/api/v1/booking", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSON(t, setupBookingRouter(stub, "root", models.RoleAdmin), "GET", "/api/v1/booking", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), booking.RequestID.String())
	})

	t.Run("By username", func(t *testing.T) {
		w := doJSON(t, setupBookingRouter(stub, "alice", models.RoleUser), "GET", "/api/v1/booking/by-username/alice", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, setupBookingRouter(stub, "bob", models.RoleUser), "GET", "/api/v1/booking/by-username/alice", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Empty list is an array", func(t *testing.T) {
		empty := &stubBookings{}
		w := doJSON(t, setupBookingRouter(empty, "carol", models.RoleUser), "GET", "/api/v1/booking/by-username/carol", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("By request id", func(t *testing.T) {
		router := setupBookingRouter(stub, "bob", models.RoleUser)

		w := doJSON(t, router, "GET", "/api/v1/booking/"+booking.RequestID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/v1/booking/"+uuid.New().String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Offers route is not a request id", func(t *testing.T) {
		offers := &stubBookings{offers: []models.Room{{ID: uuid.New(), Number: "101", TimeBooked: 3}}}
		w := doJSON(t, setupBookingRouter(offers, "alice", models.RoleUser), "GET", "/api/v1/booking/offers", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"timeBooked":3`)
	})
}
