package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/middleware"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/internal/services"
	"github.com/staybook/reservation-backend/internal/utils"
)

// BookingManager is the orchestrator as seen by the HTTP layer
type BookingManager interface {
	Create(ctx context.Context, actor services.Actor, req *models.CreateBookingRequest) (*models.BookingResult, error)
	Cancel(ctx context.Context, actor services.Actor, requestID uuid.UUID) (*models.Booking, error)
	FindAll(ctx context.Context, actor services.Actor) ([]models.Booking, error)
	FindAllByUsername(ctx context.Context, actor services.Actor, username string) ([]models.Booking, error)
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Booking, error)
	GetOffers(ctx context.Context) ([]models.Room, error)
}

// BookingHandler handles the /api/v1/booking endpoints
type BookingHandler struct {
	bookings BookingManager
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings BookingManager, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		logger:   logger,
	}
}

// ============================================================================
// CREATE - POST /api/v1/booking
// ============================================================================

// Create runs the booking saga. A room that turns out to be unavailable is
// still a 200 with success=false.
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request: "+err.Error())
		return
	}

	result, err := h.bookings.Create(c.Request.Context(), actorFrom(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ============================================================================
// CANCEL - DELETE /api/v1/booking/:requestId
// ============================================================================

// Cancel releases the room and marks the booking CANCELLED
func (h *BookingHandler) Cancel(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), actorFrom(c), requestID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ============================================================================
// QUERIES
// ============================================================================

// FindAll handles GET /api/v1/booking
func (h *BookingHandler) FindAll(c *gin.Context) {
	bookings, err := h.bookings.FindAll(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(bookings))
}

// FindAllByUsername handles GET /api/v1/booking/by-username/:username
func (h *BookingHandler) FindAllByUsername(c *gin.Context) {
	bookings, err := h.bookings.FindAllByUsername(c.Request.Context(), actorFrom(c), c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(bookings))
}

// FindByRequestID handles GET /api/v1/booking/:requestId
func (h *BookingHandler) FindByRequestID(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	booking, err := h.bookings.FindByRequestID(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetOffers handles GET /api/v1/booking/offers
func (h *BookingHandler) GetOffers(c *gin.Context) {
	rooms, err := h.bookings.GetOffers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rooms))
}

// ============================================================================
// HELPERS
// ============================================================================

func actorFrom(c *gin.Context) services.Actor {
	userCtx := middleware.MustGetUserContext(c)
	return services.Actor{
		Username:  userCtx.Username,
		Role:      userCtx.Role,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		if name == "requestId" {
			validationError(c, services.ErrInvalidRequestID.Error())
		} else {
			validationError(c, "invalid "+name+": must be a UUID")
		}
		return uuid.Nil, false
	}
	return id, true
}

// nonNil keeps empty lists serialized as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
