package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/models"
	"github.com/staybook/reservation-backend/internal/services"
)

// Ledger is the reservation ledger as seen by the HTTP layer
type Ledger interface {
	ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error)
	Release(ctx context.Context, roomID, requestID uuid.UUID) error
	GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error)
}

// RoomCatalog serves room reads and admin writes
type RoomCatalog interface {
	Recommend(ctx context.Context, limit, offset int) ([]models.Room, error)
	ListAvailable(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	CreateRoom(ctx context.Context, req *models.CreateRoomRequest) (*models.Room, error)
}

// RoomHandler handles the /api/v1/rooms endpoints of the inventory service
type RoomHandler struct {
	ledger Ledger
	rooms  RoomCatalog
	logger *logrus.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(ledger Ledger, rooms RoomCatalog, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		ledger: ledger,
		rooms:  rooms,
		logger: logger,
	}
}

// ConfirmAvailability handles POST /api/v1/rooms/:id/confirm-availability.
// The body of a 200 is a bare JSON boolean.
func (h *RoomHandler) ConfirmAvailability(c *gin.Context) {
	roomID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ConfirmAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request: "+err.Error())
		return
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		respondError(c, h.logger, services.ErrInvalidRequestID)
		return
	}
	if req.StartDate == nil || req.EndDate == nil {
		validationError(c, "startDate and endDate are required")
		return
	}

	confirmed, err := h.ledger.ConfirmAvailability(c.Request.Context(), roomID, requestID, *req.StartDate, *req.EndDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, confirmed)
}

// Release handles POST /api/v1/rooms/:id/release/:requestId
func (h *RoomHandler) Release(c *gin.Context) {
	roomID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	if err := h.ledger.Release(c.Request.Context(), roomID, requestID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusOK)
}

// GetReservation handles GET /api/v1/rooms/reservations/:requestId
func (h *RoomHandler) GetReservation(c *gin.Context) {
	requestID, ok := parseUUIDParam(c, "requestId")
	if !ok {
		return
	}

	reservation, err := h.ledger.GetReservation(c.Request.Context(), requestID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// Recommend handles GET /api/v1/rooms/recommend?limit=&offset=
func (h *RoomHandler) Recommend(c *gin.Context) {
	limit, ok := parseIntQuery(c, "limit")
	if !ok {
		return
	}
	offset, ok := parseIntQuery(c, "offset")
	if !ok {
		return
	}

	rooms, err := h.rooms.Recommend(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rooms))
}

// ListAvailable handles GET /api/v1/rooms
func (h *RoomHandler) ListAvailable(c *gin.Context) {
	rooms, err := h.rooms.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(rooms))
}

// GetRoom handles GET /api/v1/rooms/:id
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /api/v1/rooms (ADMIN)
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request: "+err.Error())
		return
	}
	if req.HotelID == uuid.Nil {
		validationError(c, "hotelId is required")
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// parseIntQuery reads an optional non-negative integer query parameter
func parseIntQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		validationError(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
