package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/models"
)

// HotelCatalog serves hotel reads and admin writes
type HotelCatalog interface {
	List(ctx context.Context) ([]models.Hotel, error)
	Create(ctx context.Context, req *models.CreateHotelRequest) (*models.Hotel, error)
}

// HotelHandler handles the /api/v1/hotels endpoints
type HotelHandler struct {
	hotels HotelCatalog
	logger *logrus.Logger
}

// NewHotelHandler creates a new HotelHandler
func NewHotelHandler(hotels HotelCatalog, logger *logrus.Logger) *HotelHandler {
	return &HotelHandler{hotels: hotels, logger: logger}
}

// List handles GET /api/v1/hotels
func (h *HotelHandler) List(c *gin.Context) {
	hotels, err := h.hotels.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(hotels))
}

// Create handles POST /api/v1/hotels (ADMIN), optionally with nested rooms
func (h *HotelHandler) Create(c *gin.Context) {
	var req models.CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "invalid request: "+err.Error())
		return
	}

	hotel, err := h.hotels.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, hotel)
}
