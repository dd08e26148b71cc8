package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/models"
)

// HotelService manages hotels and their initial rooms
type HotelService struct {
	hotels HotelStore
	logger *logrus.Logger
}

// NewHotelService creates a new HotelService
func NewHotelService(hotels HotelStore, logger *logrus.Logger) *HotelService {
	return &HotelService{hotels: hotels, logger: logger}
}

// List returns every hotel with its rooms
func (s *HotelService) List(ctx context.Context) ([]models.Hotel, error) {
	return s.hotels.List(ctx)
}

// Create stores a hotel together with any nested rooms
func (s *HotelService) Create(ctx context.Context, req *models.CreateHotelRequest) (*models.Hotel, error) {
	hotel := &models.Hotel{
		Name:    req.Name,
		Address: req.Address,
		Rooms:   make([]models.Room, 0, len(req.Rooms)),
	}
	for _, r := range req.Rooms {
		hotel.Rooms = append(hotel.Rooms, models.Room{
			Number:    r.Number,
			Available: r.Available == nil || *r.Available,
		})
	}

	if err := s.hotels.CreateWithRooms(ctx, hotel); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"hotel_id": hotel.ID,
		"rooms":    len(hotel.Rooms),
	}).Info("Hotel created")

	return hotel, nil
}
