package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/models"
)

// RoomStore is the room persistence used by RoomService
type RoomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	ListRecommended(ctx context.Context, limit, offset int) ([]models.Room, error)
	ListAvailable(ctx context.Context) ([]models.Room, error)
	Create(ctx context.Context, room *models.Room) error
}

// HotelStore is the hotel persistence used by RoomService and HotelService
type HotelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	List(ctx context.Context) ([]models.Hotel, error)
	CreateWithRooms(ctx context.Context, hotel *models.Hotel) error
}

// RoomService serves the room catalogue and recommendation feed
type RoomService struct {
	rooms  RoomStore
	hotels HotelStore
	logger *logrus.Logger
}

// NewRoomService creates a new RoomService
func NewRoomService(rooms RoomStore, hotels HotelStore, logger *logrus.Logger) *RoomService {
	return &RoomService{rooms: rooms, hotels: hotels, logger: logger}
}

// Recommend returns rooms ordered by how often they were booked, most
// popular first. limit <= 0 returns every room.
func (s *RoomService) Recommend(ctx context.Context, limit, offset int) ([]models.Room, error) {
	if offset < 0 {
		offset = 0
	}
	return s.rooms.ListRecommended(ctx, limit, offset)
}

// ListAvailable returns rooms flagged as available
func (s *RoomService) ListAvailable(ctx context.Context) ([]models.Room, error) {
	return s.rooms.ListAvailable(ctx)
}

// GetRoom returns one room
func (s *RoomService) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// CreateRoom adds a room to an existing hotel
func (s *RoomService) CreateRoom(ctx context.Context, req *models.CreateRoomRequest) (*models.Room, error) {
	hotel, err := s.hotels.GetByID(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	if hotel == nil {
		return nil, fmt.Errorf("hotel %s: %w", req.HotelID, ErrHotelNotFound)
	}

	room := &models.Room{
		Number:    req.Number,
		Available: req.IsAvailable(),
		HotelID:   hotel.ID,
		HotelName: hotel.Name,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"room_id":  room.ID,
		"hotel_id": hotel.ID,
		"number":   room.Number,
	}).Info("Room created")

	return room, nil
}
