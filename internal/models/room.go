package models

import (
	"time"

	"github.com/google/uuid"
)

// Room is a bookable unit owned by the inventory service.
// TimeBooked counts every successful confirmation and is never decremented.
type Room struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Number     string    `json:"number" db:"number"`
	Available  bool      `json:"available" db:"available"`
	TimeBooked int       `json:"timeBooked" db:"time_booked"`
	HotelID    uuid.UUID `json:"hotelId" db:"hotel_id"`
	HotelName  string    `json:"hotelName" db:"hotel_name"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
}

// Hotel groups rooms
type Hotel struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   string    `json:"address" db:"address"`
	Rooms     []Room    `json:"rooms" db:"-"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// CreateRoomRequest is the body of POST /api/v1/rooms
type CreateRoomRequest struct {
	Number    string    `json:"number" binding:"required"`
	Available *bool     `json:"available"`
	HotelID   uuid.UUID `json:"hotelId"`
}

// IsAvailable defaults a missing availability flag to true
func (r *CreateRoomRequest) IsAvailable() bool {
	return r.Available == nil || *r.Available
}

// HotelRoomRequest is a room nested in a hotel creation request
type HotelRoomRequest struct {
	Number    string `json:"number" binding:"required"`
	Available *bool  `json:"available"`
}

// CreateHotelRequest is the body of POST /api/v1/hotels
type CreateHotelRequest struct {
	Name    string             `json:"name" binding:"required"`
	Address string             `json:"address"`
	Rooms   []HotelRoomRequest `json:"rooms" binding:"omitempty,dive"`
}
