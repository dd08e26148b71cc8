package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the state of a room reservation
type ReservationStatus string

const (
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusReleased  ReservationStatus = "RELEASED"
)

// RoomReservation is the inventory ledger entry for one request id.
// Rows are never deleted; release only flips the status.
type RoomReservation struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	RequestID uuid.UUID         `json:"requestId" db:"request_id"`
	RoomID    uuid.UUID         `json:"roomId" db:"room_id"`
	StartDate Date              `json:"startDate" db:"start_date"`
	EndDate   Date              `json:"endDate" db:"end_date"`
	Status    ReservationStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time         `json:"updatedAt" db:"updated_at"`
}

// ConfirmAvailabilityRequest is the body of POST /rooms/:id/confirm-availability
type ConfirmAvailabilityRequest struct {
	RequestID string `json:"requestId"`
	StartDate *Date  `json:"startDate"`
	EndDate   *Date  `json:"endDate"`
}
