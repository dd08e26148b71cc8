package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is the orchestrator's local record of one reservation attempt.
// RequestID is the only link to the inventory side's RoomReservation.
type Booking struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	RequestID uuid.UUID     `json:"requestId" db:"request_id"`
	UserID    uuid.UUID     `json:"userId" db:"user_id"`
	Username  string        `json:"username" db:"username"`
	RoomID    uuid.UUID     `json:"roomId" db:"room_id"`
	StartDate Date          `json:"startDate" db:"start_date"`
	EndDate   Date          `json:"endDate" db:"end_date"`
	Status    BookingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// CreateBookingRequest is the body of POST /api/v1/booking
type CreateBookingRequest struct {
	RoomID     *uuid.UUID `json:"roomId,omitempty"`
	AutoSelect bool       `json:"autoSelect"`
	StartDate  *Date      `json:"startDate"`
	EndDate    *Date      `json:"endDate"`
}

// BookingResult is the outcome of a create call
type BookingResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	RequestID *uuid.UUID `json:"requestId,omitempty"`
	RoomID    *uuid.UUID `json:"roomId,omitempty"`
	StartDate *Date      `json:"startDate,omitempty"`
	EndDate   *Date      `json:"endDate,omitempty"`
}

// NewConfirmedResult builds the success result for a confirmed booking
func NewConfirmedResult(b *Booking) *BookingResult {
	requestID := b.RequestID
	roomID := b.RoomID
	start := b.StartDate
	end := b.EndDate
	return &BookingResult{
		Success:   true,
		Message:   "Booking confirmed",
		RequestID: &requestID,
		RoomID:    &roomID,
		StartDate: &start,
		EndDate:   &end,
	}
}

// NewRejectedResult builds the failure result for a cancelled booking
func NewRejectedResult(b *Booking, message string) *BookingResult {
	requestID := b.RequestID
	return &BookingResult{
		Success:   false,
		Message:   message,
		RequestID: &requestID,
	}
}
