package services

import "errors"

// Validation errors
var (
	ErrInvalidRange     = errors.New("start date and end date are required and start must not be after end")
	ErrRoomIDRequired   = errors.New("room id is required when auto-select is off")
	ErrInvalidRequestID = errors.New("request id must be a valid UUID")
)

// Not found errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrNoRoomsAvailable    = errors.New("no rooms available")
	ErrRoomNotFound        = errors.New("room not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrHotelNotFound       = errors.New("hotel not found")
)

// ErrAccessDenied is returned when the actor neither owns the resource nor is an admin
var ErrAccessDenied = errors.New("access denied")
