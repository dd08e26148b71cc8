package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staybook/reservation-backend/internal/models"
)

// BookingRepository handles database operations for bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.request_id, b.user_id, u.username, b.room_id,
	b.start_date, b.end_date, b.status, b.created_at, b.updated_at
`

// Create inserts a new booking
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, request_id, user_id, room_id, start_date, end_date, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at, updated_at
	`

	// Generate ID if not provided
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	var stamps struct {
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := r.db.GetContext(ctx, &stamps, query,
		booking.ID, booking.RequestID, booking.UserID, booking.RoomID,
		booking.StartDate, booking.EndDate, booking.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = stamps.CreatedAt
	booking.UpdatedAt = stamps.UpdatedAt
	return nil
}

// GetByRequestID retrieves a booking by its saga request id
func (r *BookingRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.request_id = $1
	`

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking by request id: %w", err)
	}

	return &booking, nil
}

// List returns every booking, newest first
func (r *BookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC
	`

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListByUsername returns the bookings owned by one user, newest first
func (r *BookingRepository) ListByUsername(ctx context.Context, username string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE u.username = $1
		ORDER BY b.created_at DESC
	`

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, username); err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", username, err)
	}
	return bookings, nil
}

// UpdateStatus sets the status unconditionally
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking %s not found", id)
	}
	return nil
}

// UpdateStatusIfPending sets the status only while the booking is still
// PENDING. It reports false when another writer got there first.
func (r *BookingRepository) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, id, models.BookingStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows == 1, nil
}

// ListStalePending returns PENDING bookings created before the cutoff
func (r *BookingRepository) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.status = $1 AND b.created_at < $2
		ORDER BY b.created_at
		LIMIT $3
	`

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, models.BookingStatusPending, createdBefore, limit); err != nil {
		return nil, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}
	return bookings, nil
}
