package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/staybook/reservation-backend/internal/models"
)

// LedgerTx is the set of ledger operations available while a room row
// is locked. All calls share one transaction.
type LedgerTx interface {
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error)
	HasOverlap(ctx context.Context, roomID uuid.UUID, start, end models.Date) (bool, error)
	Insert(ctx context.Context, reservation *models.RoomReservation) error
	IncrementTimeBooked(ctx context.Context, roomID uuid.UUID) error
}

// ReservationRepository handles database operations for room_reservations table
type ReservationRepository struct {
	db DB
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(db DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = `id, request_id, room_id, start_date, end_date, status, created_at, updated_at`

// WithRoomLock runs fn inside a transaction holding a row lock on the room.
// room is nil when the room does not exist. The transaction commits only
// when fn returns nil.
func (r *ReservationRepository) WithRoomLock(ctx context.Context, roomID uuid.UUID, fn func(tx LedgerTx, room *models.Room) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var room models.Room
	var roomPtr *models.Room
	err = tx.GetContext(ctx, &room, `
		SELECT id, number, available, time_booked, hotel_id, created_at
		FROM rooms
		WHERE id = $1
		FOR UPDATE
	`, roomID)
	switch {
	case err == nil:
		roomPtr = &room
	case err == sql.ErrNoRows:
		roomPtr = nil
	default:
		return fmt.Errorf("failed to lock room: %w", err)
	}

	if err := fn(&ledgerTx{tx: tx}, roomPtr); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil
}

// GetByRequestID retrieves a reservation by request id
func (r *ReservationRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	var reservation models.RoomReservation
	err := r.db.GetContext(ctx, &reservation,
		`SELECT `+reservationColumns+` FROM room_reservations WHERE request_id = $1`, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

// UpdateStatus sets the status of the reservation for requestID.
// It reports false when no reservation exists for that request id.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, requestID uuid.UUID, status models.ReservationStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE room_reservations
		SET status = $1, updated_at = NOW()
		WHERE request_id = $2
	`, status, requestID)
	if err != nil {
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return rows > 0, nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (l *ledgerTx) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	var reservation models.RoomReservation
	err := l.tx.GetContext(ctx, &reservation,
		`SELECT `+reservationColumns+` FROM room_reservations WHERE request_id = $1`, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

// HasOverlap uses inclusive bounds on both ends
func (l *ledgerTx) HasOverlap(ctx context.Context, roomID uuid.UUID, start, end models.Date) (bool, error) {
	var exists bool
	err := l.tx.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM room_reservations
			WHERE room_id = $1
			  AND status = $2
			  AND start_date <= $3
			  AND end_date >= $4
		)
	`, roomID, models.ReservationStatusConfirmed, end, start)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping reservations: %w", err)
	}
	return exists, nil
}

func (l *ledgerTx) Insert(ctx context.Context, reservation *models.RoomReservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}

	var stamps struct {
		CreatedAt sql.NullTime `db:"created_at"`
		UpdatedAt sql.NullTime `db:"updated_at"`
	}
	err := l.tx.GetContext(ctx, &stamps, `
		INSERT INTO room_reservations (id, request_id, room_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, reservation.ID, reservation.RequestID, reservation.RoomID,
		reservation.StartDate, reservation.EndDate, reservation.Status)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	reservation.CreatedAt = stamps.CreatedAt.Time
	reservation.UpdatedAt = stamps.UpdatedAt.Time
	return nil
}

func (l *ledgerTx) IncrementTimeBooked(ctx context.Context, roomID uuid.UUID) error {
	_, err := l.tx.ExecContext(ctx, `UPDATE rooms SET time_booked = time_booked + 1 WHERE id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("failed to increment time_booked: %w", err)
	}
	return nil
}
