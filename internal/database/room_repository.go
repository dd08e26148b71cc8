package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/staybook/reservation-backend/internal/models"
)

// RoomRepository handles database operations for rooms table
type RoomRepository struct {
	db DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `
	r.id, r.number, r.available, r.time_booked, r.hotel_id, h.name AS hotel_name, r.created_at
`

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	query := `SELECT ` + roomColumns + `
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.id = $1
	`

	var room models.Room
	err := r.db.GetContext(ctx, &room, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

// ListRecommended returns rooms ordered by popularity (time_booked DESC).
// A limit of zero or less returns every room.
func (r *RoomRepository) ListRecommended(ctx context.Context, limit, offset int) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + `
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		ORDER BY r.time_booked DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	} else if offset > 0 {
		query += ` OFFSET $1`
		args = append(args, offset)
	}

	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recommended rooms: %w", err)
	}
	return rooms, nil
}

// ListAvailable returns rooms flagged as available
func (r *RoomRepository) ListAvailable(ctx context.Context) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + `
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.available = TRUE
		ORDER BY h.name, r.number
	`

	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("failed to list available rooms: %w", err)
	}
	return rooms, nil
}

// ListByHotel returns the rooms of one hotel
func (r *RoomRepository) ListByHotel(ctx context.Context, hotelID uuid.UUID) ([]models.Room, error) {
	query := `SELECT ` + roomColumns + `
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.hotel_id = $1
		ORDER BY r.number
	`

	rooms := []models.Room{}
	if err := r.db.SelectContext(ctx, &rooms, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list rooms for hotel: %w", err)
	}
	return rooms, nil
}

// Create inserts a room with a zero popularity counter
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (id, number, available, time_booked, hotel_id)
		VALUES ($1, $2, $3, 0, $4)
		RETURNING created_at
	`

	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	room.TimeBooked = 0

	if err := r.db.GetContext(ctx, &room.CreatedAt, query, room.ID, room.Number, room.Available, room.HotelID); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}
