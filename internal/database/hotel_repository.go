package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/staybook/reservation-backend/internal/models"
)

// HotelRepository handles database operations for hotels table
type HotelRepository struct {
	db DB
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// GetByID retrieves a hotel without its rooms
func (r *HotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	query := `SELECT id, name, address, created_at FROM hotels WHERE id = $1`

	var hotel models.Hotel
	err := r.db.GetContext(ctx, &hotel, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &hotel, nil
}

// List returns every hotel with its rooms attached
func (r *HotelRepository) List(ctx context.Context) ([]models.Hotel, error) {
	hotels := []models.Hotel{}
	err := r.db.SelectContext(ctx, &hotels, `SELECT id, name, address, created_at FROM hotels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}
	if len(hotels) == 0 {
		return hotels, nil
	}

	rooms := []models.Room{}
	err = r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+`
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		ORDER BY r.number
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel rooms: %w", err)
	}

	byHotel := make(map[uuid.UUID][]models.Room, len(hotels))
	for _, room := range rooms {
		byHotel[room.HotelID] = append(byHotel[room.HotelID], room)
	}
	for i := range hotels {
		hotels[i].Rooms = byHotel[hotels[i].ID]
		if hotels[i].Rooms == nil {
			hotels[i].Rooms = []models.Room{}
		}
	}
	return hotels, nil
}

// CreateWithRooms inserts a hotel and its nested rooms in one transaction
func (r *HotelRepository) CreateWithRooms(ctx context.Context, hotel *models.Hotel) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if hotel.ID == uuid.Nil {
		hotel.ID = uuid.New()
	}

	err = tx.GetContext(ctx, &hotel.CreatedAt,
		`INSERT INTO hotels (id, name, address) VALUES ($1, $2, $3) RETURNING created_at`,
		hotel.ID, hotel.Name, hotel.Address,
	)
	if err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}

	for i := range hotel.Rooms {
		room := &hotel.Rooms[i]
		if room.ID == uuid.Nil {
			room.ID = uuid.New()
		}
		room.HotelID = hotel.ID
		room.HotelName = hotel.Name
		room.TimeBooked = 0

		err = tx.GetContext(ctx, &room.CreatedAt,
			`INSERT INTO rooms (id, number, available, time_booked, hotel_id) VALUES ($1, $2, $3, 0, $4) RETURNING created_at`,
			room.ID, room.Number, room.Available, hotel.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to create room %s: %w", room.Number, err)
		}
	}

	return tx.Commit()
}
