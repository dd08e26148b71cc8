package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/database"
	"github.com/staybook/reservation-backend/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// memoryLedger is an in-memory ReservationStore. WithRoomLock does NOT lock,
// so any serialization observed in tests comes from the service.
type memoryLedger struct {
	mu           sync.Mutex
	rooms        map[uuid.UUID]*models.Room
	reservations map[uuid.UUID]*models.RoomReservation
	checkDelay   time.Duration
}

func newMemoryLedger(rooms ...models.Room) *memoryLedger {
	l := &memoryLedger{
		rooms:        make(map[uuid.UUID]*models.Room),
		reservations: make(map[uuid.UUID]*models.RoomReservation),
	}
	for i := range rooms {
		room := rooms[i]
		l.rooms[room.ID] = &room
	}
	return l
}

func (l *memoryLedger) timeBooked(roomID uuid.UUID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rooms[roomID].TimeBooked
}

func (l *memoryLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reservations)
}

func (l *memoryLedger) status(requestID uuid.UUID) models.ReservationStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.reservations[requestID]; ok {
		return r.Status
	}
	return ""
}

func (l *memoryLedger) WithRoomLock(ctx context.Context, roomID uuid.UUID, fn func(tx database.LedgerTx, room *models.Room) error) error {
	l.mu.Lock()
	var snapshot *models.Room
	if room, ok := l.rooms[roomID]; ok {
		copied := *room
		snapshot = &copied
	}
	l.mu.Unlock()
	return fn(&memoryLedgerTx{l: l}, snapshot)
}

func (l *memoryLedger) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.reservations[requestID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (l *memoryLedger) UpdateStatus(ctx context.Context, requestID uuid.UUID, status models.ReservationStatus) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.reservations[requestID]
	if !ok {
		return false, nil
	}
	r.Status = status
	return true, nil
}

type memoryLedgerTx struct {
	l *memoryLedger
}

func (t *memoryLedgerTx) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	return t.l.GetByRequestID(ctx, requestID)
}

func (t *memoryLedgerTx) HasOverlap(ctx context.Context, roomID uuid.UUID, start, end models.Date) (bool, error) {
	t.l.mu.Lock()
	overlap := false
	for _, r := range t.l.reservations {
		if r.RoomID == roomID && r.Status == models.ReservationStatusConfirmed &&
			rangesOverlap(r.StartDate, r.EndDate, start, end) {
			overlap = true
			break
		}
	}
	t.l.mu.Unlock()

	// Widen the check-then-insert window
	if t.l.checkDelay > 0 {
		time.Sleep(t.l.checkDelay)
	}
	return overlap, nil
}

func (t *memoryLedgerTx) Insert(ctx context.Context, reservation *models.RoomReservation) error {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	reservation.ID = uuid.New()
	copied := *reservation
	t.l.reservations[reservation.RequestID] = &copied
	return nil
}

func (t *memoryLedgerTx) IncrementTimeBooked(ctx context.Context, roomID uuid.UUID) error {
	t.l.mu.Lock()
	defer t.l.mu.Unlock()
	t.l.rooms[roomID].TimeBooked++
	return nil
}

// memoryBookings is an in-memory BookingStore
type memoryBookings struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking // by request id
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (m *memoryBookings) get(requestID uuid.UUID) *models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[requestID]
	if !ok {
		return nil
	}
	copied := *b
	return &copied
}

func (m *memoryBookings) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memoryBookings) put(b models.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.RequestID] = &b
}

func (m *memoryBookings) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now()
	m.put(*booking)
	return nil
}

func (m *memoryBookings) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Booking, error) {
	return m.get(requestID), nil
}

func (m *memoryBookings) List(ctx context.Context) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (m *memoryBookings) ListByUsername(ctx context.Context, username string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.Username == username {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memoryBookings) byID(id uuid.UUID) *models.Booking {
	for _, b := range m.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (m *memoryBookings) UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.byID(id)
	if b == nil {
		return errors.New("booking not found")
	}
	b.Status = status
	return nil
}

func (m *memoryBookings) UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.BookingStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.byID(id)
	if b == nil || b.Status != models.BookingStatusPending {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func (m *memoryBookings) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.Status == models.BookingStatusPending && b.CreatedAt.Before(createdBefore) && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

type staticUsers map[string]*models.User

func (u staticUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return u[username], nil
}

// stubInventory is a scripted InventoryClient
type stubInventory struct {
	mu           sync.Mutex
	confirm      func(roomID, requestID uuid.UUID) (bool, error)
	releaseErr   error
	rooms        []models.Room
	recommendErr error
	reservations map[uuid.UUID]*models.RoomReservation
	reservErr    error

	confirmCalls   int
	releaseCalls   int
	recommendCalls int
}

func (s *stubInventory) ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error) {
	s.mu.Lock()
	s.confirmCalls++
	s.mu.Unlock()
	if s.confirm == nil {
		return true, nil
	}
	return s.confirm(roomID, requestID)
}

func (s *stubInventory) Release(ctx context.Context, roomID, requestID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseCalls++
	return s.releaseErr
}

func (s *stubInventory) Recommend(ctx context.Context) ([]models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendCalls++
	return s.rooms, s.recommendErr
}

func (s *stubInventory) GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	if s.reservErr != nil {
		return nil, s.reservErr
	}
	return s.reservations[requestID], nil
}

// ledgerInventory wires the orchestrator straight to an in-process ledger
type ledgerInventory struct {
	ledger *ReservationService
	rooms  *RoomService
}

func (l *ledgerInventory) ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error) {
	return l.ledger.ConfirmAvailability(ctx, roomID, requestID, start, end)
}

func (l *ledgerInventory) Release(ctx context.Context, roomID, requestID uuid.UUID) error {
	return l.ledger.Release(ctx, roomID, requestID)
}

func (l *ledgerInventory) Recommend(ctx context.Context) ([]models.Room, error) {
	return l.rooms.Recommend(ctx, 0, 0)
}

func (l *ledgerInventory) GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	r, err := l.ledger.GetReservation(ctx, requestID)
	if errors.Is(err, ErrReservationNotFound) {
		return nil, nil
	}
	return r, err
}

type recordingAuditor struct {
	mu     sync.Mutex
	denied []string
	events []string
}

func (a *recordingAuditor) LogAccessDenied(ctx context.Context, actor Actor, operation, target string, entityID *uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.denied = append(a.denied, actor.Username+"->"+target)
	return nil
}

func (a *recordingAuditor) LogBookingEvent(ctx context.Context, actor Actor, action string, booking *models.Booking) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, action)
	return nil
}

type memoryOffers struct {
	rooms         []models.Room
	set           bool
	invalidations int
}

func (m *memoryOffers) Get(ctx context.Context) ([]models.Room, bool, error) {
	return m.rooms, m.set, nil
}

func (m *memoryOffers) Set(ctx context.Context, rooms []models.Room) error {
	m.rooms = rooms
	m.set = true
	return nil
}

func (m *memoryOffers) Invalidate(ctx context.Context) error {
	m.rooms = nil
	m.set = false
	m.invalidations++
	return nil
}

// memoryRooms implements RoomStore and HotelStore over a memoryLedger
type memoryRooms struct {
	ledger *memoryLedger
}

func (m *memoryRooms) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	if r, ok := m.ledger.rooms[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (m *memoryRooms) ListRecommended(ctx context.Context, limit, offset int) ([]models.Room, error) {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	out := []models.Room{}
	for _, r := range m.ledger.rooms {
		out = append(out, *r)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TimeBooked > out[j-1].TimeBooked; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryRooms) ListAvailable(ctx context.Context) ([]models.Room, error) {
	all, _ := m.ListRecommended(ctx, 0, 0)
	out := []models.Room{}
	for _, r := range all {
		if r.Available {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRooms) Create(ctx context.Context, room *models.Room) error {
	m.ledger.mu.Lock()
	defer m.ledger.mu.Unlock()
	room.ID = uuid.New()
	copied := *room
	m.ledger.rooms[room.ID] = &copied
	return nil
}

type memoryHotels struct {
	hotels  map[uuid.UUID]*models.Hotel
	created []*models.Hotel
}

func (m *memoryHotels) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	return m.hotels[id], nil
}

func (m *memoryHotels) List(ctx context.Context) ([]models.Hotel, error) {
	out := []models.Hotel{}
	for _, h := range m.hotels {
		out = append(out, *h)
	}
	return out, nil
}

func (m *memoryHotels) CreateWithRooms(ctx context.Context, hotel *models.Hotel) error {
	hotel.ID = uuid.New()
	m.created = append(m.created, hotel)
	return nil
}

// rangesOverlap mirrors the ledger's inclusive overlap predicate
func rangesOverlap(aStart, aEnd, bStart, bEnd models.Date) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}
