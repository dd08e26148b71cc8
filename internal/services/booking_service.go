package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/metrics"
	"github.com/staybook/reservation-backend/internal/models"
)

const (
	msgRoomNotAvailable   = "Room is not available"
	msgCancelledMidflight = "Booking was cancelled while availability was being confirmed"
)

// Actor is the authenticated caller of a booking operation
type Actor struct {
	Username  string
	Role      models.Role
	IPAddress string
	UserAgent string
}

// IsAdmin reports whether the actor has the administrative role
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess reports whether the actor may act on resources owned by username
func (a Actor) CanAccess(username string) bool {
	return a.IsAdmin() || a.Username == username
}

// InventoryClient is the remote inventory ledger as seen by the orchestrator
type InventoryClient interface {
	ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error)
	Release(ctx context.Context, roomID, requestID uuid.UUID) error
	Recommend(ctx context.Context) ([]models.Room, error)
	GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error)
}

// BookingStore is the booking persistence used by the orchestrator
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Booking, error)
	List(ctx context.Context) ([]models.Booking, error)
	ListByUsername(ctx context.Context, username string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) error
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, status models.BookingStatus) (bool, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]models.Booking, error)
}

// UserStore resolves booking owners
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// OffersCache caches the recommendation feed served by GetOffers. A miss
// returns ok == false.
type OffersCache interface {
	Get(ctx context.Context) (rooms []models.Room, ok bool, err error)
	Set(ctx context.Context, rooms []models.Room) error
	Invalidate(ctx context.Context) error
}

// Auditor records security and lifecycle events
type Auditor interface {
	LogAccessDenied(ctx context.Context, actor Actor, operation, target string, entityID *uuid.UUID) error
	LogBookingEvent(ctx context.Context, actor Actor, action string, booking *models.Booking) error
}

// BookingService is the booking orchestrator. It records a PENDING booking,
// asks the inventory ledger to confirm the room and settles the booking on
// the answer. Any failure to get a definite yes cancels the booking.
type BookingService struct {
	bookings  BookingStore
	users     UserStore
	inventory InventoryClient
	offers    OffersCache // may be nil
	auditor   Auditor
	logger    *logrus.Logger
}

// NewBookingService creates a new BookingService. offers may be nil.
func NewBookingService(
	bookings BookingStore,
	users UserStore,
	inventory InventoryClient,
	offers OffersCache,
	auditor Auditor,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		users:     users,
		inventory: inventory,
		offers:    offers,
		auditor:   auditor,
		logger:    logger,
	}
}

// ============================================================================
// CREATE
// ============================================================================

// Create runs the confirm saga for one booking attempt
func (s *BookingService) Create(ctx context.Context, actor Actor, req *models.CreateBookingRequest) (*models.BookingResult, error) {
	if req.StartDate == nil || req.EndDate == nil || req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrInvalidRange
	}
	if req.StartDate.After(*req.EndDate) {
		s.logger.WithFields(logrus.Fields{
			"start_date": req.StartDate.String(),
			"end_date":   req.EndDate.String(),
		}).Warn("Rejected booking with start after end")
		return nil, ErrInvalidRange
	}

	user, err := s.users.GetByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%s: %w", actor.Username, ErrUserNotFound)
	}

	roomID, err := s.resolveRoom(ctx, req)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		RequestID: uuid.New(),
		UserID:    user.ID,
		Username:  user.Username,
		RoomID:    roomID,
		StartDate: *req.StartDate,
		EndDate:   *req.EndDate,
		Status:    models.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id": booking.RequestID,
		"room_id":    booking.RoomID,
		"user":       booking.Username,
	})
	log.Info("Booking created in PENDING status")

	// The PENDING row is durable now; a dropped client connection must not
	// leave it unsettled.
	sagaCtx := context.WithoutCancel(ctx)

	confirmed, err := s.inventory.ConfirmAvailability(sagaCtx, booking.RoomID, booking.RequestID, booking.StartDate, booking.EndDate)
	if err != nil {
		log.WithError(err).Warn("Confirm availability failed, cancelling booking")
		metrics.BookingSagaTotal.WithLabelValues(metrics.SagaRemoteError).Inc()
		return s.reject(sagaCtx, actor, booking, msgRoomNotAvailable)
	}
	if !confirmed {
		log.Warn("Room not available, cancelling booking")
		metrics.BookingSagaTotal.WithLabelValues(metrics.SagaRejected).Inc()
		return s.reject(sagaCtx, actor, booking, msgRoomNotAvailable)
	}

	updated, err := s.bookings.UpdateStatusIfPending(sagaCtx, booking.ID, models.BookingStatusConfirmed)
	if err != nil {
		// The ledger holds the reservation; reconciliation settles the row
		log.WithError(err).Error("Failed to record confirmation, booking left PENDING")
		return nil, err
	}
	if !updated {
		// Cancelled by its owner while the confirm call was outstanding
		log.Warn("Booking cancelled mid-flight, releasing confirmed reservation")
		if err := s.inventory.Release(sagaCtx, booking.RoomID, booking.RequestID); err != nil {
			log.WithError(err).Error("Compensating release failed")
		}
		metrics.BookingSagaTotal.WithLabelValues(metrics.SagaCancelledMidflight).Inc()
		booking.Status = models.BookingStatusCancelled
		return models.NewRejectedResult(booking, msgCancelledMidflight), nil
	}

	booking.Status = models.BookingStatusConfirmed
	metrics.BookingSagaTotal.WithLabelValues(metrics.SagaConfirmed).Inc()
	log.Info("Booking confirmed")
	s.audit(sagaCtx, actor, AuditActionBookingCreated, booking)
	s.invalidateOffers(sagaCtx)

	return models.NewConfirmedResult(booking), nil
}

func (s *BookingService) resolveRoom(ctx context.Context, req *models.CreateBookingRequest) (uuid.UUID, error) {
	if !req.AutoSelect {
		if req.RoomID == nil || *req.RoomID == uuid.Nil {
			return uuid.Nil, ErrRoomIDRequired
		}
		return *req.RoomID, nil
	}

	// Always ask the ledger; the cached feed may lag behind recent confirms
	rooms, err := s.inventory.Recommend(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(rooms) == 0 {
		s.logger.Warn("No rooms available for auto-selection")
		return uuid.Nil, ErrNoRoomsAvailable
	}

	s.logger.WithField("room_id", rooms[0].ID).Info("Auto-selected most booked room")
	return rooms[0].ID, nil
}

func (s *BookingService) reject(ctx context.Context, actor Actor, booking *models.Booking, message string) (*models.BookingResult, error) {
	if _, err := s.bookings.UpdateStatusIfPending(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	s.audit(ctx, actor, AuditActionBookingCanceled, booking)
	return models.NewRejectedResult(booking, message), nil
}

// ============================================================================
// CANCEL
// ============================================================================

// Cancel releases the room on the inventory side and marks the booking
// CANCELLED. The release outcome is logged but does not block the cancel.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, requestID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrBookingNotFound)
	}

	if err := s.authorize(ctx, actor, "cancel_booking", booking.Username, &booking.ID); err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id": booking.RequestID,
		"room_id":    booking.RoomID,
		"actor":      actor.Username,
	})

	if err := s.inventory.Release(ctx, booking.RoomID, booking.RequestID); err != nil {
		log.WithError(err).Warn("Inventory release failed, cancelling locally anyway")
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = time.Now()

	log.Info("Booking cancelled")
	s.audit(ctx, actor, AuditActionBookingCanceled, booking)

	return booking, nil
}

// ============================================================================
// QUERIES
// ============================================================================

// FindAll returns every booking. Admin only.
func (s *BookingService) FindAll(ctx context.Context, actor Actor) ([]models.Booking, error) {
	if !actor.IsAdmin() {
		s.denied(ctx, actor, "list_bookings", "*", nil)
		return nil, ErrAccessDenied
	}
	return s.bookings.List(ctx)
}

// FindAllByUsername returns the bookings of one user. Owner or admin only.
func (s *BookingService) FindAllByUsername(ctx context.Context, actor Actor, username string) ([]models.Booking, error) {
	if err := s.authorize(ctx, actor, "list_user_bookings", username, nil); err != nil {
		return nil, err
	}
	return s.bookings.ListByUsername(ctx, username)
}

// FindByRequestID returns one booking
func (s *BookingService) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrBookingNotFound)
	}
	return booking, nil
}

// GetOffers returns the inventory recommendation feed, most booked first
func (s *BookingService) GetOffers(ctx context.Context) ([]models.Room, error) {
	if s.offers != nil {
		rooms, ok, err := s.offers.Get(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Offers cache read failed")
		} else if ok {
			return rooms, nil
		}
	}

	rooms, err := s.inventory.Recommend(ctx)
	if err != nil {
		return nil, err
	}

	if s.offers != nil && len(rooms) > 0 {
		if err := s.offers.Set(ctx, rooms); err != nil {
			s.logger.WithError(err).Warn("Offers cache write failed")
		}
	}
	return rooms, nil
}

// invalidateOffers drops the cached feed after a confirm changed the ranking
func (s *BookingService) invalidateOffers(ctx context.Context) {
	if s.offers == nil {
		return
	}
	if err := s.offers.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("Offers cache invalidation failed")
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *BookingService) authorize(ctx context.Context, actor Actor, operation, owner string, entityID *uuid.UUID) error {
	if actor.CanAccess(owner) {
		return nil
	}
	s.denied(ctx, actor, operation, owner, entityID)
	return ErrAccessDenied
}

func (s *BookingService) denied(ctx context.Context, actor Actor, operation, target string, entityID *uuid.UUID) {
	s.logger.WithFields(logrus.Fields{
		"actor":     actor.Username,
		"role":      actor.Role,
		"target":    target,
		"operation": operation,
	}).Warn("Access denied")

	if err := s.auditor.LogAccessDenied(ctx, actor, operation, target, entityID); err != nil {
		s.logger.WithError(err).Warn("Failed to write audit log")
	}
}

func (s *BookingService) audit(ctx context.Context, actor Actor, action string, booking *models.Booking) {
	if err := s.auditor.LogBookingEvent(ctx, actor, action, booking); err != nil {
		s.logger.WithError(err).Warn("Failed to write audit log")
	}
}
