package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/database"
	"github.com/staybook/reservation-backend/internal/metrics"
	"github.com/staybook/reservation-backend/internal/models"
)

// ReservationStore is the persistence the ledger needs
type ReservationStore interface {
	WithRoomLock(ctx context.Context, roomID uuid.UUID, fn func(tx database.LedgerTx, room *models.Room) error) error
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error)
	UpdateStatus(ctx context.Context, requestID uuid.UUID, status models.ReservationStatus) (bool, error)
}

// ReservationService is the inventory reservation ledger.
// Confirmations for the same room never run concurrently in this process,
// and the store additionally row-locks the room for cross-process safety.
type ReservationService struct {
	store  ReservationStore
	locks  *roomLocks
	logger *logrus.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(store ReservationStore, logger *logrus.Logger) *ReservationService {
	return &ReservationService{
		store:  store,
		locks:  newRoomLocks(),
		logger: logger,
	}
}

// ConfirmAvailability records a CONFIRMED reservation for requestID when the
// room is free for [start, end] (both inclusive). It returns false without
// changing anything when the request id was already used or the range
// overlaps a confirmed reservation.
func (s *ReservationService) ConfirmAvailability(ctx context.Context, roomID, requestID uuid.UUID, start, end models.Date) (bool, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return false, ErrInvalidRange
	}

	unlock := s.locks.lock(roomID)
	defer unlock()

	log := s.logger.WithFields(logrus.Fields{
		"room_id":    roomID,
		"request_id": requestID,
		"start_date": start.String(),
		"end_date":   end.String(),
	})

	outcome := metrics.ConfirmError
	err := s.store.WithRoomLock(ctx, roomID, func(tx database.LedgerTx, room *models.Room) error {
		if room == nil {
			return ErrRoomNotFound
		}

		existing, err := tx.FindByRequestID(ctx, requestID)
		if err != nil {
			return err
		}
		if existing != nil {
			outcome = metrics.ConfirmDuplicate
			return nil
		}

		overlap, err := tx.HasOverlap(ctx, roomID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			outcome = metrics.ConfirmOverlap
			return nil
		}

		reservation := &models.RoomReservation{
			RequestID: requestID,
			RoomID:    roomID,
			StartDate: start,
			EndDate:   end,
			Status:    models.ReservationStatusConfirmed,
		}
		if err := tx.Insert(ctx, reservation); err != nil {
			return err
		}
		if err := tx.IncrementTimeBooked(ctx, roomID); err != nil {
			return err
		}

		outcome = metrics.ConfirmAccepted
		return nil
	})

	switch {
	case errors.Is(err, ErrRoomNotFound):
		outcome = metrics.ConfirmRoomNotFound
		log.Warn("Confirm rejected: room not found")
		metrics.LedgerConfirmTotal.WithLabelValues(outcome).Inc()
		return false, fmt.Errorf("room %s: %w", roomID, ErrRoomNotFound)
	case database.IsConflict(err):
		// Another process won the race past the row lock
		outcome = metrics.ConfirmConflict
		log.WithError(err).Warn("Confirm rejected by constraint")
		metrics.LedgerConfirmTotal.WithLabelValues(outcome).Inc()
		return false, nil
	case err != nil:
		log.WithError(err).Error("Confirm failed")
		metrics.LedgerConfirmTotal.WithLabelValues(outcome).Inc()
		return false, fmt.Errorf("failed to confirm availability: %w", err)
	}

	metrics.LedgerConfirmTotal.WithLabelValues(outcome).Inc()

	switch outcome {
	case metrics.ConfirmDuplicate:
		log.Info("Confirm rejected: request id already used")
		return false, nil
	case metrics.ConfirmOverlap:
		log.Info("Confirm rejected: dates overlap a confirmed reservation")
		return false, nil
	}

	log.Info("Room reservation confirmed")
	return true, nil
}

// Release marks the reservation for requestID as RELEASED. Releasing an
// already released reservation succeeds. The room popularity counter is
// left untouched.
func (s *ReservationService) Release(ctx context.Context, roomID, requestID uuid.UUID) error {
	found, err := s.store.UpdateStatus(ctx, requestID, models.ReservationStatusReleased)
	if err != nil {
		metrics.LedgerReleaseTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to release reservation: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"room_id":    roomID,
		"request_id": requestID,
	})

	if !found {
		metrics.LedgerReleaseTotal.WithLabelValues("not_found").Inc()
		log.Warn("Release failed: reservation not found")
		return ErrReservationNotFound
	}

	metrics.LedgerReleaseTotal.WithLabelValues("released").Inc()
	log.Info("Room reservation released")
	return nil
}

// GetReservation returns the ledger entry for requestID
func (s *ReservationService) GetReservation(ctx context.Context, requestID uuid.UUID) (*models.RoomReservation, error) {
	reservation, err := s.store.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}
	return reservation, nil
}
