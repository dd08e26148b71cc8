package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/metrics"
	"github.com/staybook/reservation-backend/internal/models"
)

// ReconcileSummary reports what one sweep did
type ReconcileSummary struct {
	Scanned   int
	Confirmed int
	Cancelled int
	Skipped   int // inventory unreachable, retried next run
}

// ReconciliationService settles bookings left PENDING by a crash between
// persisting the booking and recording the confirm outcome. The inventory
// ledger is the source of truth for what happened.
type ReconciliationService struct {
	bookings     BookingStore
	inventory    InventoryClient
	pendingAfter time.Duration
	batchSize    int
	logger       *logrus.Logger
	now          func() time.Time
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	bookings BookingStore,
	inventory InventoryClient,
	pendingAfter time.Duration,
	batchSize int,
	logger *logrus.Logger,
) *ReconciliationService {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReconciliationService{
		bookings:     bookings,
		inventory:    inventory,
		pendingAfter: pendingAfter,
		batchSize:    batchSize,
		logger:       logger,
		now:          time.Now,
	}
}

// Run performs one sweep over stale PENDING bookings
func (s *ReconciliationService) Run(ctx context.Context) (ReconcileSummary, error) {
	var summary ReconcileSummary

	stale, err := s.bookings.ListStalePending(ctx, s.now().Add(-s.pendingAfter), s.batchSize)
	if err != nil {
		return summary, err
	}
	summary.Scanned = len(stale)

	for i := range stale {
		booking := &stale[i]
		log := s.logger.WithFields(logrus.Fields{
			"request_id": booking.RequestID,
			"room_id":    booking.RoomID,
		})

		reservation, err := s.inventory.GetReservation(ctx, booking.RequestID)
		if err != nil {
			log.WithError(err).Warn("Inventory unreachable, leaving booking PENDING")
			summary.Skipped++
			metrics.ReconciledTotal.WithLabelValues("skipped").Inc()
			continue
		}

		target := models.BookingStatusCancelled
		if reservation != nil && reservation.Status == models.ReservationStatusConfirmed {
			target = models.BookingStatusConfirmed
		}

		updated, err := s.bookings.UpdateStatusIfPending(ctx, booking.ID, target)
		if err != nil {
			return summary, err
		}
		if !updated {
			// Settled by someone else since the scan
			continue
		}

		if target == models.BookingStatusConfirmed {
			summary.Confirmed++
			metrics.ReconciledTotal.WithLabelValues("confirmed").Inc()
		} else {
			summary.Cancelled++
			metrics.ReconciledTotal.WithLabelValues("cancelled").Inc()
		}
		log.WithField("status", target).Info("Reconciled stale booking")
	}

	return summary, nil
}
