package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "staybook"

// Confirm-availability outcomes on the inventory ledger
const (
	ConfirmAccepted     = "accepted"
	ConfirmDuplicate    = "duplicate"
	ConfirmOverlap      = "overlap"
	ConfirmConflict     = "conflict"
	ConfirmRoomNotFound = "room_not_found"
	ConfirmError        = "error"
)

// Booking saga outcomes on the orchestrator
const (
	SagaConfirmed          = "confirmed"
	SagaRejected           = "rejected"
	SagaRemoteError        = "remote_error"
	SagaCancelledMidflight = "cancelled_midflight"
)

var (
	// LedgerConfirmTotal counts confirm-availability decisions
	LedgerConfirmTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "confirm_total",
		Help:      "Confirm-availability decisions by outcome.",
	}, []string{"outcome"})

	// LedgerReleaseTotal counts release calls
	LedgerReleaseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "release_total",
		Help:      "Reservation releases by outcome.",
	}, []string{"outcome"})

	// BookingSagaTotal counts create outcomes
	BookingSagaTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "saga_total",
		Help:      "Booking create outcomes.",
	}, []string{"outcome"})

	// ReconciledTotal counts stale PENDING bookings resolved by the sweep
	ReconciledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "booking",
		Name:      "reconciled_total",
		Help:      "Stale pending bookings resolved by the reconciliation sweep.",
	}, []string{"result"})

	// InventoryRequestDuration observes outbound inventory calls including retries
	InventoryRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "inventory_client",
		Name:      "request_duration_seconds",
		Help:      "Outbound inventory call latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	// HTTPRequestDuration observes inbound requests
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Inbound HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "route", "status"})

	// OffersCacheTotal counts offers cache lookups
	OffersCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "offers_cache",
		Name:      "lookups_total",
		Help:      "Offers cache lookups by result.",
	}, []string{"result"})
)
