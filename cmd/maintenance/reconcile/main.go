package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/staybook/reservation-backend/internal/clients"
	"github.com/staybook/reservation-backend/internal/config"
	"github.com/staybook/reservation-backend/internal/database"
	"github.com/staybook/reservation-backend/internal/server"
	"github.com/staybook/reservation-backend/internal/services"
	"github.com/staybook/reservation-backend/pkg/jwt"
)

// reconcile runs a single sweep over stale PENDING bookings and exits
func main() {
	pendingAfter := flag.Duration("pending-after", 0, "override RECONCILE_PENDING_AFTER")
	batch := flag.Int("batch", 0, "override RECONCILE_BATCH_SIZE")
	flag.Parse()

	cfg, err := config.Load(config.ServiceBooking)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if *pendingAfter > 0 {
		cfg.Reconcile.PendingAfter = *pendingAfter
	}
	if *batch > 0 {
		cfg.Reconcile.BatchSize = *batch
	}

	logger := server.NewLogger(cfg.Server.LogLevel)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)
	reconciler := services.NewReconciliationService(
		database.NewBookingRepository(db),
		clients.NewInventoryClient(cfg.Inventory, jwtService.GenerateServiceToken, logger),
		cfg.Reconcile.PendingAfter,
		cfg.Reconcile.BatchSize,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	summary, err := reconciler.Run(ctx)
	if err != nil {
		logger.Fatalf("Reconciliation failed: %v", err)
	}

	fmt.Printf("scanned=%d confirmed=%d cancelled=%d skipped=%d\n",
		summary.Scanned, summary.Confirmed, summary.Cancelled, summary.Skipped)
}
