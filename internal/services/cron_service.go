package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages scheduled background jobs
type CronService struct {
	cron       *cron.Cron
	reconciler *ReconciliationService
	schedule   string
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewCronService creates a new CronService.
// schedule uses the six-field format with seconds.
func NewCronService(reconciler *ReconciliationService, schedule string, logger *logrus.Logger) *CronService {
	// Skip a run while the previous sweep is still going
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &CronService{
		cron:       c,
		reconciler: reconciler,
		schedule:   schedule,
		timeout:    time.Minute,
		logger:     logger,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	// Cron format: second minute hour day month weekday
	_, err := s.cron.AddFunc(s.schedule, s.reconcileJob)
	if err != nil {
		return fmt.Errorf("failed to schedule reconciliation job: %w", err)
	}
	s.logger.WithField("schedule", s.schedule).Info("Scheduled: reconcile stale PENDING bookings")

	s.cron.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *CronService) Stop() {
	s.logger.Info("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron service stopped")
}

// RunReconcileNow runs the reconciliation job immediately
func (s *CronService) RunReconcileNow() {
	s.reconcileJob()
}

func (s *CronService) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	startTime := time.Now()
	summary, err := s.reconciler.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("[CRON] Reconciliation failed")
		return
	}

	if summary.Scanned == 0 {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"scanned":   summary.Scanned,
		"confirmed": summary.Confirmed,
		"cancelled": summary.Cancelled,
		"skipped":   summary.Skipped,
		"duration":  time.Since(startTime).String(),
	}).Info("[CRON] Reconciliation finished")
}
