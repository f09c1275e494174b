package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/store"
)

// HousekeepingService periodically purges audit events past the retention
// window and clears expired email verification codes.
type HousekeepingService struct {
	Store         store.Store
	Audit         *AuditService
	Logger        *slog.Logger
	Interval      time.Duration
	RetentionDays int // 0 disables the audit purge
	Now           func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	st store.Store,
	auditSvc *AuditService,
	logger *slog.Logger,
	interval time.Duration,
	retentionDays int,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:         st,
		Audit:         auditSvc,
		Logger:        logger,
		Interval:      interval,
		RetentionDays: retentionDays,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started",
		"interval", s.Interval, "retention_days", s.RetentionDays)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does
// not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	s.Logger.Info("starting housekeeping cleanup")

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var successful int

	if s.RetentionDays > 0 && s.Audit != nil {
		if deleted, err := s.Audit.Purge(ctx, nil, s.RetentionDays); err != nil {
			s.Logger.Error("failed to purge audit events", "error", err)
		} else {
			s.Logger.Debug("purged audit events", "deleted", deleted)
			successful++
		}
	}

	if cleared, err := s.Store.Accounts().ClearExpiredVerificationCodes(ctx, now()); err != nil {
		s.Logger.Error("failed to clear expired verification codes", "error", err)
	} else {
		s.Logger.Debug("cleared expired verification codes", "cleared", cleared)
		successful++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
