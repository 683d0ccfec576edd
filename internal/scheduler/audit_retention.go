package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

// AuditRetentionScheduler periodically removes audit events older than the
// retention period. With a task queue the cleanup runs as a background task;
// without one it runs inline on the cron goroutine.
type AuditRetentionScheduler struct {
	queue         tasks.Enqueuer
	cleaner       tasks.AuditEventCleaner
	schedule      string
	retentionDays int
	logger        *zap.Logger

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditRetentionScheduler creates a scheduler. queue may be nil.
func NewAuditRetentionScheduler(queue tasks.Enqueuer, cleaner tasks.AuditEventCleaner, schedule string, retentionDays int, logger *zap.Logger) *AuditRetentionScheduler {
	return &AuditRetentionScheduler{
		queue:         queue,
		cleaner:       cleaner,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cron.ParseStandard(schedule)
	return err
}

// Start registers the cleanup job. An empty schedule disables it. The
// scheduler stops when ctx is cancelled.
func (s *AuditRetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		s.logger.Info("audit retention scheduler disabled")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("audit retention run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule audit retention job: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("audit retention scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("retention_days", s.retentionDays),
		zap.Timep("next_run", s.nextRunLocked()),
	)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *AuditRetentionScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.logger.Info("audit retention scheduler stopped")
}

// RunNow performs one cleanup immediately.
func (s *AuditRetentionScheduler) RunNow(ctx context.Context) error {
	if s.queue != nil {
		if _, err := s.queue.Add(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}).Ctx(ctx).Save(); err != nil {
			return fmt.Errorf("failed to enqueue audit cleanup: %w", err)
		}
		return nil
	}

	retention := time.Duration(s.retentionDays) * 24 * time.Hour
	deleted, err := s.cleaner.DeleteOldEvents(ctx, retention)
	if err != nil {
		return fmt.Errorf("cleanup audit events: %w", err)
	}
	s.logger.Info("cleaned up audit events", zap.Int64("deleted", deleted))
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *AuditRetentionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the next cleanup will occur, or nil when stopped.
func (s *AuditRetentionScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRunLocked()
}

func (s *AuditRetentionScheduler) nextRunLocked() *time.Time {
	if !s.isRunning {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
