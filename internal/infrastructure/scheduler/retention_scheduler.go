package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
)

// RetentionRunner performs one maintenance pass. The application layer
// implements it against the document and activity services.
type RetentionRunner interface {
	// SweepExpiredDocuments expires documents past retention and removes
	// their stored files. Returns the number of documents expired.
	SweepExpiredDocuments(ctx context.Context, batchSize int) (int, error)

	// CleanupActivityLogs deletes activity entries older than the
	// configured retention. Returns the number of rows deleted.
	CleanupActivityLogs(ctx context.Context) (int64, error)
}

// RetentionScheduler triggers the nightly retention sweep.
type RetentionScheduler struct {
	cfg    config.SchedulerConfig
	runner RetentionRunner
	logger *zap.Logger

	hour   int
	minute int

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewRetentionScheduler creates a scheduler from the configuration.
func NewRetentionScheduler(cfg config.SchedulerConfig, runner RetentionRunner, logger *zap.Logger) (*RetentionScheduler, error) {
	hour, minute, err := ParseCronSchedule(cfg.RetentionCronSchedule)
	if err != nil {
		return nil, err
	}

	return &RetentionScheduler{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		hour:   hour,
		minute: minute,
	}, nil
}

// Start begins the minute ticker. Calling Start on a running scheduler
// is a no-op.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	next := nextRunAfter(time.Now(), s.hour, s.minute)
	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Retention scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.Time("next_run_at", next),
	)

	return nil
}

// Stop stops the scheduler and waits for the loop to exit.
func (s *RetentionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Retention scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *RetentionScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runSweep(ctx)

				next := nextRunAfter(time.Now(), s.hour, s.minute)
				s.mu.Lock()
				s.nextRunAt = &next
				s.mu.Unlock()
			}
		}
	}
}

func (s *RetentionScheduler) shouldRun(now time.Time) bool {
	s.mu.Lock()
	next := s.nextRunAt
	s.mu.Unlock()

	return next != nil && !now.Before(*next)
}

// runSweep executes one maintenance pass. A pass that is still running
// when the next trigger fires is not started twice.
func (s *RetentionScheduler) runSweep(ctx context.Context) {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Warn("Skipping retention sweep, previous sweep still running")
		return
	}
	s.sweeping = true
	now := time.Now()
	s.lastRunAt = &now
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	s.logger.Info("Starting retention sweep")

	batchSize := s.cfg.RetentionBatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	totalExpired := 0
	for {
		expired, err := s.runner.SweepExpiredDocuments(ctx, batchSize)
		if err != nil {
			s.logger.Error("Retention sweep failed", zap.Error(err))
			break
		}
		totalExpired += expired
		if expired < batchSize {
			break
		}
	}

	var deletedLogs int64
	if s.cfg.ActivityCleanupEnabled {
		var err error
		deletedLogs, err = s.runner.CleanupActivityLogs(ctx)
		if err != nil {
			s.logger.Error("Activity log cleanup failed", zap.Error(err))
		}
	}

	s.logger.Info("Retention sweep finished",
		zap.Int("documents_expired", totalExpired),
		zap.Int64("activity_logs_deleted", deletedLogs),
	)
}

// TriggerManualRun runs a sweep outside the schedule. It uses a background
// context so an HTTP request ending does not cancel the sweep.
func (s *RetentionScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if s.sweeping {
		s.mu.Unlock()
		return ErrSweepAlreadyRunning
	}
	s.mu.Unlock()

	go s.runSweep(context.Background())
	return nil
}

// GetStatus returns the scheduler state for the admin status endpoint.
func (s *RetentionScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.cfg.Enabled,
		"is_running":  s.isRunning,
		"hour":        s.hour,
		"minute":      s.minute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *RetentionScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
