package evaluation

import (
	"context"
	"time"
)

// Runner triggers evaluation runs. Satisfied by *Orchestrator.
type Runner interface {
	Run(ctx context.Context, credential string) (*RunReport, error)
}

// Scheduler triggers evaluation runs on a fixed interval using a
// configured service credential. Run errors are logged and the next tick
// proceeds normally; the scheduler never retries a failed run early.
type Scheduler struct {
	runner     Runner
	interval   time.Duration
	credential string
	logger     Logger
}

// NewScheduler creates an interval scheduler.
func NewScheduler(runner Runner, interval time.Duration, credential string) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		credential: credential,
		logger:     noopLogger{},
	}
}

// SetLogger sets the scheduler logger. A nil logger restores the no-op default.
func (s *Scheduler) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Start runs the scheduler loop until ctx is cancelled. It blocks, so
// callers normally run it in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("evaluation scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("evaluation scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.runner.Run(ctx, s.credential); err != nil {
				s.logger.Warn("scheduled evaluation run failed", "error", err)
			}
		}
	}
}
