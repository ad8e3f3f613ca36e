package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// JobFunc is a periodic unit of work. Errors are logged and swallowed so a
// failing tick never takes down the schedule.
type JobFunc func(ctx context.Context) error

type schedulerState int

const (
	stateIdle schedulerState = iota
	stateRunning
	stateShutdown
)

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
	inFlight atomic.Bool
}

// FixedRateScheduler runs named jobs at fixed intervals, at most one
// execution per job in flight: a tick that arrives while the previous run is
// still going is skipped, not queued. Single-use: IDLE -> RUNNING -> SHUTDOWN.
type FixedRateScheduler struct {
	logger *slog.Logger

	mu    sync.Mutex
	state schedulerState
	jobs  []*job

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFixedRateScheduler creates an idle scheduler.
func NewFixedRateScheduler(logger *slog.Logger) *FixedRateScheduler {
	return &FixedRateScheduler{logger: logger}
}

// Schedule registers a named periodic job. Jobs cannot be added once the
// scheduler is running.
func (s *FixedRateScheduler) Schedule(name string, interval time.Duration, fn JobFunc) error {
	if interval <= 0 {
		return fmt.Errorf("job %q: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return fmt.Errorf("cannot schedule job %q after scheduler has started", name)
	}

	s.jobs = append(s.jobs, &job{name: name, interval: interval, fn: fn})
	s.logger.Info("job scheduled",
		slog.String("job", name),
		slog.Duration("interval", interval),
	)
	return nil
}

// Start launches all registered jobs and returns. Jobs tick until Shutdown
// is called or the parent context is cancelled.
func (s *FixedRateScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateIdle {
		return fmt.Errorf("scheduler already started")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state = stateRunning

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runJob(runCtx, j)
	}

	s.logger.Info("scheduler started", slog.Int("job_count", len(s.jobs)))
	return nil
}

// Shutdown stops ticking and waits for in-flight executions to drain, up to
// the deadline on ctx. Idempotent.
func (s *FixedRateScheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateRunning {
		s.state = stateShutdown
		s.mu.Unlock()
		return nil
	}
	s.state = stateShutdown
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("scheduler shutdown complete")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler shutdown timed out with jobs still in flight")
		return ctx.Err()
	}
}

func (s *FixedRateScheduler) runJob(ctx context.Context, j *job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !j.inFlight.CompareAndSwap(false, true) {
				s.logger.Warn("previous run still in flight, skipping tick",
					slog.String("job", j.name))
				continue
			}
			s.execute(ctx, j)
			j.inFlight.Store(false)
		}
	}
}

func (s *FixedRateScheduler) execute(ctx context.Context, j *job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled job panicked",
				slog.String("job", j.name),
				slog.Any("panic", r),
			)
		}
	}()

	if err := j.fn(ctx); err != nil {
		s.logger.Error("scheduled job failed",
			slog.String("job", j.name),
			slog.String("error", err.Error()),
		)
	}
}
