package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ning0612/cptrash/internal/logger"
)

// IntervalScheduler repeats sweeps on a fixed interval using time.Ticker
type IntervalScheduler struct {
	config Config
	runner SweepRunner

	// Runtime state
	mu          sync.RWMutex
	running     bool
	stopped     bool      // Track if stopped to prevent restart
	stopOnce    sync.Once // Ensure Stop() is idempotent
	closeOnce   sync.Once // Ensure stoppedChan is closed exactly once
	stopChan    chan struct{}
	stoppedChan chan struct{}

	stats struct {
		lastRunTime    time.Time
		nextRunTime    time.Time
		totalRuns      int
		successfulRuns int
		failedRuns     int
		lastError      string
	}
}

var _ Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler creates a new interval-based scheduler
func NewIntervalScheduler(config Config, runner SweepRunner) (*IntervalScheduler, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", config.Interval)
	}

	if runner == nil {
		return nil, fmt.Errorf("sweep runner cannot be nil")
	}

	return &IntervalScheduler{
		config:      config,
		runner:      runner,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}, nil
}

// Start begins the scheduling loop
func (s *IntervalScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if s.stopped {
		return fmt.Errorf("scheduler cannot be restarted after stop")
	}

	s.running = true
	if s.config.Immediate {
		s.stats.nextRunTime = time.Now()
	} else {
		s.stats.nextRunTime = time.Now().Add(s.config.Interval)
	}

	go s.run(ctx)

	return nil
}

func (s *IntervalScheduler) run(ctx context.Context) {
	defer s.closeOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.running = false
		s.mu.Unlock()
		close(s.stoppedChan)
	})

	if s.config.Immediate {
		s.executeSweep(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

func (s *IntervalScheduler) executeSweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	s.stats.lastRunTime = time.Now()
	s.stats.totalRuns++
	run := s.stats.totalRuns
	s.stats.nextRunTime = time.Now().Add(s.config.Interval)
	s.mu.Unlock()

	log := logger.Get().With("run", run)
	log.Info("scheduled sweep starting")

	err := s.runner.RunSweep(ctx)

	s.mu.Lock()
	if err != nil {
		s.stats.failedRuns++
		s.stats.lastError = err.Error()
	} else {
		s.stats.successfulRuns++
		s.stats.lastError = ""
	}
	next := s.stats.nextRunTime
	s.mu.Unlock()

	if err != nil {
		log.Warn("scheduled sweep failed", "error", err)
	} else {
		log.Info("scheduled sweep finished", "next_run", next.Format(time.RFC3339))
	}
}

// Stop gracefully stops the scheduler and waits for a sweep in flight
func (s *IntervalScheduler) Stop() error {
	s.mu.RLock()
	if !s.running {
		s.mu.RUnlock()
		return fmt.Errorf("scheduler is not running")
	}
	s.mu.RUnlock()

	s.stopOnce.Do(func() {
		close(s.stopChan)
	})

	<-s.stoppedChan

	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	return nil
}

// Done is closed after the loop exits, whether by Stop or ctx cancellation
func (s *IntervalScheduler) Done() <-chan struct{} {
	return s.stoppedChan
}

// Status returns the current scheduler status
func (s *IntervalScheduler) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Status{
		Running:        s.running,
		LastRunTime:    s.stats.lastRunTime,
		NextRunTime:    s.stats.nextRunTime,
		TotalRuns:      s.stats.totalRuns,
		SuccessfulRuns: s.stats.successfulRuns,
		FailedRuns:     s.stats.failedRuns,
		LastError:      s.stats.lastError,
	}
}
