package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ning0612/cptrash/internal/scheduler"
	"github.com/Ning0612/cptrash/internal/state"
)

// DaemonService repeats sweeps on an interval until stopped
type DaemonService struct {
	mu        sync.RWMutex
	scheduler scheduler.Scheduler
	sweepSvc  *SweepService
}

// DaemonStatus represents the current daemon status
type DaemonStatus struct {
	Running        bool
	SchedulerStats *scheduler.Status
	LastRun        *state.RunRecord
}

// NewDaemonService creates a daemon driving sweepSvc
func NewDaemonService(sweepSvc *SweepService) (*DaemonService, error) {
	if sweepSvc == nil {
		return nil, fmt.Errorf("sweep service cannot be nil")
	}
	return &DaemonService{sweepSvc: sweepSvc}, nil
}

// Start runs the first sweep immediately and then one every interval
func (d *DaemonService) Start(ctx context.Context, interval time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler != nil {
		return fmt.Errorf("daemon is already running")
	}

	sched, err := scheduler.NewIntervalScheduler(scheduler.Config{
		Interval:  interval,
		Immediate: true,
	}, d.sweepSvc)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	d.scheduler = sched
	return nil
}

// Wait blocks until the scheduler loop exits, normally by ctx cancellation
func (d *DaemonService) Wait() {
	d.mu.RLock()
	sched := d.scheduler
	d.mu.RUnlock()

	if sched != nil {
		<-sched.Done()
	}
}

// Stop stops the daemon
func (d *DaemonService) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scheduler == nil {
		return fmt.Errorf("daemon is not running")
	}

	select {
	case <-d.scheduler.Done():
		// already exited through ctx
	default:
		if err := d.scheduler.Stop(); err != nil {
			return fmt.Errorf("failed to stop scheduler: %w", err)
		}
	}

	d.scheduler = nil
	return nil
}

// Status returns the current daemon status
func (d *DaemonService) Status() *DaemonStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := &DaemonStatus{}

	if d.scheduler != nil {
		status.SchedulerStats = d.scheduler.Status()
		status.Running = status.SchedulerStats.Running
	}

	history, err := d.sweepSvc.History(1)
	if err == nil && len(history) > 0 {
		status.LastRun = &history[0]
	}

	return status
}
