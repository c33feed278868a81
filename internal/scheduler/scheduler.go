package scheduler

import (
	"context"
	"time"
)

// Scheduler defines the interface for repeated sweep schedulers
type Scheduler interface {
	// Start begins the scheduling loop
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler
	Stop() error

	// Done is closed once the loop has exited
	Done() <-chan struct{}

	// Status returns the current scheduler status
	Status() *Status
}

// Status represents the current state of a scheduler
type Status struct {
	Running        bool
	LastRunTime    time.Time
	NextRunTime    time.Time
	TotalRuns      int
	SuccessfulRuns int
	FailedRuns     int
	LastError      string
}

// Config contains scheduler configuration
type Config struct {
	// Interval specifies the duration between sweeps
	Interval time.Duration

	// Immediate runs the first sweep as soon as Start is called
	// instead of waiting one full interval
	Immediate bool
}

// SweepRunner is the interface that schedulers use to execute one sweep
type SweepRunner interface {
	RunSweep(ctx context.Context) error
}

// RunnerFunc adapts a plain function to SweepRunner
type RunnerFunc func(ctx context.Context) error

// RunSweep calls f(ctx)
func (f RunnerFunc) RunSweep(ctx context.Context) error {
	return f(ctx)
}
