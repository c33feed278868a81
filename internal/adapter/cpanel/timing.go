package cpanel

import (
	"context"
	"time"
)

// Timing holds every wait the view performs against the File Manager.
// The defaults mirror how fast the YUI DataTable renders on a typical host.
type Timing struct {
	// Timeout bounds each wait for the listing container and rows
	Timeout time.Duration
	// NavigationTimeout bounds a page load
	NavigationTimeout time.Duration
	// PollInterval is how often element waits re-check the page
	PollInterval time.Duration

	// StablePollInterval is the row-count debounce interval
	StablePollInterval time.Duration
	// StableChecks is how many unchanged polls prove the listing settled
	StableChecks int
	// SettleDelay is slept once the row count settled
	SettleDelay time.Duration
	// StabilizeRetries is how many times the whole sequence is tried
	StabilizeRetries int
	// StabilizeBackoff is multiplied by the attempt number between retries
	StabilizeBackoff time.Duration
	// FallbackDelay is slept after the last failed attempt
	FallbackDelay time.Duration

	// ListDelay is slept before reading the listing
	ListDelay time.Duration
	// EmptyRetries is how often an empty listing is re-read
	EmptyRetries int
	// EmptyRetryDelay separates empty-listing re-reads
	EmptyRetryDelay time.Duration

	// ActionDelay is slept after a successful selection click
	ActionDelay time.Duration
	// PreDeleteDelay is slept before the delete action is triggered
	PreDeleteDelay time.Duration
	// ConfirmDelay is slept between the delete action and the confirmation
	ConfirmDelay time.Duration
	// DeleteSettleDelay is slept after confirming
	DeleteSettleDelay time.Duration

	// SinglePreDelay is slept before selecting a single row
	SinglePreDelay time.Duration
	// SingleRetryDelay is slept before the second single-row selection attempt
	SingleRetryDelay time.Duration
	// SinglePostDelay is slept after deleting a single row
	SinglePostDelay time.Duration
}

// DefaultTiming returns the standard waits with the given listing timeout
func DefaultTiming(timeout time.Duration) Timing {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return Timing{
		Timeout:           timeout,
		NavigationTimeout: 60 * time.Second,
		PollInterval:      100 * time.Millisecond,

		StablePollInterval: 100 * time.Millisecond,
		StableChecks:       3,
		SettleDelay:        150 * time.Millisecond,
		StabilizeRetries:   3,
		StabilizeBackoff:   500 * time.Millisecond,
		FallbackDelay:      200 * time.Millisecond,

		ListDelay:       150 * time.Millisecond,
		EmptyRetries:    3,
		EmptyRetryDelay: 500 * time.Millisecond,

		ActionDelay:       150 * time.Millisecond,
		PreDeleteDelay:    200 * time.Millisecond,
		ConfirmDelay:      150 * time.Millisecond,
		DeleteSettleDelay: 500 * time.Millisecond,

		SinglePreDelay:   300 * time.Millisecond,
		SingleRetryDelay: 500 * time.Millisecond,
		SinglePostDelay:  300 * time.Millisecond,
	}
}

// sleep waits for d or until ctx is done; it reports whether the wait completed
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
