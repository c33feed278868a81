package cpanel

import (
	"context"
	"errors"
	"time"

	"github.com/Ning0612/cptrash/internal/logger"
)

var errNotStable = errors.New("listing did not stabilize")

// WaitStable blocks until the listing is safe to read.
// It never fails hard: after the last retry it sleeps briefly and returns false.
func (v *View) WaitStable(ctx context.Context) bool {
	t := v.timing
	retries := t.StabilizeRetries
	if retries < 1 {
		retries = 1
	}

	for attempt := 1; attempt <= retries; attempt++ {
		err := v.stabilizeOnce(ctx)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}

		logger.Get().Debug("listing not stable yet", "attempt", attempt, "error", err)
		if attempt < retries {
			if !sleep(ctx, t.StabilizeBackoff*time.Duration(attempt)) {
				return false
			}
		}
	}

	logger.Get().Warn("listing never stabilized, continuing", "retries", retries)
	sleep(ctx, t.FallbackDelay)
	return false
}

func (v *View) stabilizeOnce(ctx context.Context) error {
	t := v.timing

	if err := v.waitFor(ctx, t.Timeout, func() (bool, error) {
		return v.exists(ctx, SelectorListing)
	}); err != nil {
		return err
	}

	if err := v.waitFor(ctx, t.Timeout, func() (bool, error) {
		n, err := v.count(ctx, SelectorRows)
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
		return v.exists(ctx, SelectorEmpty)
	}); err != nil {
		return err
	}

	// Debounce progressive rendering: the row count must repeat
	deadline := time.Now().Add(t.Timeout)
	previous, stable := -1, 0
	for stable < t.StableChecks {
		n, err := v.count(ctx, SelectorRows)
		if err != nil {
			return err
		}
		if n == previous {
			stable++
		} else {
			stable = 0
			previous = n
		}
		if stable < t.StableChecks {
			if time.Now().After(deadline) {
				return errNotStable
			}
			if !sleep(ctx, t.StablePollInterval) {
				return ctx.Err()
			}
		}
	}

	if !sleep(ctx, t.SettleDelay) {
		return ctx.Err()
	}
	return nil
}

// waitFor polls cond until it holds, timeout elapses, or ctx is done.
// Evaluation errors count as "not yet": the page may be mid-navigation.
func (v *View) waitFor(ctx context.Context, timeout time.Duration, cond func() (bool, error)) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond()
		if err == nil && ok {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return errNotStable
		}
		if !sleep(ctx, v.timing.PollInterval) {
			return ctx.Err()
		}
	}
}

func (v *View) exists(ctx context.Context, selector string) (bool, error) {
	var ok bool
	err := v.page.Call(ctx, existsScript, &ok, selector)
	return ok, err
}

func (v *View) count(ctx context.Context, selector string) (int, error) {
	var n int
	err := v.page.Call(ctx, countScript, &n, selector)
	return n, err
}
