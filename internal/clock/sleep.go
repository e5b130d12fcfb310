// Package clock holds the time helpers shared by reconciliation sessions.
package clock

import (
	"context"
	"time"
)

// SleepWithContext blocks for d. It returns ctx.Err() when ctx ends first.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// StrictlyAfter returns now when it is later than prev, otherwise prev plus one nanosecond.
// Snapshot timestamps of one account are ordered by it even when the wall clock stalls or steps back.
func StrictlyAfter(prev, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}
