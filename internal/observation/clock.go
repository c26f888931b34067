// Package observation drives periodic re-evaluation of a wave event's
// status and exposes the result as a reactive stream. One long-lived
// goroutine per observed event samples the wave model at an interval
// that adapts to how close the event (and the observer's hit) is.
package observation

import (
	"context"
	"time"
)

// Clock abstracts time for the scheduler so tests can run it against a
// fake. Sleep must return early with the context error when the
// context is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep blocks for the duration or until the context is cancelled.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
