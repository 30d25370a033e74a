package timeout

import (
	"context"
	"errors"
	"time"

	"github.com/kbukum/foremit/clock"
)

// ErrTimedOut is the marker a Wrapper resolves to once its deadline elapsed.
var ErrTimedOut = errors.New("timeout: deadline elapsed")

// Wrapper is a re-armable deadline of d after the latest Progress.
type Wrapper struct {
	d        time.Duration
	progress *Progress
	clock    clock.Clock
}

// New creates a Wrapper. A nil clock means the real clock.
func New(d time.Duration, progress *Progress, c clock.Clock) *Wrapper {
	if c == nil {
		c = clock.Real()
	}
	return &Wrapper{d: d, progress: progress, clock: c}
}

// Duration returns the window length.
func (w *Wrapper) Duration() time.Duration { return w.d }

// Deadline returns the current deadline. It moves forward with every Touch.
func (w *Wrapper) Deadline() time.Time {
	return w.progress.Last().Add(w.d)
}

// Remaining returns the time left before the current deadline.
func (w *Wrapper) Remaining() time.Duration {
	return w.Deadline().Sub(w.clock.Now())
}

// Expired reports whether the current deadline has been reached.
func (w *Wrapper) Expired() bool {
	return !w.clock.Now().Before(w.Deadline())
}

// Wait blocks until the latest deadline elapses, returning ErrTimedOut, or
// until ctx is done, returning ctx.Err(). Each turn sleeps exactly until the
// deadline known at that moment.
func (w *Wrapper) Wait(ctx context.Context) error {
	for {
		if w.Expired() {
			return ErrTimedOut
		}
		timer := w.clock.NewTimer(w.Remaining())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
		}
	}
}

// Start runs Wait in the background. The returned channel is closed when the
// deadline elapses; cancelling ctx abandons the wait and leaves it open.
func (w *Wrapper) Start(ctx context.Context) <-chan struct{} {
	expired := make(chan struct{})
	go func() {
		if w.Wait(ctx) == ErrTimedOut {
			close(expired)
		}
	}()
	return expired
}
