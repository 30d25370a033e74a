// Package race decides, for every pull that finds the buffer empty, what
// the consumer waits for: the next producer notification, a deadline, or both.
//
// The strategy is chosen from the configured timeouts:
//
//   - none: wait for the next notification indefinitely.
//   - first-event only: race the first wait against the first-event deadline,
//     then switch permanently to waiting indefinitely once an event won.
//   - in-between: race every wait against a rolling deadline measured from
//     the most recent event. Before the first event the first-event timeout
//     is used when set.
package race

import (
	"context"
	"time"

	"github.com/kbukum/foremit/clock"
	"github.com/kbukum/foremit/timeout"
)

// Outcome is what resolved a race.
type Outcome int

const (
	// Event means a producer notification arrived first.
	Event Outcome = iota + 1
	// TimedOut means the active deadline elapsed first.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Event:
		return "event"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Strategy waits for the next thing to happen.
type Strategy interface {
	// Await blocks until signal delivers, the active deadline elapses, or ctx is done.
	Await(ctx context.Context, signal <-chan struct{}) (Outcome, error)
	// Name identifies the deadline currently in force: "untimed",
	// "first_event" or "in_between". After a TimedOut outcome it names the
	// deadline that elapsed.
	Name() string
	// Timeout is the length of the deadline currently in force, zero when untimed.
	Timeout() time.Duration
}

// Config selects and parameterises a Strategy.
type Config struct {
	FirstEvent time.Duration
	InBetween  time.Duration
	Progress   *timeout.Progress
	Clock      clock.Clock
}

// New returns the Strategy matching cfg. Zero durations mean "unset".
func New(cfg Config) Strategy {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Progress == nil {
		cfg.Progress = timeout.NewProgress(cfg.Clock)
	}
	switch {
	case cfg.InBetween > 0:
		r := &rolling{
			progress:  cfg.Progress,
			inBetween: timeout.New(cfg.InBetween, cfg.Progress, cfg.Clock),
		}
		if cfg.FirstEvent > 0 {
			r.first = timeout.New(cfg.FirstEvent, cfg.Progress, cfg.Clock)
		}
		return r
	case cfg.FirstEvent > 0:
		return &firstEvent{deadline: timeout.New(cfg.FirstEvent, cfg.Progress, cfg.Clock)}
	default:
		return untimed{}
	}
}

type untimed struct{}

func (untimed) Name() string { return "untimed" }

func (untimed) Timeout() time.Duration { return 0 }

func (untimed) Await(ctx context.Context, signal <-chan struct{}) (Outcome, error) {
	select {
	case <-signal:
		return Event, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

type firstEvent struct {
	deadline *timeout.Wrapper
	observed bool
}

func (f *firstEvent) Name() string {
	if f.observed {
		return "untimed"
	}
	return "first_event"
}

func (f *firstEvent) Timeout() time.Duration {
	if f.observed {
		return 0
	}
	return f.deadline.Duration()
}

func (f *firstEvent) Await(ctx context.Context, signal <-chan struct{}) (Outcome, error) {
	if f.observed {
		return untimed{}.Await(ctx, signal)
	}
	outcome, err := against(ctx, signal, f.deadline)
	if err == nil && outcome == Event {
		f.observed = true
	}
	return outcome, err
}

type rolling struct {
	progress  *timeout.Progress
	first     *timeout.Wrapper
	inBetween *timeout.Wrapper
}

func (r *rolling) current() (string, *timeout.Wrapper) {
	if r.first != nil && r.progress.Events() == 0 {
		return "first_event", r.first
	}
	return "in_between", r.inBetween
}

func (r *rolling) Name() string {
	name, _ := r.current()
	return name
}

func (r *rolling) Timeout() time.Duration {
	_, w := r.current()
	return w.Duration()
}

func (r *rolling) Await(ctx context.Context, signal <-chan struct{}) (Outcome, error) {
	_, deadline := r.current()
	return against(ctx, signal, deadline)
}

// against races signal against deadline. A notification that is already
// pending when the deadline fires still wins.
func against(ctx context.Context, signal <-chan struct{}, deadline *timeout.Wrapper) (Outcome, error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := deadline.Start(raceCtx)
	select {
	case <-signal:
		return Event, nil
	case <-expired:
		select {
		case <-signal:
			return Event, nil
		default:
			return TimedOut, nil
		}
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
