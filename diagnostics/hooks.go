// Package diagnostics observes a sequence at its state transitions.
//
// Hooks never influence control flow. A sequence installs them only in debug
// mode and uses Nop otherwise.
package diagnostics

import "time"

// Winners reported to RaceFinished.
const (
	WinnerEvent   = "event"
	WinnerTimeout = "timeout"
)

// Hooks receives transition notifications from a sequence. Calls come from
// the consumer goroutine except KeepAlive and KeepAliveEnded, which come from
// the keep-alive ticker.
type Hooks interface {
	// Attached fires once listeners are registered on the source.
	Attached()
	// RaceStarted fires when a pull finds the buffer empty and starts waiting.
	RaceStarted(strategy string)
	// RaceFinished fires when that wait resolves.
	RaceFinished(strategy, winner string)
	// Draining fires before a buffered item is handed out.
	Draining(queued int)
	// Yielded fires after an item is handed out, with the running total.
	Yielded(count int64)
	// LimitReached fires when the yielded count reaches the limit.
	LimitReached(limit int)
	KeepAlive(cycles int, elapsed time.Duration)
	KeepAliveEnded(cycles int, elapsed time.Duration)
	// Returned fires when the consumer closes the sequence before it completed.
	Returned()
	// Detached fires once, when the sequence lets go of the source.
	Detached(state string, lifetime time.Duration)
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) Attached() {}
func (Nop) RaceStarted(string) {}
func (Nop) RaceFinished(string, string) {}
func (Nop) Draining(int) {}
func (Nop) Yielded(int64) {}
func (Nop) LimitReached(int) {}
func (Nop) KeepAlive(int, time.Duration) {}
func (Nop) KeepAliveEnded(int, time.Duration) {}
func (Nop) Returned() {}
func (Nop) Detached(string, time.Duration) {}

// Multi fans every notification out to hooks in order. Nil entries are skipped.
func Multi(hooks ...Hooks) Hooks {
	m := make(multi, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

type multi []Hooks

func (m multi) Attached() {
	for _, h := range m {
		h.Attached()
	}
}

func (m multi) RaceStarted(strategy string) {
	for _, h := range m {
		h.RaceStarted(strategy)
	}
}

func (m multi) RaceFinished(strategy, winner string) {
	for _, h := range m {
		h.RaceFinished(strategy, winner)
	}
}

func (m multi) Draining(queued int) {
	for _, h := range m {
		h.Draining(queued)
	}
}

func (m multi) Yielded(count int64) {
	for _, h := range m {
		h.Yielded(count)
	}
}

func (m multi) LimitReached(limit int) {
	for _, h := range m {
		h.LimitReached(limit)
	}
}

func (m multi) KeepAlive(cycles int, elapsed time.Duration) {
	for _, h := range m {
		h.KeepAlive(cycles, elapsed)
	}
}

func (m multi) KeepAliveEnded(cycles int, elapsed time.Duration) {
	for _, h := range m {
		h.KeepAliveEnded(cycles, elapsed)
	}
}

func (m multi) Returned() {
	for _, h := range m {
		h.Returned()
	}
}

func (m multi) Detached(state string, lifetime time.Duration) {
	for _, h := range m {
		h.Detached(state, lifetime)
	}
}
