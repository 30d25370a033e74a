package timeout

import (
	"sync/atomic"
	"time"

	"github.com/kbukum/foremit/clock"
)

// Progress holds the instant of the most recent successful event, or the
// instant it was created when no event arrived yet. Safe for concurrent use.
type Progress struct {
	clock  clock.Clock
	base   time.Time
	offset atomic.Int64 // nanoseconds after base
	events atomic.Uint64
}

// NewProgress creates a Progress anchored at the clock's current instant.
func NewProgress(c clock.Clock) *Progress {
	if c == nil {
		c = clock.Real()
	}
	return &Progress{clock: c, base: c.Now()}
}

// Touch records progress now.
func (p *Progress) Touch() {
	p.offset.Store(int64(p.clock.Now().Sub(p.base)))
	p.events.Add(1)
}

// Last returns the instant of the most recent progress.
func (p *Progress) Last() time.Time {
	return p.base.Add(time.Duration(p.offset.Load()))
}

// Started returns the instant the Progress was created.
func (p *Progress) Started() time.Time { return p.base }

// Events returns how many times Touch was called.
func (p *Progress) Events() uint64 { return p.events.Load() }
