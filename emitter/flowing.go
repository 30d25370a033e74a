package emitter

import "sync"

// Flowing is an Emitter that starts a pump once a listener is attached to its
// item event. The pump receives the Flowing itself and emits through it.
type Flowing struct {
	*Emitter

	itemEvent string
	pump      func(*Flowing)
	start     sync.Once
	ended     chan struct{}
	endOnce   sync.Once
}

// NewFlowing creates a Flowing emitter. pump runs on its own goroutine.
func NewFlowing(itemEvent string, pump func(*Flowing)) *Flowing {
	return &Flowing{
		Emitter:   New(),
		itemEvent: itemEvent,
		pump:      pump,
		ended:     make(chan struct{}),
	}
}

// On registers fn and starts the pump when fn listens to the item event.
func (f *Flowing) On(event string, fn Listener) ListenerID {
	id := f.Emitter.On(event, fn)
	if event == f.itemEvent && id != 0 {
		f.Resume()
	}
	return id
}

// Resume starts the pump if it has not started yet.
func (f *Flowing) Resume() {
	f.start.Do(func() {
		go f.pump(f)
	})
}

// MarkEnded records that the pump finished. ReadableEnded reports true afterwards.
func (f *Flowing) MarkEnded() {
	f.endOnce.Do(func() { close(f.ended) })
}

// Ended returns a channel closed once MarkEnded was called.
func (f *Flowing) Ended() <-chan struct{} { return f.ended }

// ReadableEnded implements ReadableEnder.
func (f *Flowing) ReadableEnded() bool {
	select {
	case <-f.ended:
		return true
	default:
		return false
	}
}

var _ ReadableEnder = (*Flowing)(nil)
