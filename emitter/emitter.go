package emitter

import (
	"sync"
)

// Listener receives the payload of a dispatched event.
type Listener func(payload any)

// ListenerID identifies a registered listener for removal. Go functions are
// not comparable, so removal goes through the ID returned by On.
type ListenerID uint64

// Source is the capability the engine needs from a producer.
type Source interface {
	// On registers fn for event and returns an ID usable with Off.
	On(event string, fn Listener) ListenerID
	// Off removes the listener registered under id. Unknown IDs are ignored.
	Off(event string, id ListenerID)
}

// ReadableEnder is implemented by sources that know their readable side finished.
type ReadableEnder interface {
	ReadableEnded() bool
}

// WritableEnder is implemented by sources that know their writable side finished.
type WritableEnder interface {
	WritableEnded() bool
}

// Ended reports whether src advertises that it already finished.
func Ended(src Source) bool {
	if r, ok := src.(ReadableEnder); ok && r.ReadableEnded() {
		return true
	}
	if w, ok := src.(WritableEnder); ok && w.WritableEnded() {
		return true
	}
	return false
}

// Once registers fn on src so that it is removed before its first call.
func Once(src Source, event string, fn Listener) ListenerID {
	if e, ok := src.(*Emitter); ok {
		return e.Once(event, fn)
	}
	var (
		mu    sync.Mutex
		id    ListenerID
		fired bool
	)
	mu.Lock()
	defer mu.Unlock()
	id = src.On(event, func(payload any) {
		mu.Lock()
		if fired {
			mu.Unlock()
			return
		}
		fired = true
		self := id
		mu.Unlock()
		src.Off(event, self)
		fn(payload)
	})
	return id
}

type listenerEntry struct {
	id   ListenerID
	fn   Listener
	once bool
}

// Emitter is a named-event dispatcher safe for concurrent use.
type Emitter struct {
	listeners map[string][]listenerEntry
	nextID    ListenerID
	mu        sync.RWMutex
}

var _ Source = (*Emitter)(nil)

// New creates an Emitter with no listeners.
func New() *Emitter {
	return &Emitter{
		listeners: make(map[string][]listenerEntry),
		nextID:    1,
	}
}

// On registers fn for event. A nil fn is ignored and yields ID 0.
func (e *Emitter) On(event string, fn Listener) ListenerID {
	return e.add(event, fn, false)
}

// Once registers fn for the next dispatch of event only.
func (e *Emitter) Once(event string, fn Listener) ListenerID {
	return e.add(event, fn, true)
}

func (e *Emitter) add(event string, fn Listener, once bool) ListenerID {
	if fn == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[event] = append(e.listeners[event], listenerEntry{id: id, fn: fn, once: once})
	return id
}

// Off removes the listener registered under id for event.
func (e *Emitter) Off(event string, id ListenerID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(event, id)
}

func (e *Emitter) removeLocked(event string, id ListenerID) bool {
	entries := e.listeners[event]
	for i, entry := range entries {
		if entry.id != id {
			continue
		}
		rest := make([]listenerEntry, 0, len(entries)-1)
		rest = append(rest, entries[:i]...)
		rest = append(rest, entries[i+1:]...)
		if len(rest) == 0 {
			delete(e.listeners, event)
		} else {
			e.listeners[event] = rest
		}
		return true
	}
	return false
}

// RemoveAllListeners drops every listener for event.
func (e *Emitter) RemoveAllListeners(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.listeners, event)
}

// ListenerCount returns the number of listeners registered for event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[event])
}

// Emit dispatches payload to every listener of event in registration order
// and reports whether any listener was called.
func (e *Emitter) Emit(event string, payload any) bool {
	e.mu.Lock()
	snapshot := e.listeners[event]
	if len(snapshot) == 0 {
		e.mu.Unlock()
		return false
	}
	toCall := make([]listenerEntry, 0, len(snapshot))
	for _, entry := range snapshot {
		if entry.once && !e.removeLocked(event, entry.id) {
			continue
		}
		toCall = append(toCall, entry)
	}
	e.mu.Unlock()

	for _, entry := range toCall {
		if !entry.once && !e.registered(event, entry.id) {
			continue
		}
		entry.fn(payload)
	}
	return len(toCall) > 0
}

// registered reports whether id is still attached; listeners removed by an
// earlier listener in the same dispatch are skipped.
func (e *Emitter) registered(event string, id ListenerID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.listeners[event] {
		if entry.id == id {
			return true
		}
	}
	return false
}
