package diagnostics

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Recorder keeps every notification in memory. It is meant for tests.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) add(format string, args ...any) {
	r.mu.Lock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

// Events returns the notifications received so far, formatted as
// "name" or "name:args".
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Count returns how many recorded events equal prefix or extend it with ":args".
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, e := range r.Events() {
		if e == prefix || strings.HasPrefix(e, prefix+":") {
			n++
		}
	}
	return n
}

func (r *Recorder) Attached() { r.add("attached") }
func (r *Recorder) RaceStarted(strategy string) { r.add("race_started:%s", strategy) }
func (r *Recorder) RaceFinished(strategy, winner string) { r.add("race_finished:%s:%s", strategy, winner) }
func (r *Recorder) Draining(queued int) { r.add("draining:%d", queued) }
func (r *Recorder) Yielded(count int64) { r.add("yielded:%d", count) }
func (r *Recorder) LimitReached(limit int) { r.add("limit_reached:%d", limit) }
func (r *Recorder) KeepAlive(cycles int, _ time.Duration) {
	r.add("keep_alive:%d", cycles)
}
func (r *Recorder) KeepAliveEnded(cycles int, _ time.Duration) {
	r.add("keep_alive_ended:%d", cycles)
}
func (r *Recorder) Returned() { r.add("returned") }
func (r *Recorder) Detached(state string, _ time.Duration) { r.add("detached:%s", state) }
