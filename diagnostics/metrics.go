package diagnostics

import (
	"context"
	"time"

	"github.com/kbukum/foremit/observability"
)

// Metrics records notifications into OpenTelemetry instruments.
type Metrics struct {
	m   *observability.SequenceMetrics
	ctx context.Context
}

// NewMetrics returns hooks recording into m.
func NewMetrics(m *observability.SequenceMetrics) *Metrics {
	return &Metrics{m: m, ctx: context.Background()}
}

func (h *Metrics) Attached() { h.m.RecordStart(h.ctx) }
func (h *Metrics) RaceStarted(string) {}
func (h *Metrics) Draining(int) {}
func (h *Metrics) Yielded(int64) { h.m.RecordItem(h.ctx) }
func (h *Metrics) LimitReached(limit int) { h.m.RecordLimit(h.ctx, limit) }
func (h *Metrics) Returned() { h.m.RecordReturn(h.ctx) }
func (h *Metrics) KeepAliveEnded(int, time.Duration) {}

func (h *Metrics) RaceFinished(strategy, winner string) {
	h.m.RecordRace(h.ctx, strategy, winner)
}

func (h *Metrics) KeepAlive(int, time.Duration) {
	h.m.RecordKeepAlive(h.ctx)
}

func (h *Metrics) Detached(state string, lifetime time.Duration) {
	h.m.RecordEnd(h.ctx, state, lifetime)
}
