package diagnostics

import (
	"time"

	"github.com/kbukum/foremit/logger"
)

// Logger writes every notification as a debug line.
type Logger struct {
	log *logger.Logger
}

// NewLogger returns hooks that log through l. A nil l uses the global logger.
func NewLogger(l *logger.Logger) *Logger {
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &Logger{log: l.WithComponent("sequence")}
}

func (h *Logger) Attached() {
	h.log.Debug("listeners attached")
}

func (h *Logger) RaceStarted(strategy string) {
	h.log.Debug("race started", logger.Fields(logger.FieldStrategy, strategy))
}

func (h *Logger) RaceFinished(strategy, winner string) {
	h.log.Debug("race finished", logger.Fields(logger.FieldStrategy, strategy, logger.FieldWinner, winner))
}

func (h *Logger) Draining(queued int) {
	h.log.Debug("draining queue", logger.Fields(logger.FieldQueued, queued))
}

func (h *Logger) Yielded(count int64) {
	h.log.Debug("item yielded", logger.Fields(logger.FieldYielded, count))
}

func (h *Logger) LimitReached(limit int) {
	h.log.Debug("limit reached", logger.Fields("limit", limit))
}

func (h *Logger) KeepAlive(cycles int, elapsed time.Duration) {
	h.log.Debug("keep alive", keepAliveFields(cycles, elapsed))
}

func (h *Logger) KeepAliveEnded(cycles int, elapsed time.Duration) {
	h.log.Debug("keep alive ended", keepAliveFields(cycles, elapsed))
}

func (h *Logger) Returned() {
	h.log.Debug("consumer returned early")
}

func (h *Logger) Detached(state string, lifetime time.Duration) {
	h.log.Debug("listeners detached", logger.Fields(
		logger.FieldState, state,
		logger.FieldDuration, lifetime.Milliseconds(),
	))
}

func keepAliveFields(cycles int, elapsed time.Duration) map[string]interface{} {
	var rate float64
	if elapsed > 0 {
		rate = float64(cycles) / elapsed.Seconds()
	}
	return logger.Fields(
		"cycles", cycles,
		logger.FieldDuration, elapsed.Milliseconds(),
		"cycles_per_sec", rate,
	)
}
