package sequence

// State is the lifecycle position of a sequence.
type State int

const (
	// Active means the source is attached and may still emit.
	Active State = iota
	// Draining means a terminal event arrived; buffered items are still handed out.
	Draining
	// Erroring means the source emitted an error. Buffered items are discarded.
	Erroring
	// TimedOut means a deadline elapsed while the buffer was empty.
	TimedOut
	// Completed means the sequence ended without error or was closed.
	Completed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Erroring:
		return "erroring"
	case TimedOut:
		return "timed_out"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further item can be produced in this state.
func (s State) Terminal() bool {
	return s == Erroring || s == TimedOut || s == Completed
}
