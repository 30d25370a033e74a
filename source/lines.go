package source

import (
	"bufio"
	"io"
	"sync/atomic"

	"github.com/kbukum/foremit/emitter"
)

// LinesSource emits the lines of a reader.
type LinesSource struct {
	*emitter.Flowing

	r      io.Reader
	closed atomic.Bool
}

// Lines emits EventLine with each line of r as a string, without its line
// terminator. A scan failure emits EventError. EventClose is emitted when the
// reader is exhausted, after which ReadableEnded reports true.
func Lines(r io.Reader) *LinesSource {
	s := &LinesSource{r: r}
	s.Flowing = emitter.NewFlowing(EventLine, s.pump)
	return s
}

func (s *LinesSource) pump(f *emitter.Flowing) {
	scanner := bufio.NewScanner(s.r)
	for scanner.Scan() {
		if s.closed.Load() {
			break
		}
		f.Emit(EventLine, scanner.Text())
	}
	if err := scanner.Err(); err != nil && !s.closed.Load() {
		f.MarkEnded()
		f.Emit(EventError, err)
		return
	}
	f.MarkEnded()
	f.Emit(EventClose, nil)
}

// Close stops emitting lines and closes the reader when it is an io.Closer.
func (s *LinesSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
