package source

import (
	"context"
	"sync"

	"github.com/kbukum/foremit/emitter"
)

// ChanSource emits the values of a channel.
type ChanSource[T any] struct {
	*emitter.Flowing

	stop     chan struct{}
	stopOnce sync.Once
}

// Chan emits EventData for each value received from ch and EventError for
// each error received from errc. EventEnd is emitted when ch closes, ctx is
// done or Close is called. errc may be nil.
func Chan[T any](ctx context.Context, ch <-chan T, errc <-chan error) *ChanSource[T] {
	s := &ChanSource[T]{stop: make(chan struct{})}
	s.Flowing = emitter.NewFlowing(EventData, func(f *emitter.Flowing) {
		defer f.MarkEnded()
		defer f.Emit(EventEnd, nil)
		for {
			if s.stopped() {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case err, ok := <-errc:
				if !ok {
					errc = nil
					continue
				}
				f.Emit(EventError, err)
			case v, ok := <-ch:
				if !ok {
					return
				}
				f.Emit(EventData, v)
			}
		}
	})
	return s
}

func (s *ChanSource[T]) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Close stops the pump. A pump that has not started yet never starts
// delivering values.
func (s *ChanSource[T]) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.Resume()
	})
	return nil
}
