package source

import (
	"context"
	"errors"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/foremit/emitter"
)

// RedisSource emits the messages of a Redis subscription.
type RedisSource struct {
	*emitter.Flowing

	ps       *goredis.PubSub
	stop     chan struct{}
	stopOnce sync.Once
	err      error
}

// Redis emits EventMessage with each *redis.Message received on ps.
// Subscription confirmations and pongs are skipped. A receive failure emits
// EventError. EventEnd is emitted when the subscription is closed, ctx is
// done or Close is called. The source owns ps and closes it on exit.
func Redis(ctx context.Context, ps *goredis.PubSub) *RedisSource {
	s := &RedisSource{ps: ps, stop: make(chan struct{})}
	s.Flowing = emitter.NewFlowing(EventMessage, func(f *emitter.Flowing) {
		go func() {
			select {
			case <-ctx.Done():
				_ = s.Close()
			case <-s.stop:
			}
		}()
		s.pump(ctx, f)
	})
	return s
}

func (s *RedisSource) pump(ctx context.Context, f *emitter.Flowing) {
	defer f.MarkEnded()
	defer s.Close()
	for {
		msg, err := s.ps.Receive(ctx)
		if err != nil {
			if s.stopped() || ctx.Err() != nil || errors.Is(err, goredis.ErrClosed) {
				f.Emit(EventEnd, nil)
				return
			}
			f.Emit(EventError, err)
			return
		}
		switch m := msg.(type) {
		case *goredis.Message:
			f.Emit(EventMessage, m)
		case *goredis.Subscription:
			if m.Count == 0 && (m.Kind == "unsubscribe" || m.Kind == "punsubscribe") {
				f.Emit(EventEnd, nil)
				return
			}
		}
	}
}

func (s *RedisSource) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// Close stops the pump and closes the subscription.
func (s *RedisSource) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.err = s.ps.Close()
	})
	return s.err
}
