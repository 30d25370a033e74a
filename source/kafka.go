package source

import (
	"context"
	"errors"
	"io"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/foremit/emitter"
)

// MessageReader is the part of *kafka.Reader the Kafka source uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// KafkaSource emits the messages of a Kafka reader.
type KafkaSource struct {
	*emitter.Flowing

	r        MessageReader
	cancel   context.CancelFunc
	stopOnce sync.Once
	err      error
}

// Kafka emits EventMessage with each kafka.Message read from r. A read
// failure emits EventError. EventEnd is emitted when the reader is closed, ctx
// is done or Close is called. The source owns r and closes it on exit.
func Kafka(ctx context.Context, r MessageReader) *KafkaSource {
	ctx, cancel := context.WithCancel(ctx)
	s := &KafkaSource{r: r, cancel: cancel}
	s.Flowing = emitter.NewFlowing(EventMessage, func(f *emitter.Flowing) {
		s.pump(ctx, f)
	})
	return s
}

func (s *KafkaSource) pump(ctx context.Context, f *emitter.Flowing) {
	defer f.MarkEnded()
	defer s.Close()
	for {
		msg, err := s.r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				f.Emit(EventEnd, nil)
				return
			}
			f.Emit(EventError, err)
			return
		}
		f.Emit(EventMessage, msg)
	}
}

// Close stops the pump and closes the reader.
func (s *KafkaSource) Close() error {
	s.stopOnce.Do(func() {
		s.cancel()
		s.err = s.r.Close()
	})
	return s.err
}
