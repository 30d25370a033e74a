package sequence

import (
	"context"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/foremit/clock"
	"github.com/kbukum/foremit/diagnostics"
	"github.com/kbukum/foremit/emitter"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/queue"
	"github.com/kbukum/foremit/race"
	"github.com/kbukum/foremit/timeout"
)

// Iterator provides pull-based sequential access to a stream of values.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator.
	Close() error
}

// Sequence buffers the items of one source and hands them out one pull at a
// time. Next must not be called concurrently; Close may be called from any
// goroutine.
type Sequence[T any] struct {
	id       string
	cfg      Config
	src      emitter.Source
	convert  func(any) (T, error)
	hooks    diagnostics.Hooks
	clock    clock.Clock
	progress *timeout.Progress
	strategy race.Strategy
	span     trace.Span
	started  time.Time

	// signal wakes a waiting pull. One slot is enough: items are buffered
	// separately, so a coalesced notification loses nothing.
	signal chan struct{}

	mu      sync.Mutex
	queue   *queue.Queue[any]
	active  bool
	state   State
	pending error // recorded producer error, returned by the next pull
	err     error // terminal error already returned
	yielded int64
	limited bool
	done    bool

	regMu    sync.Mutex
	regs     []registration
	detached bool

	keepAliveStop chan struct{}
	keepAliveDone chan struct{}
	stopOnce      sync.Once
	finishOnce    sync.Once
}

type registration struct {
	event string
	id    emitter.ListenerID
}

// Wrap attaches to src and returns the sequence of its items. Configuration
// problems are returned as INVALID_SOURCE, SOURCE_ENDED or INVALID_OPTION
// errors and leave src untouched.
func Wrap[T any](src emitter.Source, opts ...Option) (*Sequence[T], error) {
	if isNil(src) {
		return nil, errors.InvalidSource("source is nil")
	}
	if emitter.Ended(src) {
		return nil, errors.SourceEnded()
	}

	o := options{cfg: Config{}}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.ApplyDefaults()
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	convert, err := converter[T](o.transform, o.transformSet)
	if err != nil {
		return nil, err
	}
	if o.clock == nil {
		o.clock = clock.Real()
	}

	s := &Sequence[T]{
		id:      uuid.NewString(),
		cfg:     o.cfg,
		src:     src,
		convert: convert,
		clock:   o.clock,
		signal:  make(chan struct{}, 1),
		queue:   queue.New[any](),
		active:  true,
		state:   Active,
	}
	if s.hooks, err = buildHooks(s.id, &o); err != nil {
		return nil, err
	}
	s.progress = timeout.NewProgress(o.clock)
	s.started = s.progress.Started()
	s.strategy = race.New(race.Config{
		FirstEvent: o.cfg.FirstEventTimeout,
		InBetween:  o.cfg.InBetweenTimeout,
		Progress:   s.progress,
		Clock:      o.clock,
	})
	if o.tracer != nil {
		_, s.span = observability.StartSequenceSpan(context.Background(), o.tracer, s.id, o.cfg.Event)
	}

	if o.cfg.keepAliveEnabled() {
		s.keepAliveStop = make(chan struct{})
		s.keepAliveDone = make(chan struct{})
		go s.keepAlive(o.cfg.KeepAlive)
	}

	// Terminal listeners go first so a flowing source cannot finish before
	// they are in place.
	s.listen(o.cfg.Error, s.onError)
	for _, event := range o.cfg.End {
		s.listen(event, s.onEnd)
	}
	s.listen(o.cfg.Event, s.onItem)
	s.hooks.Attached()

	return s, nil
}

func buildHooks(id string, o *options) (diagnostics.Hooks, error) {
	if !o.cfg.Debug {
		return diagnostics.Nop{}, nil
	}
	l := o.logger
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	hooks := append([]diagnostics.Hooks{
		diagnostics.NewLogger(l.WithFields(logger.Fields(logger.FieldSequenceID, id))),
	}, o.hooks...)
	if o.meter != nil {
		m, err := observability.NewSequenceMetrics(o.meter)
		if err != nil {
			return nil, errors.InvalidOption("meter", err.Error()).WithCause(err)
		}
		hooks = append(hooks, diagnostics.NewMetrics(m))
	}
	return diagnostics.Multi(hooks...), nil
}

func isNil(src emitter.Source) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// ID identifies the sequence in logs and traces.
func (s *Sequence[T]) ID() string { return s.id }

// Config returns the effective configuration.
func (s *Sequence[T]) Config() Config { return s.cfg }

// State returns the current lifecycle state.
func (s *Sequence[T]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Yielded returns how many items were handed out.
func (s *Sequence[T]) Yielded() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.yielded
}

// Err returns the error that ended the sequence, once a pull returned it.
func (s *Sequence[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Next returns the next item. It returns (zero, false, nil) once the
// sequence completed and the terminal error exactly once when it failed.
// A cancelled ctx aborts the wait with ctx.Err() and leaves the sequence
// usable.
func (s *Sequence[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	// scheduled is set once this pull already gave other goroutines a turn
	// or was woken by a notification; the buffered item is then taken at once.
	scheduled := false
	for {
		s.mu.Lock()
		if s.done {
			s.mu.Unlock()
			return zero, false, nil
		}
		if err := s.pending; err != nil {
			s.pending = nil
			s.queue.Clear()
			s.done = true
			s.err = err
			s.mu.Unlock()
			s.finish(err)
			return zero, false, err
		}
		if s.limited || (s.queue.Len() == 0 && !s.active) {
			s.queue.Clear()
			s.done = true
			s.state = Completed
			s.mu.Unlock()
			s.finish(nil)
			return zero, false, nil
		}

		if s.queue.Len() == 0 {
			s.mu.Unlock()
			if err := s.await(ctx); err != nil {
				return zero, false, err
			}
			scheduled = true
			continue
		}

		if !scheduled && !s.cfg.NoSleep {
			s.mu.Unlock()
			runtime.Gosched()
			scheduled = true
			continue
		}

		queued := s.queue.Len()
		raw, _ := s.queue.Shift()
		s.mu.Unlock()
		s.hooks.Draining(queued)

		item, err := s.convert(raw)
		if err != nil {
			return zero, false, s.fail(Erroring, err)
		}
		return s.deliver(item)
	}
}

// await waits for a notification while the buffer is empty. It returns a
// TIMEOUT error once the sequence failed on its deadline, ctx.Err() when
// ctx ended, and nil when the pull should look at the buffer again.
func (s *Sequence[T]) await(ctx context.Context) error {
	name, d := s.strategy.Name(), s.strategy.Timeout()
	s.hooks.RaceStarted(name)
	outcome, err := s.strategy.Await(ctx, s.signal)
	if err != nil {
		return err
	}
	if outcome == race.Event {
		s.hooks.RaceFinished(name, diagnostics.WinnerEvent)
		return nil
	}
	s.hooks.RaceFinished(name, diagnostics.WinnerTimeout)

	s.mu.Lock()
	// A close, producer error or item that landed together with the
	// deadline wins.
	if s.done || s.pending != nil || s.queue.Len() > 0 || !s.active {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.fail(TimedOut, errors.Timeout(name, d))
}

// deliver counts item and ends the sequence when the limit is reached.
func (s *Sequence[T]) deliver(item T) (T, bool, error) {
	s.mu.Lock()
	if s.done {
		// Closed while the item was converted.
		s.mu.Unlock()
		var zero T
		return zero, false, nil
	}
	s.yielded++
	n := s.yielded
	reached := s.cfg.Limit > 0 && n >= int64(s.cfg.Limit)
	if reached {
		s.limited = true
		s.active = false
		s.queue.Clear()
	}
	s.mu.Unlock()

	s.hooks.Yielded(n)
	if reached {
		s.hooks.LimitReached(s.cfg.Limit)
		s.stopKeepAlive()
		s.detach()
	}
	return item, true, nil
}

// fail ends the sequence in state with err and returns err.
func (s *Sequence[T]) fail(state State, err error) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.active = false
	s.state = state
	s.err = err
	s.queue.Clear()
	s.mu.Unlock()
	s.finish(err)
	return err
}

// Close stops the sequence early. It detaches from the source before it
// returns, discards buffered items, and wakes a pull blocked in another
// goroutine, which then reports completion. Closing twice is a no-op.
func (s *Sequence[T]) Close() error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	s.active = false
	s.pending = nil
	s.state = Completed
	s.queue.Clear()
	s.mu.Unlock()

	s.hooks.Returned()
	s.finish(nil)
	s.notify()
	return nil
}

func (s *Sequence[T]) onItem(payload any) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.queue.Push(payload)
	s.mu.Unlock()
	s.progress.Touch()
	s.notify()
}

func (s *Sequence[T]) onError(payload any) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.state = Erroring
	s.pending = errors.Producer(s.cfg.Error, payload)
	s.queue.Clear()
	s.mu.Unlock()

	s.stopKeepAlive()
	s.detach()
	s.notify()
}

func (s *Sequence[T]) onEnd(any) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.state = Draining
	s.mu.Unlock()

	s.stopKeepAlive()
	s.detach()
	s.notify()
}

func (s *Sequence[T]) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Sequence[T]) listen(event string, fn emitter.Listener) {
	id := s.src.On(event, fn)
	s.regMu.Lock()
	if s.detached {
		// An earlier listener already ended the sequence during attachment.
		s.regMu.Unlock()
		s.src.Off(event, id)
		return
	}
	s.regs = append(s.regs, registration{event: event, id: id})
	s.regMu.Unlock()
}

// detach removes every listener this sequence registered. Safe to call any
// number of times from any goroutine, including from inside a listener.
func (s *Sequence[T]) detach() {
	s.regMu.Lock()
	if s.detached {
		s.regMu.Unlock()
		return
	}
	s.detached = true
	regs := s.regs
	s.regs = nil
	s.regMu.Unlock()

	for _, r := range regs {
		s.src.Off(r.event, r.id)
	}
}

// finish tears the sequence down once it reached a terminal state.
func (s *Sequence[T]) finish(err error) {
	s.detach()
	s.stopKeepAlive()
	s.finishOnce.Do(func() {
		s.mu.Lock()
		state, yielded := s.state, s.yielded
		s.mu.Unlock()

		s.hooks.Detached(state.String(), s.clock.Now().Sub(s.started))
		if s.span != nil {
			observability.EndSequenceSpan(s.span, state.String(), yielded, err)
		}
	})
}
