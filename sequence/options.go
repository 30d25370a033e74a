package sequence

import (
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/foremit/clock"
	"github.com/kbukum/foremit/diagnostics"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/logger"
)

// Option configures Wrap.
type Option func(*options)

type options struct {
	cfg          Config
	transform    any
	transformSet bool // WithTransform was applied, possibly with nil
	hooks        []diagnostics.Hooks
	logger       *logger.Logger
	meter        metric.Meter
	tracer       trace.Tracer
	clock        clock.Clock
}

// WithConfig replaces the whole Config. Options applied after it still win.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithEvent sets the event whose payloads become items.
func WithEvent(name string) Option {
	return func(o *options) { o.cfg.Event = name }
}

// WithErrorEvent sets the event that fails the sequence.
func WithErrorEvent(name string) Option {
	return func(o *options) { o.cfg.Error = name }
}

// WithEndEvents sets the terminal events. Calling it with no names is a
// configuration error.
func WithEndEvents(names ...string) Option {
	return func(o *options) { o.cfg.End = append([]string{}, names...) }
}

// WithFirstEventTimeout bounds the wait for the first item. Zero disables it.
func WithFirstEventTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.FirstEventTimeout = d }
}

// WithInBetweenTimeout bounds the gap between events. Zero disables it.
func WithInBetweenTimeout(d time.Duration) Option {
	return func(o *options) { o.cfg.InBetweenTimeout = d }
}

// WithLimit ends the sequence after n items. Zero means unlimited.
func WithLimit(n int) Option {
	return func(o *options) { o.cfg.Limit = n }
}

// WithKeepAlive sets the keep-alive tick period. It is ignored when an
// in-between timeout is set.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.cfg.KeepAlive = d }
}

// WithDebug turns on diagnostic hooks.
func WithDebug(debug bool) Option {
	return func(o *options) { o.cfg.Debug = debug }
}

// WithNoSleep skips the scheduler yield before a buffered item is handed out.
func WithNoSleep(noSleep bool) Option {
	return func(o *options) { o.cfg.NoSleep = noSleep }
}

// WithTransform converts every raw payload before it is handed out. Its
// result type must match the sequence's item type.
func WithTransform[T any](fn func(raw any) (T, error)) Option {
	return func(o *options) {
		o.transformSet = true
		if fn == nil {
			o.transform = nil
			return
		}
		o.transform = fn
	}
}

// WithHooks adds diagnostic hooks. Hooks only receive notifications in debug mode.
func WithHooks(h diagnostics.Hooks) Option {
	return func(o *options) { o.hooks = append(o.hooks, h) }
}

// WithLogger sets the logger debug diagnostics write to. The global logger
// is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeter records debug diagnostics as metrics on m.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithTracer opens a span covering the sequence's lifetime.
func WithTracer(tr trace.Tracer) Option {
	return func(o *options) { o.tracer = tr }
}

// WithClock replaces the clock deadlines and keep-alive ticks read.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// converter returns the function turning raw payloads into T.
func converter[T any](transform any, withTransform bool) (func(any) (T, error), error) {
	if !withTransform {
		return assertItem[T], nil
	}
	if transform == nil {
		return nil, errors.InvalidOption("transform", "transform must be callable")
	}
	fn, ok := transform.(func(any) (T, error))
	if !ok {
		return nil, errors.InvalidOption("transform", fmt.Sprintf(
			"transform returns %s, want %s",
			reflect.TypeOf(transform).Out(0), reflect.TypeFor[T](),
		))
	}
	return func(raw any) (T, error) {
		v, err := fn(raw)
		if err != nil {
			var zero T
			return zero, errors.TransformFailed(err)
		}
		return v, nil
	}, nil
}

// assertItem hands raw through unchanged when it already is a T. A nil
// payload becomes the zero T.
func assertItem[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	v, ok := raw.(T)
	if !ok {
		return zero, errors.InvalidItem(raw, reflect.TypeFor[T]().String())
	}
	return v, nil
}
