package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/foremit/logger"
)

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The provider should be shut down on application exit.
func InitMeter(ctx context.Context, cfg *Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// SequenceMetrics holds the instruments sequences report into.
type SequenceMetrics struct {
	active    metric.Int64UpDownCounter
	items     metric.Int64Counter
	races     metric.Int64Counter
	timeouts  metric.Int64Counter
	keepAlive metric.Int64Counter
	returns   metric.Int64Counter
	limits    metric.Int64Counter
	lifetime  metric.Float64Histogram
}

// NewSequenceMetrics creates the sequence instruments on meter.
func NewSequenceMetrics(meter metric.Meter) (*SequenceMetrics, error) {
	var (
		m   SequenceMetrics
		err error
	)
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.items, "sequence.items", "Items yielded to consumers"},
		{&m.races, "sequence.races", "Waits for the next event, by winner"},
		{&m.timeouts, "sequence.timeouts", "Sequences failed by a deadline, by kind"},
		{&m.keepAlive, "sequence.keepalive.cycles", "Keep-alive ticks while a producer is active"},
		{&m.returns, "sequence.returns", "Sequences closed before completion"},
		{&m.limits, "sequence.limit_reached", "Sequences ended by their item limit"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc)); err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	if m.active, err = meter.Int64UpDownCounter("sequence.active",
		metric.WithDescription("Sequences currently attached to a source"),
	); err != nil {
		return nil, fmt.Errorf("creating sequence.active gauge: %w", err)
	}

	if m.lifetime, err = meter.Float64Histogram("sequence.duration",
		metric.WithDescription("Time from wrap to teardown in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating sequence.duration histogram: %w", err)
	}

	return &m, nil
}

// RecordStart marks a sequence as attached.
func (m *SequenceMetrics) RecordStart(ctx context.Context) {
	m.active.Add(ctx, 1)
}

// RecordEnd marks a sequence as torn down in the given state.
func (m *SequenceMetrics) RecordEnd(ctx context.Context, state string, lifetime time.Duration) {
	m.active.Add(ctx, -1)
	m.lifetime.Record(ctx, lifetime.Seconds(), metric.WithAttributes(attribute.String(AttrState, state)))
}

// RecordItem counts one yielded item.
func (m *SequenceMetrics) RecordItem(ctx context.Context) {
	m.items.Add(ctx, 1)
}

// RecordRace counts one finished wait.
func (m *SequenceMetrics) RecordRace(ctx context.Context, strategy, winner string) {
	m.races.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStrategy, strategy),
		attribute.String(AttrWinner, winner),
	))
	if winner == "timeout" {
		m.timeouts.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrTimeoutKind, strategy)))
	}
}

// RecordKeepAlive counts one keep-alive tick.
func (m *SequenceMetrics) RecordKeepAlive(ctx context.Context) {
	m.keepAlive.Add(ctx, 1)
}

// RecordReturn counts an early close.
func (m *SequenceMetrics) RecordReturn(ctx context.Context) {
	m.returns.Add(ctx, 1)
}

// RecordLimit counts a sequence ended by its limit.
func (m *SequenceMetrics) RecordLimit(ctx context.Context, limit int) {
	m.limits.Add(ctx, 1, metric.WithAttributes(attribute.Int("limit", limit)))
}
