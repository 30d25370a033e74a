package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/spf13/pflag"

	"github.com/kbukum/foremit/emitter"
	"github.com/kbukum/foremit/errors"
	"github.com/kbukum/foremit/kafka"
	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/redis"
	"github.com/kbukum/foremit/sequence"
	"github.com/kbukum/foremit/source"
)

func (c *cli) tailCommand(fs *pflag.FlagSet) command {
	useRedis := fs.Bool("redis", false, "read from the configured redis channel instead of stdin")
	channel := fs.String("channel", "", "redis channel (overrides config)")
	useKafka := fs.Bool("kafka", false, "read from the configured kafka topic instead of stdin")
	topic := fs.String("topic", "", "kafka topic (overrides config)")

	return func(ctx context.Context, cfg *AppConfig, log *logger.Logger) error {
		opts := []sequence.Option{sequence.WithConfig(cfg.Sequence), sequence.WithLogger(log)}
		opts = append(opts, telemetryOptions(cfg)...)

		var src emitter.Source
		switch {
		case *useRedis && *useKafka:
			return errors.InvalidOption("kafka", "--redis and --kafka are mutually exclusive")
		case *useKafka:
			cfg.Kafka.Enabled = true
			if *topic != "" {
				cfg.Kafka.Topic = *topic
			}
			r, err := kafka.NewReader(cfg.Kafka, log)
			if err != nil {
				return err
			}
			ks := source.Kafka(ctx, r)
			defer ks.Close()

			src = ks
			opts = append(opts, sequence.WithTransform(messageValue))
			if cfg.Sequence.Event == sequence.DefaultEvent {
				opts = append(opts, sequence.WithEvent(source.EventMessage))
			}
		case *useRedis:
			cfg.Redis.Enabled = true
			if *channel != "" {
				cfg.Redis.Channel = *channel
			}
			client, err := redis.New(cfg.Redis, log)
			if err != nil {
				return err
			}
			defer client.Close()

			ps, err := client.Subscribe(ctx)
			if err != nil {
				return err
			}
			rs := source.Redis(ctx, ps)
			defer rs.Close()

			src = rs
			opts = append(opts, sequence.WithTransform(messagePayload))
			if cfg.Sequence.Event == sequence.DefaultEvent {
				opts = append(opts, sequence.WithEvent(source.EventMessage))
			}
		default:
			ls := source.Lines(c.stdin)
			defer ls.Close()

			src = ls
			if cfg.Sequence.Event == sequence.DefaultEvent {
				opts = append(opts, sequence.WithEvent(source.EventLine))
			}
		}

		seq, err := sequence.Wrap[string](src, opts...)
		if err != nil {
			return err
		}
		return sequence.ForEach[string](ctx, seq, func(_ context.Context, item string) error {
			_, err := fmt.Fprintln(c.stdout, item)
			return err
		})
	}
}

func messageValue(raw any) (string, error) {
	msg, ok := raw.(kafkago.Message)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", raw)
	}
	return string(msg.Value), nil
}

func messagePayload(raw any) (string, error) {
	msg, ok := raw.(*goredis.Message)
	if !ok {
		return "", fmt.Errorf("unexpected payload %T", raw)
	}
	return msg.Payload, nil
}

// telemetryOptions wires the global tracer and meter into sequences when
// export is enabled.
func telemetryOptions(cfg *AppConfig) []sequence.Option {
	if !cfg.Telemetry.Enabled {
		return nil
	}
	return []sequence.Option{
		sequence.WithTracer(observability.Tracer(observability.InstrumentationName)),
		sequence.WithMeter(observability.Meter(observability.InstrumentationName)),
	}
}
