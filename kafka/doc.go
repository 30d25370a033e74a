// Package kafka builds kafka-go readers for foremit's Kafka source.
//
// NewReader applies the configured dialer (TLS and SASL when enabled) and
// routes reader errors to the foremit logger. The reader is usually handed
// straight to source.Kafka:
//
//	r, err := kafka.NewReader(cfg, log)
//	seq, err := sequence.Wrap[kafkago.Message](source.Kafka(ctx, r),
//	    sequence.WithEvent(source.EventMessage))
package kafka
