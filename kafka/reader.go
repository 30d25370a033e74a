package kafka

import (
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/foremit/logger"
)

// NewReader creates a reader for cfg.Topic. It does not connect until the
// first read.
func NewReader(cfg Config, log *logger.Logger) (*kafkago.Reader, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("kafka is disabled")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	klog := log.WithComponent("kafka")

	dialer, err := NewDialer(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka dialer: %w", err)
	}

	rc := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		Dialer:      dialer,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...any) {
			klog.Error("reader: "+fmt.Sprintf(msg, args...), logger.Fields("topic", cfg.Topic, "group_id", cfg.GroupID))
		}),
	}
	if cfg.GroupID != "" {
		rc.SessionTimeout = cfg.SessionTimeout
		rc.HeartbeatInterval = cfg.HeartbeatInterval
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("kafka reader config: %w", err)
	}

	klog.Info("kafka reader created", logger.Fields("topic", cfg.Topic, "group_id", cfg.GroupID, "brokers", cfg.Brokers))
	return kafkago.NewReader(rc), nil
}
