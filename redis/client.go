package redis

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/foremit/logger"
	"github.com/kbukum/foremit/observability"
)

// Client wraps a go-redis client with foremit logging.
type Client struct {
	rdb    *goredis.Client
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// New creates a client. It does not connect until the first command.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("redis is disabled")
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	log = log.WithComponent("redis")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	log.Info("redis client created", logger.Fields("addr", cfg.Addr, "db", cfg.DB, "channel", cfg.Channel))
	return &Client{rdb: rdb, log: log, cfg: cfg}, nil
}

// Channel returns the configured pub/sub channel.
func (c *Client) Channel() string { return c.cfg.Channel }

// Ping verifies the Redis connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Publish sends payload to channel and returns the number of receivers.
func (c *Client) Publish(ctx context.Context, channel string, payload any) (int64, error) {
	n, err := c.rdb.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish to %s: %w", channel, err)
	}
	return n, nil
}

// Subscribe subscribes to channels and waits for the server to confirm, so
// nothing published after it returns is missed. Defaults to the configured
// channel.
func (c *Client) Subscribe(ctx context.Context, channels ...string) (*goredis.PubSub, error) {
	if len(channels) == 0 {
		channels = []string{c.cfg.Channel}
	}
	ps := c.rdb.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe to %v: %w", channels, err)
	}
	c.log.Debug("subscribed", logger.Fields("channels", channels))
	return ps, nil
}

// CheckHealth implements observability.HealthChecker.
func (c *Client) CheckHealth(ctx context.Context) observability.Health {
	h := observability.Health{Name: "redis", Status: observability.HealthStatusUp}
	if err := c.Ping(ctx); err != nil {
		h.Status = observability.HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// Close closes the connection pool. Safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.log.Info("closing redis connection")
	return c.rdb.Close()
}

// Unwrap returns the underlying go-redis client.
func (c *Client) Unwrap() *goredis.Client {
	return c.rdb
}
