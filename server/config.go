package server

import (
	"fmt"
	"time"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// MaxBodySize caps POST bodies in bytes.
	MaxBodySize int64 `yaml:"max_body_size" mapstructure:"max_body_size"`
}

// ApplyDefaults sets defaults for zero-valued fields. There is no write
// timeout: streams are long-lived.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.MaxBodySize == 0 {
		c.MaxBodySize = 1 << 20
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.ReadHeaderTimeout < 0 {
		return fmt.Errorf("server.read_header_timeout must be non-negative (got: %s)", c.ReadHeaderTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %s)", c.IdleTimeout)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative (got: %s)", c.ShutdownTimeout)
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("server.max_body_size must be non-negative (got: %d)", c.MaxBodySize)
	}
	return nil
}
