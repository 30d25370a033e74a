package main

import (
	"fmt"

	"github.com/kbukum/foremit/config"
	"github.com/kbukum/foremit/kafka"
	"github.com/kbukum/foremit/observability"
	"github.com/kbukum/foremit/redis"
	"github.com/kbukum/foremit/sequence"
	"github.com/kbukum/foremit/server"
)

// EnvOTLPEndpoint enables trace and metric export when set.
const EnvOTLPEndpoint = "FOREMIT_OTLP_ENDPOINT"

// AppConfig is the configuration of the foremit command.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Sequence  sequence.Config      `yaml:"sequence" mapstructure:"sequence"`
	Telemetry observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
	Redis     redis.Config         `yaml:"redis" mapstructure:"redis"`
	Kafka     kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
	Server    server.Config        `yaml:"server" mapstructure:"server"`
}

// ApplyDefaults applies defaults to every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Sequence.ApplyDefaults()
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = c.Name
	}
	if c.Telemetry.Environment == "" {
		c.Telemetry.Environment = c.Environment
	}
	c.Telemetry.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Kafka.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Sequence.Validate(); err != nil {
		return fmt.Errorf("config.sequence: %w", err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("config.telemetry: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("config.kafka: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// loadConfig reads config files and environment, then applies the OTLP
// endpoint override.
func loadConfig(getenv func(string) string, opts ...config.LoaderOption) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := config.LoadConfig("foremit", cfg, opts...); err != nil {
		return nil, err
	}
	if endpoint := getenv(EnvOTLPEndpoint); endpoint != "" {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.Endpoint = endpoint
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
