package kafka

import (
	"fmt"
	"slices"
	"time"
)

// SASL mechanisms accepted in Config.SASLMechanism.
var saslMechanisms = []string{"PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512"}

// Config holds Kafka consumer configuration.
type Config struct {
	// Enabled controls whether commands may read from Kafka.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
	// GroupID enables consumer-group offsets. Without it the reader starts at
	// the first offset of partition 0.
	GroupID string `yaml:"group_id" mapstructure:"group_id"`

	// TLS
	EnableTLS     bool   `yaml:"enable_tls" mapstructure:"enable_tls"`
	TLSSkipVerify bool   `yaml:"tls_skip_verify" mapstructure:"tls_skip_verify"`
	TLSCAFile     string `yaml:"tls_ca_file" mapstructure:"tls_ca_file"`
	TLSCertFile   string `yaml:"tls_cert_file" mapstructure:"tls_cert_file"`
	TLSKeyFile    string `yaml:"tls_key_file" mapstructure:"tls_key_file"`

	// SASL
	EnableSASL    bool   `yaml:"enable_sasl" mapstructure:"enable_sasl"`
	SASLMechanism string `yaml:"sasl_mechanism" mapstructure:"sasl_mechanism"`
	Username      string `yaml:"username" mapstructure:"username"`
	Password      string `yaml:"password" mapstructure:"password"`

	MinBytes          int           `yaml:"min_bytes" mapstructure:"min_bytes"`
	MaxBytes          int           `yaml:"max_bytes" mapstructure:"max_bytes"`
	MaxWait           time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	DialTimeout       time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	SessionTimeout    time.Duration `yaml:"session_timeout" mapstructure:"session_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.Topic == "" {
		c.Topic = "foremit"
	}
	if c.MinBytes <= 0 {
		c.MinBytes = 1
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10e6
	}
	if c.MaxWait <= 0 {
		c.MaxWait = 500 * time.Millisecond
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 10 * time.Second
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = 30 * time.Second
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 3 * time.Second
	}
	if c.SASLMechanism == "" && c.EnableSASL {
		c.SASLMechanism = "PLAIN"
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required")
	}
	if c.Topic == "" {
		return fmt.Errorf("kafka.topic is required")
	}
	if c.MinBytes > c.MaxBytes {
		return fmt.Errorf("kafka.min_bytes must not exceed kafka.max_bytes")
	}
	if c.EnableSASL {
		if !slices.Contains(saslMechanisms, c.SASLMechanism) {
			return fmt.Errorf("unsupported SASL mechanism: %s", c.SASLMechanism)
		}
		if c.Username == "" {
			return fmt.Errorf("SASL username is required")
		}
	}
	return nil
}
