package sequence

import (
	"slices"
	"time"

	"github.com/kbukum/foremit/validation"
)

// Default event names.
const (
	DefaultEvent      = "data"
	DefaultErrorEvent = "error"
)

// DefaultEndEvents returns the terminal events used when none are configured.
func DefaultEndEvents() []string { return []string{"close", "end"} }

// Config holds the options a sequence is built from. Zero durations and a
// zero Limit mean "disabled".
type Config struct {
	// Event is the name of the item event.
	Event string `yaml:"event" mapstructure:"event" validate:"required"`
	// Error is the name of the event carrying producer failures.
	Error string `yaml:"error" mapstructure:"error" validate:"required"`
	// End lists the events meaning "no more items".
	End []string `yaml:"end" mapstructure:"end" validate:"required,min=1,dive,required"`

	FirstEventTimeout time.Duration `yaml:"first_event_timeout" mapstructure:"first_event_timeout" validate:"gte=0"`
	InBetweenTimeout  time.Duration `yaml:"in_between_timeout" mapstructure:"in_between_timeout" validate:"gte=0"`

	// Limit ends the sequence after that many items.
	Limit int `yaml:"limit" mapstructure:"limit" validate:"gte=0"`
	// KeepAlive is the tick interval of the keep-alive loop. It only runs
	// when InBetweenTimeout is unset.
	KeepAlive time.Duration `yaml:"keep_alive" mapstructure:"keep_alive" validate:"gte=0"`

	// Debug installs diagnostic hooks.
	Debug bool `yaml:"debug" mapstructure:"debug"`
	// NoSleep skips the scheduler yield before each buffered item.
	NoSleep bool `yaml:"no_sleep" mapstructure:"no_sleep"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset event names. An End that was set to an empty
// list stays empty and fails validation.
func (c *Config) ApplyDefaults() {
	if c.Event == "" {
		c.Event = DefaultEvent
	}
	if c.Error == "" {
		c.Error = DefaultErrorEvent
	}
	if c.End == nil {
		c.End = DefaultEndEvents()
	}
}

// Validate reports every invalid field in one INVALID_OPTION error.
func (c *Config) Validate() error {
	v := validation.New()
	v.Merge("config", validation.Validate(c))
	v.Check(c.Event == "" || c.Event != c.Error, "error", "must differ from event")
	v.Check(!slices.Contains(c.End, c.Event), "end", "must not contain the item event")
	return v.Error()
}

// keepAliveEnabled reports whether the keep-alive loop should run.
func (c *Config) keepAliveEnabled() bool {
	return c.KeepAlive > 0 && c.InBetweenTimeout <= 0
}
