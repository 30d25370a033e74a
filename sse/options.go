package sse

import (
	"encoding/json"
	"time"

	"github.com/kbukum/foremit/logger"
)

// DefaultKeepAlive is the interval between keep-alive comments. It stays below
// common proxy idle timeouts.
const DefaultKeepAlive = 30 * time.Second

// Encoder turns an item into the data of a frame.
type Encoder func(v any) ([]byte, error)

// JSONEncoder encodes items with encoding/json.
func JSONEncoder(v any) ([]byte, error) { return json.Marshal(v) }

// Option configures Serve.
type Option func(*options)

type options struct {
	encoder   Encoder
	event     string
	keepAlive time.Duration
	clientID  string
	log       *logger.Logger
}

func defaultOptions() options {
	return options{
		encoder:   JSONEncoder,
		event:     EventTypeMessage,
		keepAlive: DefaultKeepAlive,
	}
}

// WithEncoder sets the item encoder. A nil encoder keeps JSON.
func WithEncoder(enc Encoder) Option {
	return func(o *options) {
		if enc != nil {
			o.encoder = enc
		}
	}
}

// WithEvent sets the event name of item frames.
func WithEvent(name string) Option {
	return func(o *options) { o.event = name }
}

// WithKeepAlive sets the keep-alive interval. Zero or negative disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

// WithClientID sets the id reported in the connected frame. A random id is
// used otherwise.
func WithClientID(id string) Option {
	return func(o *options) { o.clientID = id }
}

// WithLogger sets the logger used for connection diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}
