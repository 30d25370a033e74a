// Package source adapts common Go producers into emitter sources that a
// sequence can wrap: channels, line readers, Redis subscriptions and Kafka
// readers.
//
// Every adapter is built on emitter.Flowing: its pump starts once a listener
// attaches to the item event, so a sequence registers its error and end
// listeners before anything is emitted. Each adapter has a Close method that
// stops its pump and emits its terminal event.
//
//	src := source.Lines(os.Stdin)
//	seq, err := sequence.Wrap[string](src, sequence.WithEvent(source.EventLine))
package source

// Event names emitted by the adapters.
const (
	EventData    = "data"
	EventLine    = "line"
	EventMessage = "message"
	EventError   = "error"
	EventEnd     = "end"
	EventClose   = "close"
)
