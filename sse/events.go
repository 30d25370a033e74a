package sse

// Event names written by Serve.
const (
	// EventTypeConnected is sent once when the stream opens.
	EventTypeConnected = "connected"

	// EventTypeKeepAlive is the text of keep-alive comments.
	EventTypeKeepAlive = "keepalive"

	// EventTypeMessage is the default event for sequence items.
	EventTypeMessage = "message"

	// EventTypeError is sent when the sequence fails.
	EventTypeError = "error"

	// EventTypeEnd is sent when the sequence completes.
	EventTypeEnd = "end"
)

// ConnectedEvent is the payload of the connected frame.
type ConnectedEvent struct {
	ClientID string `json:"client_id"`
}

// EndEvent is the payload of the end frame.
type EndEvent struct {
	Yielded int64 `json:"yielded"`
}
