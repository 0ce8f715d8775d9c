package store

// Frame is the websocket message exchanged with a notes hub. Clients send
// frames with Op set; the hub answers with Type set.
type Frame struct {
	Op    string `json:"op,omitempty"`
	Type  string `json:"type,omitempty"`
	Path  string `json:"path"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Client operations.
const (
	OpSubscribe   = "subscribe"
	OpUnsubscribe = "unsubscribe"
	OpWrite       = "write"
	OpRemove      = "remove"
)

// Hub replies.
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
)
