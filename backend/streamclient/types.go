package streamclient

import "encoding/json"

// Logger is the minimal logging interface the transport depends on.
type Logger interface {
	Debug(message string, source ...string)
	Info(message string, source ...string)
	Warn(message string, source ...string)
	Error(message string, source ...string)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...string) {}
func (noopLogger) Info(string, ...string)  {}
func (noopLogger) Warn(string, ...string)  {}
func (noopLogger) Error(string, ...string) {}

// Frame is one parsed wire message. Type discriminates handling; Raw retains
// the full document so listeners can decode their own shape.
type Frame struct {
	Type string          `json:"type"`
	Room string          `json:"room,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

// Listener receives parsed frames from the transport.
type Listener interface {
	HandleFrame(Frame)
}

// State is the externally observable connection state.
type State struct {
	Connected bool
	LastError error
}

// StateListener is notified whenever the connection state changes.
type StateListener interface {
	HandleState(State)
}

type phase int

const (
	phaseDisconnected phase = iota
	phaseConnecting
	phaseConnected
)
