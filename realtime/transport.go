package realtime

import (
	"context"
	"encoding/json"
)

// Frame is one push-channel message. The wire format behind it is an
// external contract; the manager only cares about the event name and its
// JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Well-known frame events.
const (
	eventAuthenticate    = "authenticate"
	eventAuthenticated   = "authenticated"
	eventDisconnect      = "disconnect"
	eventNewNotification = "new_notification"
)

// Transport opens push-channel connections.
type Transport interface {
	Dial(ctx context.Context, addr string) (Conn, error)
}

// Conn is a single push-channel connection. ReadFrame blocks until a frame
// arrives or the connection fails; Close unblocks any pending read.
type Conn interface {
	ReadFrame() (Frame, error)
	WriteFrame(Frame) error
	Close() error
}
