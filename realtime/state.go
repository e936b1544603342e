// Package realtime maintains the push-event channel to the backend: a
// connect/authenticate/reconnect state machine with bounded linear backoff,
// and normalization of inbound frames into notification events.
package realtime

import "time"

// State is the connection state of the channel manager.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Authenticated
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ReconnectPolicy bounds automatic reconnection after an unexpected
// disconnect. The delay before retry n is BaseDelay * n (linear backoff,
// n starting at 1).
type ReconnectPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultReconnectPolicy matches the console default: up to five attempts,
// one second base delay.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{MaxAttempts: 5, BaseDelay: time.Second}
}
