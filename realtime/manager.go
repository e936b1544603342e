package realtime

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/nexocrm/nexo-go/notify"
)

const (
	defaultAckTimeout  = 10 * time.Second
	defaultEventBuffer = 64
)

// authPayload is sent on the authenticate frame after the transport opens.
type authPayload struct {
	EmployeeID string `json:"employeeId"`
}

// Manager owns the single push-event connection. Unexpected disconnects are
// self-healing within the reconnect policy; only a manual Disconnect is
// terminal until Connect is called again.
//
// Normalized events are delivered on the Events channel. The channel is
// bounded; when the consumer falls behind, new events are dropped with a
// warning rather than blocking the read loop.
type Manager struct {
	transport  Transport
	addr       string
	policy     ReconnectPolicy
	logger     *slog.Logger
	ackTimeout time.Duration

	events chan notify.Event

	mu         sync.Mutex
	state      State
	attempt    int
	identity   string
	manual     bool
	conn       Conn
	timer      *time.Timer
	dialCancel context.CancelFunc
	gen        int // connection generation; stale goroutine callbacks are ignored
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithReconnectPolicy overrides the reconnect policy.
func WithReconnectPolicy(p ReconnectPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithAckTimeout bounds the wait for the authenticated ack.
func WithAckTimeout(d time.Duration) Option {
	return func(m *Manager) { m.ackTimeout = d }
}

// New creates a channel Manager dialing addr through transport.
func New(transport Transport, addr string, opts ...Option) *Manager {
	m := &Manager{
		transport:  transport,
		addr:       addr,
		policy:     DefaultReconnectPolicy(),
		ackTimeout: defaultAckTimeout,
		events:     make(chan notify.Event, defaultEventBuffer),
		state:      Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return m
}

// Events returns the channel of normalized notification events.
func (m *Manager) Events() <-chan notify.Event {
	return m.events
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetReconnectPolicy replaces the reconnect policy. It takes effect from
// the next failure, leaving any already-scheduled backoff timer alone.
func (m *Manager) SetReconnectPolicy(p ReconnectPolicy) {
	m.mu.Lock()
	m.policy = p
	m.mu.Unlock()
}

// Connect opens the channel for the given employee identity. Calling it
// while a connection or a scheduled reconnect is in flight cancels that
// first; the attempt counter starts over.
func (m *Manager) Connect(identity string) {
	m.mu.Lock()
	m.cancelTimerLocked()
	m.cancelDialLocked()
	m.manual = false
	m.identity = identity
	m.attempt = 0
	m.gen++
	gen := m.gen
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	ctx := m.newDialContextLocked()
	m.setStateLocked(Connecting)
	m.mu.Unlock()

	go m.dial(ctx, gen)
}

// Disconnect closes the channel and suppresses reconnection until the next
// Connect. Any pending backoff timer is cancelled.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.manual = true
	m.cancelTimerLocked()
	m.cancelDialLocked()
	m.gen++
	conn := m.conn
	m.conn = nil
	m.setStateLocked(Disconnected)
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
}

func (m *Manager) dial(ctx context.Context, gen int) {
	conn, err := m.transport.Dial(ctx, m.addr)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		if err == nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		m.mu.Unlock()
		m.logger.Warn("channel dial failed", "error", err)
		m.onFailure(gen)
		return
	}
	m.conn = conn
	m.attempt = 0 // reset on every successful transition to Connected
	identity := m.identity
	m.setStateLocked(Connected)
	m.mu.Unlock()

	data, err := sonic.Marshal(authPayload{EmployeeID: identity})
	if err == nil {
		err = conn.WriteFrame(Frame{Event: eventAuthenticate, Data: data})
	}
	if err != nil {
		m.logger.Warn("channel authenticate failed", "error", err)
		m.onFailure(gen)
		return
	}

	m.readLoop(gen, conn)
}

func (m *Manager) readLoop(gen int, conn Conn) {
	// The ack must arrive within the timeout or the connection is torn
	// down, which feeds the reconnect path through the read error.
	ackTimer := time.AfterFunc(m.ackTimeout, func() {
		m.mu.Lock()
		pending := gen == m.gen && m.state == Connected
		m.mu.Unlock()
		if pending {
			m.logger.Warn("authenticated ack timeout")
			conn.Close()
		}
	})
	defer ackTimer.Stop()

	for {
		f, err := conn.ReadFrame()
		if err != nil {
			m.logger.Warn("channel read failed", "error", err)
			m.onFailure(gen)
			return
		}

		switch f.Event {
		case eventAuthenticated:
			ackTimer.Stop()
			m.mu.Lock()
			if gen == m.gen && m.state == Connected {
				m.setStateLocked(Authenticated)
			}
			m.mu.Unlock()
		case eventNewNotification:
			ev, err := normalizeEvent(f)
			if err != nil {
				m.logger.Warn("dropping malformed notification frame", "error", err)
				continue
			}
			m.forward(ev)
		case eventDisconnect:
			// Server-initiated shutdown: close and let the failing read
			// drive the reconnect.
			conn.Close()
		}
	}
}

// onFailure handles a transport error or close for generation gen. Unless
// the disconnect was manual, a reconnect is scheduled with linear backoff
// while attempts remain.
func (m *Manager) onFailure(gen int) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.setStateLocked(Disconnected)
	m.cancelDialLocked()
	if m.manual {
		m.mu.Unlock()
		return
	}

	m.attempt++
	if m.attempt >= m.policy.MaxAttempts {
		attempts := m.attempt
		m.mu.Unlock()
		m.logger.Warn("reconnect attempts exhausted", "attempts", attempts)
		return
	}
	delay := time.Duration(m.attempt) * m.policy.BaseDelay
	attempt := m.attempt
	m.cancelTimerLocked()
	m.timer = time.AfterFunc(delay, func() { m.retry(gen) })
	m.mu.Unlock()

	m.logger.Info("scheduling reconnect", "attempt", attempt, "delay", delay)
}

// retry runs when a backoff timer fires. Only one reconnect is ever in
// flight: the timer was the single scheduled continuation for gen.
func (m *Manager) retry(gen int) {
	m.mu.Lock()
	if gen != m.gen || m.manual {
		m.mu.Unlock()
		return
	}
	m.gen++
	next := m.gen
	ctx := m.newDialContextLocked()
	m.setStateLocked(Connecting)
	m.mu.Unlock()

	go m.dial(ctx, next)
}

// forward pushes ev to the consumer without ever blocking the read loop.
func (m *Manager) forward(ev notify.Event) {
	select {
	case m.events <- ev:
	default:
		m.logger.Warn("event channel full, dropping notification", "id", ev.ID)
	}
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// newDialContextLocked creates the context for the next dial, replacing any
// previous one. Disconnect and Connect cancel it so an in-flight dial
// unblocks immediately instead of running out its transport timeout.
func (m *Manager) newDialContextLocked() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	m.dialCancel = cancel
	return ctx
}

func (m *Manager) cancelDialLocked() {
	if m.dialCancel != nil {
		m.dialCancel()
		m.dialCancel = nil
	}
}

func (m *Manager) setStateLocked(s State) {
	if m.state == s {
		return
	}
	old := m.state
	m.state = s
	m.logger.Info("channel state", "from", old.String(), "to", s.String())
}
