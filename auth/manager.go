package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nexocrm/nexo-go/notify"
)

const (
	// RenewalHeader carries a replacement credential on any response. Its
	// presence is the only path that extends session life.
	RenewalHeader = "X-Renewed-Token"

	requestIDHeader = "X-Request-ID"

	defaultTokenTTL   = 2 * time.Hour
	invalidateTimeout = 3 * time.Second

	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

// authRoutes are exempt from the pre-flight expiry check: they must work
// with no (or a stale) credential.
var authRoutes = []string{
	"/auth/login",
	"/auth/refresh",
	"/auth/password-reset",
}

// Manager wraps every outgoing call to the backend. It guarantees each call
// carries a valid credential when one exists and that an invalid session is
// torn down exactly once.
//
// Manager implements http.RoundTripper; Do adds post-response failure
// classification on top.
type Manager struct {
	base      http.RoundTripper
	store     CredentialStore
	navigator Navigator
	presenter notify.Presenter
	logger    *slog.Logger
	baseURL   string
	ttl       time.Duration
	now       func() time.Time

	client *http.Client

	// loggingOut serializes concurrent forced logouts: two near-simultaneous
	// hard failures must produce a single teardown.
	loggingOut atomic.Bool
}

var _ http.RoundTripper = (*Manager)(nil)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithTokenTTL sets the TTL applied when a renewal is ingested.
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithPresenter sets the presenter used to surface soft permission denials.
func WithPresenter(p notify.Presenter) Option {
	return func(m *Manager) { m.presenter = p }
}

// WithBaseTransport replaces the underlying transport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(m *Manager) { m.base = rt }
}

// New creates a lifecycle Manager for the backend at baseURL.
func New(baseURL string, store CredentialStore, navigator Navigator, opts ...Option) *Manager {
	m := &Manager{
		base:      http.DefaultTransport,
		store:     store,
		navigator: navigator,
		baseURL:   strings.TrimRight(baseURL, "/"),
		ttl:       defaultTokenTTL,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	m.client = &http.Client{Transport: m}
	return m
}

// Client returns an http.Client whose requests pass through the Manager.
func (m *Manager) Client() *http.Client {
	return m.client
}

// IsExpired reports whether the stored credential is unusable: absent, or
// past its advisory expiry. A credential with no known expiry is valid —
// the server's response is the final authority.
func (m *Manager) IsExpired() bool {
	s, ok := m.store.Get()
	if !ok || s.Token == "" {
		return true
	}
	return s.Expired(m.now())
}

// RoundTrip performs the pre-flight expiry check, attaches the bearer
// credential, and ingests renewals from the response. Requests to auth
// routes pass through unchanged.
func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	if m.isAuthRoute(req.URL.Path) {
		return m.base.RoundTrip(req)
	}

	if m.IsExpired() {
		m.ForceLogout("Sesión expirada")
		return nil, ErrAuthExpired
	}

	req = req.Clone(req.Context())
	if s, ok := m.store.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := m.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	m.ingestRenewal(resp)
	return resp, nil
}

// Do issues req through the Manager and classifies authorization failures.
// A hard session failure escalates to ForceLogout and returns an error
// wrapping ErrSessionInvalid; a soft denial surfaces a toast and returns an
// error wrapping ErrPermissionDenied. The response is returned in both
// cases with its body rewound.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	class, reason := Classify(resp.StatusCode, body)
	if class == HardSessionFailure {
		m.logger.Warn("hard session failure", "status", resp.StatusCode, "reason", reason)
		m.ForceLogout(reason)
		return resp, fmt.Errorf("%s: %w", reason, ErrSessionInvalid)
	}

	m.logger.Info("permission denied", "status", resp.StatusCode, "reason", reason)
	m.toast(reason)
	return resp, fmt.Errorf("%s: %w", reason, ErrPermissionDenied)
}

// ingestRenewal stores a replacement credential carried on a response and
// recomputes the expiry as now + TTL.
func (m *Manager) ingestRenewal(resp *http.Response) {
	token := resp.Header.Get(RenewalHeader)
	if token == "" {
		return
	}
	m.store.Set(Session{Token: token, ExpiresAt: m.now().Add(m.ttl)})
	m.logger.Debug("credential renewed")
}

// ForceLogout tears the session down: best-effort remote invalidation,
// credential clear, then navigation to the login surface with reason. It is
// idempotent — a logout already in flight, or a user already at the login
// surface, makes it a no-op.
func (m *Manager) ForceLogout(reason string) {
	if !m.loggingOut.CompareAndSwap(false, true) {
		return
	}
	defer m.loggingOut.Store(false)

	if m.navigator != nil && m.navigator.AtLogin() {
		return
	}

	if s, ok := m.store.Get(); ok && s.Token != "" {
		if err := m.invalidateRemote(s.Token); err != nil {
			// Remote invalidation must never block teardown.
			m.logger.Warn("remote session invalidation failed", "error", err)
		}
	}
	m.store.Clear()

	m.logger.Info("forced logout", "reason", reason)
	if m.navigator != nil {
		m.navigator.ShowLogin(reason)
	}
}

// invalidateRemote fires the logout call with the soon-to-be-cleared
// credential. The response is ignored.
func (m *Manager) invalidateRemote(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+logoutPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.base.RoundTrip(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (m *Manager) isAuthRoute(path string) bool {
	for _, route := range authRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

func (m *Manager) toast(reason string) {
	if m.presenter == nil {
		return
	}
	if err := m.presenter.Present("Permiso denegado", reason, notify.SeverityWarning, 5*time.Second); err != nil {
		m.logger.Warn("presenting permission toast", "error", err)
	}
}

// LoginResult is the payload returned by a successful login.
type LoginResult struct {
	Token      string `json:"token"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
}

// Login authenticates against the backend and stores the issued credential.
func (m *Manager) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return LoginResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return LoginResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return LoginResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_, reason := Classify(resp.StatusCode, body)
		return LoginResult{}, fmt.Errorf("login failed (%d): %s", resp.StatusCode, reason)
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LoginResult{}, fmt.Errorf("decoding login response: %w", err)
	}
	m.store.Set(Session{Token: result.Token, ExpiresAt: m.now().Add(m.ttl)})
	return result, nil
}

// Logout voluntarily ends the session: remote invalidation plus local clear.
// Unlike ForceLogout it does not navigate.
func (m *Manager) Logout() {
	if s, ok := m.store.Get(); ok && s.Token != "" {
		if err := m.invalidateRemote(s.Token); err != nil {
			m.logger.Warn("remote session invalidation failed", "error", err)
		}
	}
	m.store.Clear()
}
