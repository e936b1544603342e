// Package auth manages the client session credential: attaching it to
// outgoing requests, ingesting server-issued renewals, classifying
// authorization failures, and tearing invalid sessions down exactly once.
package auth

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nexocrm/nexo-go/store"
)

const (
	sessionBucket = "session"
	sessionKey    = "current"
)

// Session holds the bearer credential and its advisory expiry. A zero
// ExpiresAt means the expiry is unknown; the credential is then treated as
// valid until the server says otherwise.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the advisory expiry has passed.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// CredentialStore holds the current session. It is written only by the
// lifecycle Manager and may be read by any component.
type CredentialStore interface {
	Get() (Session, bool)
	Set(Session)
	Clear()
}

// MemoryCredentialStore keeps the session in memory. It is lost when the
// process exits.
type MemoryCredentialStore struct {
	mu      sync.RWMutex
	session Session
	present bool
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

func (s *MemoryCredentialStore) Get() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.present
}

func (s *MemoryCredentialStore) Set(session Session) {
	s.mu.Lock()
	s.session = session
	s.present = true
	s.mu.Unlock()
}

func (s *MemoryCredentialStore) Clear() {
	s.mu.Lock()
	s.session = Session{}
	s.present = false
	s.mu.Unlock()
}

// RepositoryCredentialStore persists the session in a store.Repository so a
// credential survives client restarts, the way the browser console kept it
// in local storage.
type RepositoryCredentialStore struct {
	repo store.Repository
}

var _ CredentialStore = (*RepositoryCredentialStore)(nil)

func NewRepositoryCredentialStore(repo store.Repository) *RepositoryCredentialStore {
	return &RepositoryCredentialStore{repo: repo}
}

func (s *RepositoryCredentialStore) Get() (Session, bool) {
	data, err := s.repo.Get(sessionBucket, sessionKey)
	if err != nil {
		return Session{}, false
	}
	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, false
	}
	return session, true
}

func (s *RepositoryCredentialStore) Set(session Session) {
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	_ = s.repo.Put(sessionBucket, sessionKey, data)
}

func (s *RepositoryCredentialStore) Clear() {
	_ = s.repo.Delete(sessionBucket, sessionKey)
}

// String implements fmt.Stringer without leaking the token into logs.
func (s Session) String() string {
	return fmt.Sprintf("Session{expires_at: %s}", s.ExpiresAt.Format(time.RFC3339))
}
