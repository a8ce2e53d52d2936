// Package auth gates the dashboard behind a shared secret. The secret
// lives in a credential store the rest of the system never sees, and a
// successful login yields an opaque session token; the pipeline and the
// record stores know nothing about any of this.
package auth

import (
	"crypto/subtle"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBadSecret      = errors.New("secret does not match")
	ErrSessionExpired = errors.New("session expired or unknown")
)

// SecretStore supplies the shared secret. Implementations decide where it
// actually lives.
type SecretStore interface {
	Secret() (string, error)
}

// EnvSecretStore reads the secret from an environment variable.
type EnvSecretStore struct {
	Key string
}

func (s EnvSecretStore) Secret() (string, error) {
	secret := strings.TrimSpace(os.Getenv(s.Key))
	if secret == "" {
		return "", errors.New("secret not configured: " + s.Key)
	}
	return secret, nil
}

// StaticSecretStore holds the secret in memory, for configs that already
// loaded it.
type StaticSecretStore struct {
	Value string
}

func (s StaticSecretStore) Secret() (string, error) {
	if s.Value == "" {
		return "", errors.New("secret not configured")
	}
	return s.Value, nil
}

// Session is the explicit object handed to the presentation layer after a
// successful login.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues and checks sessions. Fail-closed: any doubt means no
// access.
type Manager struct {
	store SecretStore
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

func NewManager(store SecretStore, ttl time.Duration) *Manager {
	return &Manager{
		store:    store,
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Login compares the attempt against the stored secret in constant time and
// issues a session on exact match.
func (m *Manager) Login(attempt string) (Session, error) {
	secret, err := m.store.Secret()
	if err != nil {
		return Session{}, err
	}
	if subtle.ConstantTimeCompare([]byte(attempt), []byte(secret)) != 1 {
		return Session{}, ErrBadSecret
	}

	now := time.Now()
	session := Session{
		Token:     uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()
	return session, nil
}

// Check resolves a token to its live session.
func (m *Manager) Check(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrSessionExpired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return Session{}, ErrSessionExpired
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Logout forgets a session. Unknown tokens are a no-op.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
