// Package nonce creates and verifies action scoped anti forgery tokens.
//
// A token is valid for one lifetime. The lifetime is split in two halves,
// Verify tells whether a token was created in the current or the previous half.
// Tokens are bound to an action and to the session they were rendered for.
package nonce

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"html/template"
	"io"
	"strconv"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	// Invalid is returned by Verify for tokens that do not match.
	Invalid = 0
	// Current is returned by Verify for tokens of the current half lifetime.
	Current = 1
	// Previous is returned by Verify for tokens of the previous half lifetime.
	Previous = 2

	// DefaultLifetime matches the usual one day validity.
	DefaultLifetime = 24 * time.Hour

	tokenLength = 20
	keyInfo     = "jdeb-nonce-v1"
)

var (
	// ErrEmptySecret is returned when no secret was configured.
	ErrEmptySecret = errors.New("nonce secret can not be empty")
)

// Manager creates and verifies tokens.
type Manager struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

// New returns a Manager with a key derived from secret.
func New(secret string, lifetime time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}

	return &Manager{
		key:      key,
		lifetime: lifetime,
		now:      time.Now,
	}, nil
}

// Lifetime returns how long a token stays valid.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}

func (m *Manager) tick() int64 {
	half := int64(m.lifetime / 2)
	if half <= 0 {
		half = 1
	}

	n := m.now().UnixNano()

	// ceil, like a token created at the start of a window lasts the full lifetime
	return (n + half - 1) / half
}

func (m *Manager) token(tick int64, action, sessionID string) string {
	mac := hmac.New(sha256.New, m.key)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{0})
	mac.Write([]byte(action))
	mac.Write([]byte{0})
	mac.Write([]byte(sessionID))

	return hex.EncodeToString(mac.Sum(nil))[:tokenLength]
}

// Create returns the token of action for sessionID.
func (m *Manager) Create(action, sessionID string) string {
	return m.token(m.tick(), action, sessionID)
}

// Verify checks token. It returns Current, Previous or Invalid.
func (m *Manager) Verify(token, action, sessionID string) int {
	if token == "" {
		return Invalid
	}

	tick := m.tick()

	if hmac.Equal([]byte(token), []byte(m.token(tick, action, sessionID))) {
		return Current
	}

	if hmac.Equal([]byte(token), []byte(m.token(tick-1, action, sessionID))) {
		return Previous
	}

	return Invalid
}

// Valid reports whether Verify accepts token.
func (m *Manager) Valid(token, action, sessionID string) bool {
	return m.Verify(token, action, sessionID) != Invalid
}

// Field returns a hidden input carrying the token of action.
func (m *Manager) Field(action, name, sessionID string) template.HTML {
	return template.HTML(`<input type="hidden" id="` + template.HTMLEscapeString(name) + //nolint:gosec // all parts escaped
		`" name="` + template.HTMLEscapeString(name) +
		`" value="` + m.Create(action, sessionID) + `" />`)
}
