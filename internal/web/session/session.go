// Package session keeps the logged in administrator between requests.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/jdeb-project/jdeb/internal/db/models"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"
)

var (
	// ErrNoSession is returned when a request carries no session cookie.
	ErrNoSession = errors.New("no session cookie")

	// ErrInvalidSession is returned when the stored session holds no user.
	ErrInvalidSession = errors.New("invalid session data")
)

// Store is the global session store instance.
var Store *session.Store

// Data represents the session data structure.
type Data struct {
	User      models.User
	CreatedAt time.Time
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	// memory storage returns nil for unknown keys
	if byteData == nil {
		return ErrInvalidSession
	}

	return json.Unmarshal(byteData, s)
}

// Delete removes the session with sessionID.
func Delete(sessionID string) error {
	return Store.Storage.Delete(sessionID)
}

// Current returns the session of the request and its id.
func Current(c *fiber.Ctx) (*Data, string, error) {
	sessionID := c.Cookies(CookieName)
	if sessionID == "" {
		return nil, "", ErrNoSession
	}

	data := new(Data)
	if err := data.Read(sessionID); err != nil {
		return nil, sessionID, err
	}

	if data.User.ID == 0 {
		return nil, sessionID, ErrInvalidSession
	}

	return data, sessionID, nil
}

// Init initializes the session store. A nil storage keeps sessions in memory.
func Init(storage fiber.Storage) {
	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
