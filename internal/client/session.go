package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenFileName is the file the session token is kept in
const TokenFileName = "contact_api_token"

// TokenFileEnv overrides the token file location
const TokenFileEnv = "CONTACTCTL_TOKEN_FILE"

var (
	ErrNoSession      = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired, log in again")
)

// DefaultTokenPath returns $CONTACTCTL_TOKEN_FILE or
// <user config dir>/contactctl/contact_api_token.
func DefaultTokenPath() (string, error) {
	if p := os.Getenv(TokenFileEnv); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "contactctl", TokenFileName), nil
}

// SessionStore holds the current session token on disk. The server keeps no
// session state, so logging out is just discarding the file.
type SessionStore struct {
	path string
	now  func() time.Time
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path, now: time.Now}
}

// Path returns the token file location
func (s *SessionStore) Path() string { return s.path }

// Save replaces the stored token
func (s *SessionStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Load returns the stored token without checking it
func (s *SessionStore) Load() (string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

// Clear discards the stored token. Clearing an empty store is not an error.
func (s *SessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Current returns the stored session if it has not expired. An expired token
// is discarded.
func (s *SessionStore) Current() (*Session, error) {
	token, err := s.Load()
	if err != nil {
		return nil, err
	}
	sess, err := ParseSession(token)
	if err != nil {
		_ = s.Clear()
		return nil, err
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		_ = s.Clear()
		return nil, ErrSessionExpired
	}
	return sess, nil
}

// Session is the client view of a session token. The signature is not
// checked here; the server does that on every request.
type Session struct {
	Token     string
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// ParseSession decodes the payload of a session token
func ParseSession(token string) (*Session, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("malformed session token: %w", err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("session token has no user id: %w", err)
	}

	sess := &Session{Token: token, UserID: id}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
