// Package identity holds the authenticated session context: the bearer
// token and user identity returned by the auth endpoints, with an
// explicit load/save/clear lifecycle on a local credentials file.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the client-held identity. A nil *Session means
// unauthenticated; calls are still issued without a bearer token and are
// allowed to fail server-side.
type Session struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

// Authorization returns the value for the Authorization header, or ""
// when there is no token to send.
func (s *Session) Authorization() string {
	if s == nil || s.Token == "" {
		return ""
	}
	return "Bearer " + s.Token
}

// Expired reports whether the token carries an exp claim in the past.
// Tokens without an exp claim, and malformed tokens, are not treated as
// expired here; the server remains the authority on rejecting them.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.Token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}

// Store persists one Session on disk.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the stored session. A missing file is not an error: it
// returns (nil, nil), the unauthenticated state.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return &session, nil
}

func (st *Store) Save(session *Session) error {
	if session == nil {
		return errors.New("cannot save a nil session")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(st.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(st.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent file is a no-op.
func (st *Store) Clear() error {
	err := os.Remove(st.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}
