// Package session manages the authenticated session created at
// registration: the backend-issued access token, where it is persisted,
// and the cookie that references it.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a session id has no stored session.
var ErrNotFound = errors.New("session not found")

// Session is the explicit session object handed to every component that
// needs the access token. It is created on registration (or login) and
// torn down on logout; nothing reads the token from global state.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	Subject     string    `json:"subject,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a session around a backend-issued access token. The token is
// decoded without signature verification; the backend is the verifier and
// the dashboard only reads the registered claims for display and expiry.
func New(accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, errors.New("empty access token")
	}

	s := &Session{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		CreatedAt:   time.Now(),
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		// Opaque tokens are allowed; expiry is then governed by the
		// store TTL alone.
		return s, nil
	}

	s.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Expired reports whether the token carries an expiry that has passed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Path   string
	TTL    time.Duration
	Secure bool
}

// Cookie builds the same-site cookie that mirrors the session id, scoped
// to the application path.
func Cookie(cfg CookieConfig, sessionID string) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    sessionID,
		Path:     cfg.Path,
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpireCookie builds the cookie that clears the session on logout.
func ExpireCookie(cfg CookieConfig) *http.Cookie {
	c := Cookie(cfg, "")
	c.MaxAge = -1
	return c
}

// FromRequest extracts the session id from the request cookie.
func FromRequest(r *http.Request, cookieName string) (string, error) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", fmt.Errorf("read session cookie: %w", err)
	}
	return c.Value, nil
}
