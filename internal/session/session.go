// Package session keeps admin sessions server-side and decides, per request,
// whether a view may render.
//
// The request-scoped Context is the only way handlers read or change the
// signed-in admin. It is created by the Hydrate middleware and reports
// Hydrated() once the store lookup has completed; guards never redirect
// before that.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned by a Store when no live session has the id.
var ErrSessionNotFound = errors.New("session not found")

// User is the admin a session belongs to.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// Session is a signed-in admin together with the bearer token issued by the
// remote API.
type Session struct {
	ID        string
	Token     string
	User      User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// New creates a session valid for ttl from now.
func New(token string, user User, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Store persists sessions.
type Store interface {
	// Load returns ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes sessions that expired before now and returns how many.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// validID filters cookie values that cannot be session ids before they
// reach the store.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
