package session

import (
	"context"
	"fmt"
	"sync"
)

// Context is the per-request view of the admin session. Reads are cheap and
// never touch the store; writes go through to it.
type Context struct {
	store Store

	mu       sync.RWMutex
	session  *Session
	hydrated bool
}

// NewContext returns an un-hydrated context over store.
func NewContext(store Store) *Context {
	return &Context{store: store}
}

// Hydrate marks the context loaded with s, which may be nil for a visitor
// without a session.
func (c *Context) Hydrate(s *Session) {
	c.mu.Lock()
	c.session = s
	c.hydrated = true
	c.mu.Unlock()
}

// Hydrated reports whether the session lookup for this request completed.
// Until it has, the absence of a user means "unknown", not "signed out".
func (c *Context) Hydrated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hydrated
}

// IsAuthenticated reports whether a signed-in admin is present.
func (c *Context) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session != nil && c.session.Token != ""
}

// GetToken returns the bearer token for outgoing API calls, or "".
func (c *Context) GetToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// GetUser returns the signed-in admin.
func (c *Context) GetUser() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return User{}, false
	}
	return c.session.User, true
}

// SessionID returns the id of the loaded session, or "".
func (c *Context) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return ""
	}
	return c.session.ID
}

// SetUser replaces the admin of the current session and persists it.
func (c *Context) SetUser(ctx context.Context, u User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrSessionNotFound
	}
	next := *c.session
	next.User = u
	if err := c.store.Save(ctx, &next); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	c.session = &next
	return nil
}

// Clear removes the session from the store and from this request.
func (c *Context) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	if err := c.store.Delete(ctx, c.session.ID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.session = nil
	return nil
}

type contextKey struct{}

// WithContext attaches sc to ctx.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, sc)
}

// FromContext returns the session context of the request. Outside the
// Hydrate middleware it returns an un-hydrated, empty context.
func FromContext(ctx context.Context) *Context {
	if sc, ok := ctx.Value(contextKey{}).(*Context); ok && sc != nil {
		return sc
	}
	return &Context{}
}

// Token returns the bearer token carried by ctx, for use as an api.TokenFunc.
func Token(ctx context.Context) string {
	return FromContext(ctx).GetToken()
}
