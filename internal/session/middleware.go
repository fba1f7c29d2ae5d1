package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/solaradmin/internal/logging"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	cookie CookieConfig
}

// NewManager creates a manager.
func NewManager(store Store, cookie CookieConfig) *Manager {
	if cookie.Name == "" {
		cookie.Name = "solar_admin_session"
	}
	if cookie.TTL <= 0 {
		cookie.TTL = 12 * time.Hour
	}
	return &Manager{store: store, cookie: cookie}
}

// Store returns the underlying store.
func (m *Manager) Store() Store { return m.store }

// Hydrate loads the session named by the cookie into a request Context.
// Missing, unknown and expired sessions hydrate as signed out. A store
// failure leaves the context un-hydrated so guards render their fallback
// instead of bouncing a signed-in admin to the login page.
func (m *Manager) Hydrate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := NewContext(m.store)
		ctx := r.Context()

		c, err := r.Cookie(m.cookie.Name)
		switch {
		case err != nil || c.Value == "" || !validID(c.Value):
			sc.Hydrate(nil)
		default:
			s, err := m.store.Load(ctx, c.Value)
			switch {
			case err == nil:
				sc.Hydrate(s)
				ctx = logging.ContextWithAdminID(ctx, s.User.ID)
			case errors.Is(err, ErrSessionNotFound):
				sc.Hydrate(nil)
				m.clearCookie(w)
			default:
				logging.FromContext(ctx).Warn("session hydration failed", "error", err)
			}
		}

		next.ServeHTTP(w, r.WithContext(WithContext(ctx, sc)))
	})
}

// Login starts a session for user and sets the cookie.
func (m *Manager) Login(ctx context.Context, w http.ResponseWriter, token string, user User) (*Session, error) {
	s := New(token, user, m.cookie.TTL)
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	FromContext(ctx).Hydrate(s)
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(m.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Logout ends the request's session and expires the cookie.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter) error {
	m.clearCookie(w)
	return FromContext(ctx).Clear(ctx)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
