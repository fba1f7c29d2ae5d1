package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		authenticated bool
		hydrated      bool
		want          Decision
		wantGuest     Decision
	}{
		{false, false, RenderFallback, RenderFallback},
		{true, false, RenderFallback, RenderFallback},
		{false, true, Redirect, RenderChildren},
		{true, true, RenderChildren, Redirect},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Decide(tt.authenticated, tt.hydrated),
			"Decide(auth=%v, hydrated=%v)", tt.authenticated, tt.hydrated)
		assert.Equal(t, tt.wantGuest, DecideGuest(tt.authenticated, tt.hydrated),
			"DecideGuest(auth=%v, hydrated=%v)", tt.authenticated, tt.hydrated)
	}
}

func TestDecide_NeverRedirectsBeforeHydration(t *testing.T) {
	for _, policy := range []Policy{Decide, DecideGuest} {
		for _, auth := range []bool{false, true} {
			assert.NotEqual(t, Redirect, policy(auth, false))
		}
	}
}

func TestGuard(t *testing.T) {
	children := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("children"))
	})
	fallback := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("fallback"))
	})
	store := NewMemoryStore()

	tests := []struct {
		name       string
		sc         *Context
		htmx       bool
		wantStatus int
		wantBody   string
		wantHeader string
	}{
		{
			name:       "signed in",
			sc:         hydrated(store, &Session{ID: "x", Token: "tok"}),
			wantStatus: http.StatusOK,
			wantBody:   "children",
		},
		{
			name:       "signed out",
			sc:         hydrated(store, nil),
			wantStatus: http.StatusSeeOther,
		},
		{
			name:       "signed out htmx",
			sc:         hydrated(store, nil),
			htmx:       true,
			wantStatus: http.StatusOK,
			wantHeader: "/login",
		},
		{
			name:       "not hydrated",
			sc:         NewContext(store),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireAdmin(fallback, "/login")(children)
			r := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.htmx {
				r.Header.Set("HX-Request", "true")
			}
			r = r.WithContext(WithContext(r.Context(), tt.sc))
			w := httptest.NewRecorder()

			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			if tt.wantHeader != "" {
				assert.Equal(t, tt.wantHeader, w.Header().Get("HX-Redirect"))
			}
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, "/login", w.Header().Get("Location"))
			}
		})
	}
}

func TestGuestOnly(t *testing.T) {
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("login form"))
	})
	h := GuestOnly(nil, "/")(login)

	r := httptest.NewRequest(http.MethodGet, "/login", nil)
	r = r.WithContext(WithContext(r.Context(), hydrated(NewMemoryStore(), &Session{ID: "x", Token: "tok"})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	r = httptest.NewRequest(http.MethodGet, "/login", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no middleware means not hydrated")
}

func hydrated(store Store, s *Session) *Context {
	sc := NewContext(store)
	sc.Hydrate(s)
	return sc
}
