package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{ *MemoryStore }

func (failingStore) Load(context.Context, string) (*Session, error) {
	return nil, errors.New("database unavailable")
}

func capture(got **Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = FromContext(r.Context())
	})
}

func TestHydrate(t *testing.T) {
	store := NewMemoryStore()
	live := New("tok", User{ID: "u1", Name: "Ada"}, time.Hour)
	require.NoError(t, store.Save(context.Background(), live))
	m := NewManager(store, CookieConfig{Name: "sid"})

	tests := []struct {
		name      string
		cookie    string
		wantAuth  bool
		wantClear bool
	}{
		{"no cookie", "", false, false},
		{"malformed cookie", "abc", false, false},
		{"unknown session", "7c9e6679-7425-40de-944b-e07fc1f90ae7", false, true},
		{"live session", live.ID, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sc *Context
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: "sid", Value: tt.cookie})
			}
			w := httptest.NewRecorder()

			m.Hydrate(capture(&sc)).ServeHTTP(w, r)

			require.NotNil(t, sc)
			assert.True(t, sc.Hydrated())
			assert.Equal(t, tt.wantAuth, sc.IsAuthenticated())
			if tt.wantAuth {
				assert.Equal(t, "tok", sc.GetToken())
				u, ok := sc.GetUser()
				assert.True(t, ok)
				assert.Equal(t, "Ada", u.Name)
			}
			cleared := false
			for _, c := range w.Result().Cookies() {
				if c.Name == "sid" && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.wantClear, cleared)
		})
	}
}

func TestHydrate_StoreFailureLeavesUnhydrated(t *testing.T) {
	m := NewManager(failingStore{NewMemoryStore()}, CookieConfig{Name: "sid"})

	var sc *Context
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "7c9e6679-7425-40de-944b-e07fc1f90ae7"})
	m.Hydrate(capture(&sc)).ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, sc)
	assert.False(t, sc.Hydrated())
	assert.Equal(t, RenderFallback, Decide(sc.IsAuthenticated(), sc.Hydrated()))
}

func TestLoginLogout(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, CookieConfig{Name: "sid", TTL: time.Hour, Secure: true})

	var sessionID string
	login := m.Hydrate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Login(r.Context(), w, "tok", User{ID: "u1"})
		require.NoError(t, err)
		sessionID = s.ID
		assert.True(t, FromContext(r.Context()).IsAuthenticated(), "login hydrates the current request")
	}))
	w := httptest.NewRecorder()
	login.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 1, store.Len())

	logout := m.Hydrate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, m.Logout(r.Context(), w))
		assert.False(t, FromContext(r.Context()).IsAuthenticated())
	}))
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(cookies[0])
	logout.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, 0, store.Len())
}

func TestContext_SetUser(t *testing.T) {
	store := NewMemoryStore()
	s := New("tok", User{ID: "u1", Name: "Ada"}, time.Hour)
	require.NoError(t, store.Save(context.Background(), s))

	sc := NewContext(store)
	assert.ErrorIs(t, sc.SetUser(context.Background(), User{}), ErrSessionNotFound)

	sc.Hydrate(s)
	require.NoError(t, sc.SetUser(context.Background(), User{ID: "u1", Name: "Ada Lovelace"}))
	u, _ := sc.GetUser()
	assert.Equal(t, "Ada Lovelace", u.Name)

	stored, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.User.Name)
}

func TestToken(t *testing.T) {
	assert.Equal(t, "", Token(context.Background()))

	sc := NewContext(NewMemoryStore())
	sc.Hydrate(&Session{ID: "x", Token: "tok"})
	assert.Equal(t, "tok", Token(WithContext(context.Background(), sc)))
}
