package middleware

import (
	"context"
	"crypto/subtle"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/solaradmin/internal/logging"
)

const (
	// CSRFCookie holds the token the browser must echo back.
	CSRFCookie = "solar_admin_csrf"
	// CSRFHeader is how HTMX requests echo the token.
	CSRFHeader = "X-CSRF-Token"
	// CSRFField is how plain form posts echo the token.
	CSRFField = "_csrf"
)

type csrfKey struct{}

// CSRFToken returns the token issued for the request, or "" when CSRF
// protection is disabled.
func CSRFToken(ctx context.Context) string {
	if v, ok := ctx.Value(csrfKey{}).(string); ok {
		return v
	}
	return ""
}

// CSRF is double-submit cookie protection. Every request gets a token
// (reused from the cookie when present) exposed via CSRFToken for layouts
// to embed. Unsafe methods must send the same token in the X-CSRF-Token
// header or, for urlencoded forms, the _csrf field; otherwise onFail runs, or a bare 403 is
// written when onFail is nil.
//
// When enabled is false the middleware is a no-op.
func CSRF(enabled, secure bool, onFail http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookie); err == nil && c.Value != "" {
				token = c.Value
			}

			if !safeMethod(r.Method) {
				sent := r.Header.Get(CSRFHeader)
				if sent == "" {
					sent = formToken(r)
				}
				if token == "" || !tokensEqual(sent, token) {
					logging.FromContext(r.Context()).Warn("csrf: token mismatch",
						"path", r.URL.Path,
						"method", r.Method,
						"has_cookie", token != "",
					)
					if onFail != nil {
						onFail(w, r)
						return
					}
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}

			if token == "" {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int((24 * time.Hour).Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

// formToken reads the _csrf field of a urlencoded body. Multipart bodies are
// left unread; uploads send the header.
func formToken(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/x-www-form-urlencoded" {
		return ""
	}
	return r.PostFormValue(CSRFField)
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// tokensEqual compares in constant time.
func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
