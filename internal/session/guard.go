package session

import (
	"net/http"
)

// Decision is what a guard does with a request.
type Decision int

const (
	RenderChildren Decision = iota
	RenderFallback
	Redirect
)

func (d Decision) String() string {
	switch d {
	case RenderChildren:
		return "render-children"
	case RenderFallback:
		return "render-fallback"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Policy maps the session status to a Decision. Policies are pure.
type Policy func(isAuthenticated, hasHydrated bool) Decision

// Decide is the policy for protected views. Nothing redirects before
// hydration completes.
func Decide(isAuthenticated, hasHydrated bool) Decision {
	switch {
	case !hasHydrated:
		return RenderFallback
	case isAuthenticated:
		return RenderChildren
	default:
		return Redirect
	}
}

// DecideGuest is the policy for the sign-in page: a signed-in admin is sent
// away from it.
func DecideGuest(isAuthenticated, hasHydrated bool) Decision {
	switch {
	case !hasHydrated:
		return RenderFallback
	case isAuthenticated:
		return Redirect
	default:
		return RenderChildren
	}
}

// Guard wraps a handler in policy. fallback renders while the session is
// unknown; redirectURL receives the visitor on Redirect.
func Guard(policy Policy, fallback http.Handler, redirectURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := FromContext(r.Context())
			switch policy(sc.IsAuthenticated(), sc.Hydrated()) {
			case RenderChildren:
				next.ServeHTTP(w, r)
			case RenderFallback:
				if fallback == nil {
					http.Error(w, "Session unavailable", http.StatusServiceUnavailable)
					return
				}
				fallback.ServeHTTP(w, r)
			case Redirect:
				SendRedirect(w, r, redirectURL)
			}
		})
	}
}

// RequireAdmin guards protected views.
func RequireAdmin(fallback http.Handler, loginURL string) func(http.Handler) http.Handler {
	return Guard(Decide, fallback, loginURL)
}

// GuestOnly guards the sign-in page.
func GuestOnly(fallback http.Handler, homeURL string) func(http.Handler) http.Handler {
	return Guard(DecideGuest, fallback, homeURL)
}

// SendRedirect redirects a full page load with 303 and an HTMX request with
// the HX-Redirect header, so partial swaps navigate the whole page.
func SendRedirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
