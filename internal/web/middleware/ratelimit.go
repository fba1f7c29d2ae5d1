package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/JonMunkholm/solaradmin/internal/logging"
)

// PerMinute builds a limiter rate of n requests per minute.
func PerMinute(n int) limiter.Rate {
	return limiter.Rate{Period: time.Minute, Limit: int64(n)}
}

// RateLimit limits requests per client address using an in-memory store.
// Requests over the limit get X-RateLimit-* and Retry-After headers and are
// handed to onLimit, or answered with a bare 429 when onLimit is nil.
// A store failure lets the request through.
func RateLimit(rate limiter.Rate, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	lim := limiter.New(memory.NewStore(), rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			lctx, err := lim.Get(r.Context(), key)
			if err != nil {
				logging.FromContext(r.Context()).Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				retry := time.Until(time.Unix(lctx.Reset, 0))
				h.Set("Retry-After", strconv.Itoa(max(int(retry.Round(time.Second).Seconds()), 1)))
				logging.FromContext(r.Context()).Warn("rate limit exceeded",
					"key", key,
					"path", r.URL.Path,
					"limit", lctx.Limit,
				)
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey is the canonical client address; TrustedRealIP has already
// resolved proxies into RemoteAddr.
func clientKey(r *http.Request) string {
	if addr, ok := extractAddr(r.RemoteAddr); ok {
		return addr.String()
	}
	return r.RemoteAddr
}
