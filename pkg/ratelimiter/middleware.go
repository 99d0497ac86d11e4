package ratelimiter

import (
	"net"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc derives the bucket key for a request.
type KeyFunc func(r *http.Request) string

// KeyByIP buckets requests by client IP, honoring X-Forwarded-For from the
// load balancer.
func KeyByIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces the limiter per request key, emitting the standard
// X-RateLimit-* headers and 429 with Retry-After when the bucket is empty.
// Store failures fail open: an unreachable Redis must not take down sign-in.
func Middleware(limiter *Limiter, keyFn KeyFunc) func(next http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = KeyByIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), keyFn(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
