package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewRateLimit applies one token bucket shared by all callers. A non-positive
// rps disables limiting. Burst defaults to 1 when unset.
func NewRateLimit(rps float64, burst int) func(next http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, "Too many requests.")
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
