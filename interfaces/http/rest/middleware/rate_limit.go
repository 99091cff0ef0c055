package middleware

import (
	"net"
	"net/http"

	"blog-backend/pkg/auth"
	"blog-backend/pkg/common"
)

// RateLimit throttles requests per caller, keyed by the authenticated
// subject when present and the client IP otherwise.
func RateLimit(limiter auth.RateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := common.GetUserID(r.Context())
			if !ok {
				key = clientIP(r)
			}
			if !limiter.Allow(key) {
				common.RespondError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
