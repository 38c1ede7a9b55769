package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

const maxBodyBytes = 10 << 20 // 10MB, matching the JSON body parser cap

// RateLimit limits each caller IP to 100 requests per 15-minute window
// across the API surface.
func RateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(
		100,
		15*time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests from this IP, please try again later."}`))
		}),
	)
}

// BodyLimit caps request body size before handlers decode it.
func BodyLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		next.ServeHTTP(w, r)
	})
}
