package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var defaultAllowedOrigins = []string{
	"http://localhost:8081",
	"http://localhost:19006",
	"test",
}

// Cors sets the CORS headers for browser clients. Requests without an Origin
// (the mobile app, curl) pass through untouched.
func Cors(extraOrigins ...string) func(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(defaultAllowedOrigins)+len(extraOrigins))
	for _, o := range append(defaultAllowedOrigins, extraOrigins...) {
		allowedOrigins[strings.TrimSpace(o)] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !allowedOrigins[origin] {
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers",
				"Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization",
			)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			next.ServeHTTP(w, r)
		})
	}
}
