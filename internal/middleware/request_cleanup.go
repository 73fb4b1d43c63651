package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// leftovers past this are not read; the connection is closed instead of reused
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest reads what the handler left of the body so keep-alive
// connections can be reused, then closes it.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			if n, err := io.CopyN(io.Discard, r.Body, maxDrainBytes); err == nil {
				log.Debugf("request [%s %s] left more than %d unread body bytes", r.Method, r.URL.Path, n)
			}
			if err := r.Body.Close(); err != nil {
				log.Tracef("close request body [%s %s]: %s", r.Method, r.URL.Path, err)
			}
		})
	}
}
