package middleware

import (
	"net/http"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/rufit/rufitserver/internal/telemetry/metrics"
	"github.com/rufit/rufitserver/pkg"
)

// PanicRecovery turns a handler panic into a JSON 500.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.WithField("path", r.URL.Path).Errorf("http: panic serving %s: %v\n%s", r.Method, rec, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteMessage(w, http.StatusInternalServerError, "Internal Server Error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
