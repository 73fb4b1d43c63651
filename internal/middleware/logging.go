package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if log.IsLevelEnabled(log.TraceLevel) {
				routeName := "unknown"
				if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
					routeName = route.GetName()
				}
				log.WithFields(log.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"route":  routeName,
					"ua":     r.Header.Get("User-Agent"),
				}).Trace(" ====> request")
			}
			next.ServeHTTP(w, r)
		})
	}
}
