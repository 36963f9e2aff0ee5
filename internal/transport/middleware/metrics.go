package middleware

import (
	"net/http"
	"time"
)

// httpObserver records one finished request.
type httpObserver interface {
	ObserveHTTP(route, method string, status int, d time.Duration)
}

const unmatchedRoute = "unmatched"

// Metrics returns middleware that reports every request to obs, labelled
// with the ServeMux pattern that matched it. It must wrap the mux directly:
// the pattern is read from the request value the mux received.
func Metrics(obs httpObserver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.Pattern
			if route == "" {
				route = unmatchedRoute
			}
			obs.ObserveHTTP(route, r.Method, sw.status, time.Since(start))
		})
	}
}
