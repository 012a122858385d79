package middleware

import (
	"net/http"
	"time"

	"github.com/vyrodovalexey/boombff/internal/observability"
)

// Metrics returns a middleware that records request counts, durations and
// in-flight requests. Requests are labeled by route id, never by raw path.
func Metrics(m *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.IncActiveRequests()
			defer m.DecActiveRequests()

			r = r.WithContext(observability.ContextWithRouteCell(r.Context()))
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			m.RecordRequest(r.Method, routeLabel(r), rw.status, time.Since(start))
		})
	}
}
