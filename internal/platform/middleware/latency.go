package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// LatencyObserver records request durations by route pattern.
type LatencyObserver interface {
	ObserveRequest(method, route, status string, d time.Duration)
}

// Latency reports each request to obs using the matched chi route pattern, so
// ids in the path do not explode label cardinality.
func Latency(obs LatencyObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			obs.ObserveRequest(r.Method, route, strconv.Itoa(rec.code()), time.Since(start))
		})
	}
}
