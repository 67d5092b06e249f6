package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/subtitler/observability"
)

// Metrics feeds the in-flight gauge and the per-request counters. Probe
// paths are not counted.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			began := time.Now()
			m.RecordRequestStart(r.Context())
			rec := record(w)
			defer func() {
				m.RecordRequestEnd(r.Context(), "http", r.Method, strconv.Itoa(rec.Status()), time.Since(began))
			}()
			next.ServeHTTP(rec, r)
		})
	}
}
