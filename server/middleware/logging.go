package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/subtitler/logger"
)

// quietPaths are polled by probes and never logged or counted.
var quietPaths = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/info":   true,
}

// RequestLogger writes one line per request. The level follows the status
// class: error for 5xx, warn for 4xx, debug otherwise.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			began := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)

			fields := logger.DurationFields(r.Method+" "+r.URL.Path, time.Since(began))
			fields["method"] = r.Method
			fields["path"] = r.URL.Path
			fields["status"] = rec.Status()
			fields["bytes"] = rec.written
			if ua := r.UserAgent(); ua != "" && !strings.HasPrefix(ua, "kube-probe") {
				fields["user_agent"] = ua
			}

			l := log.WithContext(r.Context())
			switch status := rec.Status(); {
			case status >= http.StatusInternalServerError:
				l.Error("request failed", fields)
			case status >= http.StatusBadRequest:
				l.Warn("request rejected", fields)
			default:
				l.Debug("request served", fields)
			}
		})
	}
}
