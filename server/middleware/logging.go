package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/consul-service/logger"
)

// quietPaths are probe and scrape endpoints that would flood the log.
var quietPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration. Probe paths are silently skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				"status":             sw.status,
				logger.FieldDuration: duration.Milliseconds(),
			}
			if id := requestID(r); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > 500*time.Millisecond {
				fields["slow"] = true
			}

			logByStatus(log, fields, sw.status)
		})
	}
}

func requestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(HeaderRequestID)
}

// logByStatus logs request fields at the appropriate level based on HTTP status code.
// If log is nil, the global logger is used.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
