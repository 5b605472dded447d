package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LoggingMiddleware emits one structured log line per API request.
// Ledger reads and mutations share the same shape so the access log
// can be filtered by method, path and status alone.
type LoggingMiddleware struct {
	logger zerolog.Logger
}

// NewLoggingMiddleware creates a LoggingMiddleware writing to logger.
func NewLoggingMiddleware(logger zerolog.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

// Wrap instruments next with request logging. Client errors are logged
// at warn and server errors at error so the office screens' bad input
// does not drown real failures.
func (m *LoggingMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		track := &trackingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(track, r)

		evt := m.logger.Info()
		switch {
		case track.status >= http.StatusInternalServerError:
			evt = m.logger.Error()
		case track.status >= http.StatusBadRequest:
			evt = m.logger.Warn()
		}

		evt.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", track.status).
			Int("bytes", track.written).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

// trackingWriter records the status code and body size written by the
// downstream handler.
type trackingWriter struct {
	http.ResponseWriter

	status  int
	written int
}

func (t *trackingWriter) WriteHeader(status int) {
	t.status = status
	t.ResponseWriter.WriteHeader(status)
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.ResponseWriter.Write(p)
	t.written += n
	return n, err
}
