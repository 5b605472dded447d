package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/usecase"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key for replayable
	// mutations.
	IdempotencyKeyHeader = "Idempotency-Key"

	// ReplayHeader marks responses served from the idempotency cache.
	ReplayHeader = "X-Idempotency-Replay"

	idempotencyTTL = 24 * time.Hour
)

// IdempotencyMiddleware replays the stored response for a repeated
// mutation instead of executing it twice. The office screens retry
// POSTs on flaky connections; without this a retried charge or cash
// operation would be booked twice.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
}

// NewIdempotencyMiddleware creates an IdempotencyMiddleware backed by store.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{store: store}
}

// Wrap applies idempotency handling to next. Requests without a key,
// and non-mutating methods, pass through untouched.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		seen, cached, err := m.store.CheckAndSet(r.Context(), key, nil, idempotencyTTL)
		if err != nil {
			http.Error(w, "idempotency check failed", http.StatusInternalServerError)
			return
		}

		if seen && len(cached) > 0 && !bytes.Equal(cached, []byte("processing")) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(ReplayHeader, "true")
			w.Write(cached)
			return
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(capture, r)

		// Only successful outcomes are worth replaying; a failed
		// mutation should run again on retry.
		if capture.status >= 200 && capture.status < 300 {
			m.store.Update(r.Context(), key, capture.body.Bytes(), idempotencyTTL)
		}
	})
}

// captureWriter buffers the response body so it can be stored for
// later replays while still streaming it to the client.
type captureWriter struct {
	http.ResponseWriter

	status int
	body   bytes.Buffer
}

func (c *captureWriter) Write(p []byte) (int, error) {
	c.body.Write(p)
	return c.ResponseWriter.Write(p)
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}
