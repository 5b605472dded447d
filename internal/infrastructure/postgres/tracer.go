package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Amen-Mrad/SUIVI-CAISSE-sub001/internal/infrastructure/metrics"
)

type queryStartKey struct{}

type queryStart struct {
	operation string
	begin     time.Time
}

// MetricsTracer records query counts, durations and errors per SQL verb.
type MetricsTracer struct {
	metrics *metrics.Metrics
}

// NewMetricsTracer creates a tracer backed by the given metrics.
func NewMetricsTracer(m *metrics.Metrics) *MetricsTracer {
	return &MetricsTracer{metrics: m}
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{
		operation: sqlVerb(data.SQL),
		begin:     time.Now(),
	})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}

	t.metrics.DBQueries.WithLabelValues(start.operation).Inc()
	t.metrics.DBDuration.WithLabelValues(start.operation).Observe(time.Since(start.begin).Seconds())

	if data.Err != nil {
		t.metrics.DBErrors.WithLabelValues(start.operation).Inc()
	}
}

func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}

	return strings.ToLower(fields[0])
}
