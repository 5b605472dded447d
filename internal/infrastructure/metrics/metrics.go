package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Charge metrics
	ChargesCreated prometheus.Counter

	// Posting metrics
	PostingsCreated   *prometheus.CounterVec
	DuplicatePostings prometheus.Counter

	// Cash register metrics
	CashOperations       *prometheus.CounterVec
	WithdrawalsProcessed prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries  *prometheus.CounterVec
	DBDuration *prometheus.HistogramVec
	DBErrors   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ChargesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "suivicaisse_charges_created_total",
			Help: "Total number of charges created",
		}),
		PostingsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suivicaisse_postings_created_total",
				Help: "Total number of expense postings created, by origin",
			},
			[]string{"origin"},
		),
		DuplicatePostings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "suivicaisse_duplicate_postings_total",
			Help: "Total number of duplicate posting attempts treated as already posted",
		}),
		CashOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suivicaisse_cash_operations_total",
				Help: "Total number of cash register operations, by type",
			},
			[]string{"type"},
		),
		WithdrawalsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "suivicaisse_charge_withdrawals_total",
			Help: "Total number of one-shot charge withdrawals performed",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suivicaisse_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suivicaisse_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suivicaisse_db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suivicaisse_db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suivicaisse_db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation"},
		),
	}
}
