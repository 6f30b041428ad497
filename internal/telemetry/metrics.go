package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const DefaultNamespace = "feedmart_pos"

// Metrics holds the terminal's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	CartMutations      *prometheus.CounterVec
	CheckoutsStarted   prometheus.Counter
	SalesCompleted     *prometheus.CounterVec
	SaleValue          *prometheus.HistogramVec
	CheckoutRejections *prometheus.CounterVec
	SubmissionFailures prometheus.Counter
	CheckoutsAbandoned prometheus.Counter
	UpstreamLatency    *prometheus.HistogramVec

	CatalogCacheHits   prometheus.Counter
	CatalogCacheMisses prometheus.Counter

	ClosureReports  *prometheus.CounterVec
	ClosureVariance *prometheus.GaugeVec
}

// NewMetrics registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		CartMutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cart",
				Name:      "mutations_total",
				Help:      "Cart operations applied, by operation",
			},
			[]string{"op"},
		),
		CheckoutsStarted: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "started_total",
				Help:      "Checkout attempts",
			},
		),
		SalesCompleted: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "sales_completed_total",
				Help:      "Sales confirmed by the remote API",
			},
			[]string{"payment_method"},
		),
		SaleValue: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "sale_value_ghs",
				Help:      "Total of confirmed sales in GHS",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"payment_method"},
		),
		CheckoutRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "rejections_total",
				Help:      "Checkouts refused before submission, by reason",
			},
			[]string{"reason"},
		),
		SubmissionFailures: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "submission_failures_total",
				Help:      "Sale submissions the remote API failed",
			},
		),
		CheckoutsAbandoned: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "abandoned_total",
				Help:      "Checkouts whose caller went away before the result arrived",
			},
		),
		UpstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Latency of remote API calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		CatalogCacheHits: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "cache_hits_total",
				Help:      "Product list reads served from redis",
			},
		),
		CatalogCacheMisses: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "cache_misses_total",
				Help:      "Product list reads that went to the remote API",
			},
		),

		ClosureReports: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "closure",
				Name:      "reports_total",
				Help:      "Variance reports computed, by overall status",
			},
			[]string{"status"},
		),
		ClosureVariance: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "closure",
				Name:      "variance_ghs",
				Help:      "Last computed variance per tender",
			},
			[]string{"payment_method"},
		),
	}
}

func (m *Metrics) CartOp(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) CheckoutStarted() {
	if m == nil {
		return
	}
	m.CheckoutsStarted.Inc()
}

func (m *Metrics) SaleCompleted(method string, total float64) {
	if m == nil {
		return
	}
	m.SalesCompleted.WithLabelValues(method).Inc()
	m.SaleValue.WithLabelValues(method).Observe(total)
}

func (m *Metrics) CheckoutRejected(reason string) {
	if m == nil {
		return
	}
	m.CheckoutRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) SubmissionFailed() {
	if m == nil {
		return
	}
	m.SubmissionFailures.Inc()
}

func (m *Metrics) CheckoutAbandoned() {
	if m == nil {
		return
	}
	m.CheckoutsAbandoned.Inc()
}

func (m *Metrics) ObserveUpstream(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) CatalogCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CatalogCacheHits.Inc()
		return
	}
	m.CatalogCacheMisses.Inc()
}

func (m *Metrics) ClosureComputed(status string, variances map[string]float64) {
	if m == nil {
		return
	}
	m.ClosureReports.WithLabelValues(status).Inc()
	for method, v := range variances {
		m.ClosureVariance.WithLabelValues(method).Set(v)
	}
}
