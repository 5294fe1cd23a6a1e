package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	SeriesGenerated prometheus.Counter
	ViewUpdates     prometheus.Counter
	ActiveSessions  prometheus.Gauge
	SessionsExpired prometheus.Counter

	Classifications *prometheus.CounterVec // labels: tier={SAFE,CAUTION,SEVERE}

	HTTPRequests *prometheus.CounterVec   // labels: route, status
	HTTPDuration *prometheus.HistogramVec // labels: route
}

func newMetrics() *Metrics {
	return &Metrics{
		SeriesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biodash",
			Name:      "series_generated_total",
			Help:      "Total synthetic series drawn.",
		}),
		ViewUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biodash",
			Name:      "view_updates_total",
			Help:      "Total dashboard views recomputed after a control change.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biodash",
			Name:      "active_sessions",
			Help:      "Sessions currently held by the service.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biodash",
			Name:      "sessions_expired_total",
			Help:      "Sessions removed by the idle sweeper.",
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "biodash",
			Name:      "impact_classifications_total",
			Help:      "Impact classifications by severity tier.",
		}, []string{"tier"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "biodash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "biodash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SeriesGenerated,
		m.ViewUpdates,
		m.ActiveSessions,
		m.SessionsExpired,
		m.Classifications,
		m.HTTPRequests,
		m.HTTPDuration,
	}
}
