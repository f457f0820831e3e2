package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/theirongolddev/rupee/internal/model"
)

// Metrics holds the Prometheus metrics of a rupee process.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	mutations    *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	pollDuration prometheus.Histogram
	pollErrors   prometheus.Counter
	unread       prometheus.Gauge
	spent        *prometheus.GaugeVec
}

// NewMetrics registers every metric in a private registry, so repeated calls in
// tests do not collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupee_mutations_total",
				Help: "Ledger mutations by collection and operation.",
			},
			[]string{"domain", "op"},
		),
		alerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rupee_alerts_total",
				Help: "Notifications emitted by kind.",
			},
			[]string{"kind"},
		),
		pollDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rupee_poll_duration_seconds",
				Help:    "Duration of daemon evaluation polls.",
				Buckets: prometheus.DefBuckets,
			},
		),
		pollErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rupee_poll_errors_total",
				Help: "Daemon polls that failed.",
			},
		),
		unread: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "rupee_notifications_unread",
				Help: "Unread notifications at the last poll.",
			},
		),
		spent: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rupee_limit_used_ratio",
				Help: "Spent divided by limit for each active limit at the last poll.",
			},
			[]string{"limit"},
		),
	}
}

// Mutation counts one ledger mutation.
func (m *Metrics) Mutation(domain, op string) {
	m.mutations.WithLabelValues(domain, op).Inc()
}

// Alert counts one emitted notification.
func (m *Metrics) Alert(kind model.NotificationKind) {
	m.alerts.WithLabelValues(string(kind)).Inc()
}

// ObservePoll records one daemon poll.
func (m *Metrics) ObservePoll(d time.Duration, err error) {
	m.pollDuration.Observe(d.Seconds())
	if err != nil {
		m.pollErrors.Inc()
	}
}

// SetUnread records the unread notification count.
func (m *Metrics) SetUnread(n int) {
	m.unread.Set(float64(n))
}

// SetLimitUsage records spent/limit for one limit.
func (m *Metrics) SetLimitUsage(label string, ratio float64) {
	m.spent.WithLabelValues(label).Set(ratio)
}
