package conversation

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for the dialogue flow. A nil *Metrics
// is safe to observe on.
type Metrics struct {
	messagesTotal  *prometheus.CounterVec
	gatewayTotal   *prometheus.CounterVec
	gatewayLatency prometheus.Histogram
	reservations   *prometheus.CounterVec
}

// NewMetrics registers the conversation metrics on reg (or the default
// registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tablebot",
			Subsystem: "conversation",
			Name:      "messages_total",
			Help:      "Inbound messages by terminal outcome",
		}, []string{"outcome"}),
		gatewayTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tablebot",
			Subsystem: "conversation",
			Name:      "gateway_requests_total",
			Help:      "Generation gateway calls by status",
		}, []string{"status"}),
		gatewayLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tablebot",
			Subsystem: "conversation",
			Name:      "gateway_latency_seconds",
			Help:      "Latency of generation gateway calls",
			Buckets:   prometheus.DefBuckets,
		}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tablebot",
			Subsystem: "reservation",
			Name:      "dispatch_total",
			Help:      "Reservation dispatches by intent and result",
		}, []string{"intent", "result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.gatewayTotal, m.gatewayLatency, m.reservations)
	return m
}

func (m *Metrics) ObserveMessage(outcome string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveGateway(status string, seconds float64) {
	if m == nil {
		return
	}
	m.gatewayTotal.WithLabelValues(status).Inc()
	m.gatewayLatency.Observe(seconds)
}

func (m *Metrics) ObserveDispatch(intent, result string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(intent, result).Inc()
}
