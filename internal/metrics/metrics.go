package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for the WhatsApp conversation flow.
type BotMetrics struct {
	inboundTotal    *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	outboundTotal   *prometheus.CounterVec
	catalogTotal    *prometheus.CounterVec
	webhookLatency  *prometheus.HistogramVec
	sessionsStarted prometheus.Counter
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Subsystem: "whatsapp",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhook deliveries",
		}, []string{"kind"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Subsystem: "conversation",
			Name:      "transitions_total",
			Help:      "Conversation state transitions",
		}, []string{"from", "to"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Subsystem: "whatsapp",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"provider", "status"}),
		catalogTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Subsystem: "catalog",
			Name:      "calls_total",
			Help:      "Catalog gateway calls issued by the conversation engine",
		}, []string{"op", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agriconnect",
			Subsystem: "whatsapp",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of inbound webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agriconnect",
			Subsystem: "conversation",
			Name:      "sessions_started_total",
			Help:      "Sessions created for previously unseen senders",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.transitions, m.outboundTotal, m.catalogTotal, m.webhookLatency, m.sessionsStarted)
	return m
}

func (m *BotMetrics) ObserveInbound(kind string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *BotMetrics) ObserveOutbound(provider string, err error) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(provider, statusLabel(err)).Inc()
}

func (m *BotMetrics) ObserveCatalog(op string, err error) {
	if m == nil {
		return
	}
	m.catalogTotal.WithLabelValues(op, statusLabel(err)).Inc()
}

func (m *BotMetrics) ObserveWebhookLatency(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(kind).Observe(seconds)
}

func (m *BotMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
