package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the engine does. A nil *Metrics records nothing.
type Metrics struct {
	messages   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	mentions   prometheus.Counter
	online     prometheus.Gauge
}

// NewMetrics creates the engine collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanchat",
			Name:      "messages_dispatched_total",
			Help:      "Messages persisted and fanned out, by scope.",
		}, []string{"scope"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lanchat",
			Name:      "events_rejected_total",
			Help:      "Inbound events rejected, by error code.",
		}, []string{"code"}),
		mentions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lanchat",
			Name:      "mentions_delivered_total",
			Help:      "chat:mentioned notifications handed to live connections.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanchat",
			Name:      "online_users",
			Help:      "Users with a live connection.",
		}),
	}
	reg.MustRegister(m.messages, m.rejections, m.mentions, m.online)
	return m
}

func (m *Metrics) dispatched(scope string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(scope).Inc()
}

func (m *Metrics) rejected(err error) {
	if m == nil || err == nil {
		return
	}
	m.rejections.WithLabelValues(CodeOf(err)).Inc()
}

func (m *Metrics) mentioned(n int) {
	if m == nil || n == 0 {
		return
	}
	m.mentions.Add(float64(n))
}

func (m *Metrics) setOnline(n int) {
	if m == nil {
		return
	}
	m.online.Set(float64(n))
}
