package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ToolMetrics exposes counters/histograms for tool invocations.
type ToolMetrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	smsOutbound *prometheus.CounterVec
}

func NewToolMetrics(reg prometheus.Registerer) *ToolMetrics {
	m := &ToolMetrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_tools",
			Name:      "invocations_total",
			Help:      "Total tool invocations by result status",
		}, []string{"tool", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic_tools",
			Name:      "invocation_seconds",
			Help:      "Latency of tool invocations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
		smsOutbound: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_tools",
			Subsystem: "sms",
			Name:      "outbound_total",
			Help:      "Outbound SMS attempts by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.invocations, m.duration, m.smsOutbound)
	return m
}

func (m *ToolMetrics) ObserveInvocation(tool, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(tool, status).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// ObserveSMS records "sent", "invalid_phone", "unconfigured" or "failed".
func (m *ToolMetrics) ObserveSMS(outcome string) {
	if m == nil {
		return
	}
	m.smsOutbound.WithLabelValues(outcome).Inc()
}
