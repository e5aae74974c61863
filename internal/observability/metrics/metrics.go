package metrics

import "github.com/prometheus/client_golang/prometheus"

// TurnMetrics exposes counters/histograms for the per-turn orchestrator
// pipeline: risk distribution, failure rates, and model latency.
type TurnMetrics struct {
	turnsTotal      *prometheus.CounterVec
	aiFailureTotal  *prometheus.CounterVec
	modelLatency    *prometheus.HistogramVec
	registryDegraded prometheus.Counter
}

// NewTurnMetrics registers the orchestrator's counters against reg, or the
// default registerer if reg is nil.
func NewTurnMetrics(reg prometheus.Registerer) *TurnMetrics {
	m := &TurnMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "orchestrator",
			Name:      "turns_total",
			Help:      "Total turns processed, by resolved risk level",
		}, []string{"risk"}),
		aiFailureTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "orchestrator",
			Name:      "ai_failure_total",
			Help:      "Total turns where a model or registry failure was detected",
		}, []string{"kind"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Subsystem: "orchestrator",
			Name:      "model_latency_seconds",
			Help:      "Latency of external model invocations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		registryDegraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Subsystem: "registry",
			Name:      "degraded_lookups_total",
			Help:      "Total Lookup/EmergencyFallback resolutions that fell back to a degraded resource",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.aiFailureTotal, m.modelLatency, m.registryDegraded)
	return m
}

func (m *TurnMetrics) ObserveTurn(risk string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(risk).Inc()
}

func (m *TurnMetrics) ObserveAIFailure(kind string) {
	if m == nil {
		return
	}
	m.aiFailureTotal.WithLabelValues(kind).Inc()
}

func (m *TurnMetrics) ObserveModelLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *TurnMetrics) ObserveRegistryDegraded() {
	if m == nil {
		return
	}
	m.registryDegraded.Inc()
}
