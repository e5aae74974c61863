package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestTurnMetricsObserve(t *testing.T) {
	m := NewTurnMetrics(nil)
	m.ObserveTurn("low")
	m.ObserveAIFailure("model_unreachable")
	m.ObserveModelLatency("bedrock", 0.5)
	m.ObserveRegistryDegraded()
}

func TestTurnMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTurnMetrics(reg)
	m.ObserveTurn("critical")
}

func TestTurnMetricsNilSafe(t *testing.T) {
	var m *TurnMetrics
	m.ObserveTurn("low")
	m.ObserveAIFailure("kind")
	m.ObserveModelLatency("provider", 0.1)
	m.ObserveRegistryDegraded()
}
