package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GateMetrics records access-gate decisions and rate limiter verdicts.
type GateMetrics struct {
	decisions *prometheus.CounterVec
	verdicts  *prometheus.CounterVec
}

// NewGateMetrics registers the gate metrics on the provided registerer.
func NewGateMetrics(reg prometheus.Registerer) *GateMetrics {
	if reg == nil {
		return &GateMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Access gate decisions by action.",
	}, []string{"action"})
	verdicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rate_limit_verdicts_total",
		Help: "Rate limiter verdicts by scope and outcome.",
	}, []string{"scope", "outcome"})
	reg.MustRegister(decisions, verdicts)
	return &GateMetrics{
		decisions: decisions,
		verdicts:  verdicts,
	}
}

// IncDecision increments the counter for a gate action (allow, redirect, terminal).
func (g *GateMetrics) IncDecision(action string) {
	if g == nil || g.decisions == nil {
		return
	}
	g.decisions.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncVerdict increments the counter for a rate limiter outcome (allowed, limited, failopen).
func (g *GateMetrics) IncVerdict(scope, outcome string) {
	if g == nil || g.verdicts == nil {
		return
	}
	g.verdicts.WithLabelValues(normalizeLabel(scope), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
