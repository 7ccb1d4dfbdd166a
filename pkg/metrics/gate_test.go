package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestGateMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewGateMetrics(reg)
	metrics.IncDecision("redirect")
	metrics.IncDecision("redirect")
	metrics.IncVerdict("resend_ip", "limited")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "gate_decisions_total", "action", "redirect"); err != nil {
		t.Fatalf("fetch decisions: %v", err)
	} else if got != 2 {
		t.Fatalf("expected decisions=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "rate_limit_verdicts_total", "scope", "resend_ip"); err != nil {
		t.Fatalf("fetch verdicts: %v", err)
	} else if got != 1 {
		t.Fatalf("expected verdicts=1, got %f", got)
	}
}

func TestGateMetricsNilSafe(t *testing.T) {
	var metrics *GateMetrics
	metrics.IncDecision("allow")
	metrics.IncVerdict("resend_email", "allowed")

	empty := NewGateMetrics(nil)
	empty.IncDecision("allow")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
