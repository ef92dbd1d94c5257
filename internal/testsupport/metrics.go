package testsupport

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// GetMetricValue reads the current value of a counter or gauge from the
// default Prometheus registry. Labels must match exactly; pass nil for
// unlabelled metrics. A metric that was never observed reads as 0.
func GetMetricValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()

	metric := findMetric(t, name, labels)
	if metric == nil {
		return 0
	}

	switch {
	case metric.GetCounter() != nil:
		return metric.GetCounter().GetValue()
	case metric.GetGauge() != nil:
		return metric.GetGauge().GetValue()
	default:
		t.Fatalf("metric %q is neither a counter nor a gauge", name)
		return 0
	}
}

// AssertMetricDelta runs action and asserts the counter identified by name
// and labels grew by exactly delta. Metrics are process-global, so this
// isolates the assertion from whatever other tests already recorded.
func AssertMetricDelta(t *testing.T, name string, labels map[string]string, delta float64, action func()) {
	t.Helper()

	before := GetMetricValue(t, name, labels)
	action()
	after := GetMetricValue(t, name, labels)

	require.InDelta(t, delta, after-before, 0.0001,
		"expected metric %q to change by %v (before=%v after=%v)", name, delta, before, after)
}

// AssertHistogramRecorded asserts the histogram has at least one observation.
func AssertHistogramRecorded(t *testing.T, name string, labels map[string]string) {
	t.Helper()

	metric := findMetric(t, name, labels)
	require.NotNil(t, metric, "histogram %q not found", name)
	require.NotNil(t, metric.GetHistogram(), "metric %q is not a histogram", name)
	require.Greater(t, metric.GetHistogram().GetSampleCount(), uint64(0),
		"histogram %q has no observations", name)
}

// findMetric locates one metric sample in the default registry by family name
// and exact label match. Returns nil if absent.
func findMetric(t *testing.T, name string, labels map[string]string) *dto.Metric {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err, "failed to gather metrics")

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelsMatch(metric, labels) {
				return metric
			}
		}
	}
	return nil
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.GetLabel()) != len(labels) {
		return false
	}
	for _, pair := range metric.GetLabel() {
		if labels[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}
