package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestLedgerMetricsExportsCountersAndGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLedgerMetrics(reg)

	metrics.ObserveSale("counter", "cash", 21550)
	metrics.ObserveSale("counter", "cash", 10000)
	metrics.SetContainerStock("matriz", 47, 23)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "sales_recorded_total", "channel", "counter"); err != nil {
		t.Fatalf("fetch sales total: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 sales, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "sales_revenue_cents_total", "channel", "counter"); err != nil {
		t.Fatalf("fetch revenue: %v", err)
	} else if got != 31550 {
		t.Fatalf("expected 31550 cents, got %f", got)
	}

	if got, err := fetchGaugeValue(mfs, "container_stock_full", "depot", "matriz"); err != nil {
		t.Fatalf("fetch full gauge: %v", err)
	} else if got != 47 {
		t.Fatalf("expected full=47, got %f", got)
	}

	if got, err := fetchGaugeValue(mfs, "container_stock_empty", "depot", "matriz"); err != nil {
		t.Fatalf("fetch empty gauge: %v", err)
	} else if got != 23 {
		t.Fatalf("expected empty=23, got %f", got)
	}
}

func TestOutboxMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewOutboxMetrics(reg)
	event := "sale_recorded"

	metrics.ObserveDuration(event, 120*time.Millisecond)
	metrics.IncSuccess(event)
	metrics.IncFailure(event)
	metrics.IncDLQ(event)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "outbox_publish_success", "event_type", event); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "outbox_dlq_total", "event_type", event); err != nil {
		t.Fatalf("fetch dlq: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dlq=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "outbox_publish_duration_seconds", "event_type", event); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
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

func fetchGaugeValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetGauge().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("gauge %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
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
