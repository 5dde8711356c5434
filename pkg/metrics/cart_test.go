package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCartMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCartMetrics(reg)

	metrics.ObserveMutation("add_item", OutcomeSuccess, 5*time.Millisecond)
	metrics.ObserveMutation("add_item", OutcomeSuccess, 5*time.Millisecond)
	metrics.ObserveMutation("update_quantity", OutcomeRolledBack, time.Millisecond)
	metrics.IncRollback("update_quantity")
	metrics.IncPromoValidation(PromoOutcomeInvalid)
	metrics.ObserveDuplicateGroups(2)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "cart_mutations_total", map[string]string{"kind": "add_item", "outcome": OutcomeSuccess}); err != nil {
		t.Fatalf("fetch mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected 2 successful add_item mutations, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_rollbacks_total", map[string]string{"kind": "update_quantity"}); err != nil {
		t.Fatalf("fetch rollbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected rollbacks=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "cart_promo_validations_total", map[string]string{"outcome": PromoOutcomeInvalid}); err != nil {
		t.Fatalf("fetch promo validations: %v", err)
	} else if got != 1 {
		t.Fatalf("expected promo validations=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "cart_duplicate_groups")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("duplicate groups histogram missing")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum != 2 {
		t.Fatalf("expected duplicate group sum 2, got %f", sum)
	}
}

func TestCartMetricsNilSafe(t *testing.T) {
	var nilMetrics *CartMetrics
	nilMetrics.ObserveMutation("add_item", OutcomeSuccess, time.Millisecond)
	nilMetrics.IncRollback("add_item")
	nilMetrics.IncPromoValidation(PromoOutcomeValid)
	nilMetrics.ObserveDuplicateGroups(1)

	unregistered := NewCartMetrics(nil)
	unregistered.ObserveMutation("", "", 0)
	unregistered.IncRollback("")
}

func TestNormalizeLabel(t *testing.T) {
	if got := normalizeLabel(""); got != "unknown" {
		t.Fatalf("expected unknown, got %s", got)
	}
	if got := normalizeLabel("clear"); got != "clear" {
		t.Fatalf("expected passthrough, got %s", got)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if value, ok := want[pair.GetName()]; ok && value == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
