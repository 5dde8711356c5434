package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess    = "success"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"

	PromoOutcomeValid       = "valid"
	PromoOutcomeInvalid     = "invalid"
	PromoOutcomeUnavailable = "unavailable"
	PromoOutcomeSuperseded  = "superseded"
)

// CartMetrics records cart mutation, promo and checkout gate activity.
type CartMetrics struct {
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	rollbacks        *prometheus.CounterVec
	promoValidations *prometheus.CounterVec
	duplicateGroups  prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer. A nil
// registerer yields a recorder whose methods are no-ops.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by kind and outcome.",
	}, []string{"kind", "outcome"})
	mutationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_mutation_duration_seconds",
		Help:    "Time spent applying and persisting a cart mutation.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	rollbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_rollbacks_total",
		Help: "Mutations reverted because persistence failed.",
	}, []string{"kind"})
	promoValidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_promo_validations_total",
		Help: "Promo validations by outcome.",
	}, []string{"outcome"})
	duplicateGroups := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_duplicate_groups",
		Help:    "Duplicate product groups found per checkout review.",
		Buckets: []float64{0, 1, 2, 3, 5, 8},
	})
	reg.MustRegister(mutations, mutationDuration, rollbacks, promoValidations, duplicateGroups)
	return &CartMetrics{
		mutations:        mutations,
		mutationDuration: mutationDuration,
		rollbacks:        rollbacks,
		promoValidations: promoValidations,
		duplicateGroups:  duplicateGroups,
	}
}

// ObserveMutation counts a finished mutation and its duration.
func (c *CartMetrics) ObserveMutation(kind, outcome string, duration time.Duration) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
	c.mutationDuration.WithLabelValues(normalizeLabel(kind)).Observe(duration.Seconds())
}

// IncRollback counts a mutation reverted after a persistence failure.
func (c *CartMetrics) IncRollback(kind string) {
	if c == nil || c.rollbacks == nil {
		return
	}
	c.rollbacks.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncPromoValidation counts a promo validation result.
func (c *CartMetrics) IncPromoValidation(outcome string) {
	if c == nil || c.promoValidations == nil {
		return
	}
	c.promoValidations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuplicateGroups records how many duplicate groups a review found.
func (c *CartMetrics) ObserveDuplicateGroups(count int) {
	if c == nil || c.duplicateGroups == nil {
		return
	}
	c.duplicateGroups.Observe(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
