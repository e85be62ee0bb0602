package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache outcomes for shortfall requests.
const (
	CacheHit      = "hit"
	CacheMiss     = "miss"
	CacheDisabled = "disabled"
)

// PlannerMetrics covers the shopping-list engine and the pantry mutator.
type PlannerMetrics struct {
	shortfallRequests *prometheus.CounterVec
	shortfallDuration prometheus.Histogram
	skippedMeals      prometheus.Counter
	pantryMutations   *prometheus.CounterVec
	commitKeys        *prometheus.CounterVec
}

// NewPlannerMetrics registers the planner metrics on reg. A nil registerer
// yields a no-op recorder.
func NewPlannerMetrics(reg prometheus.Registerer) *PlannerMetrics {
	if reg == nil {
		return &PlannerMetrics{}
	}
	m := &PlannerMetrics{
		shortfallRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortfall_requests_total",
			Help:      "Shortfall computations by cache outcome.",
		}, []string{"cache"}),
		shortfallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shortfall_duration_seconds",
			Help:      "Time spent computing a shortfall report.",
			Buckets:   prometheus.DefBuckets,
		}),
		skippedMeals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortfall_skipped_meals_total",
			Help:      "Planned meals skipped because their recipe was missing.",
		}),
		pantryMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pantry_mutations_total",
			Help:      "Pantry upserts by mode and result.",
		}, []string{"mode", "result"}),
		commitKeys: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purchase_commit_keys_total",
			Help:      "Purchase commit keys by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.shortfallRequests, m.shortfallDuration, m.skippedMeals, m.pantryMutations, m.commitKeys)
	return m
}

func (m *PlannerMetrics) ObserveShortfall(cache string, duration time.Duration) {
	if m == nil || m.shortfallRequests == nil {
		return
	}
	m.shortfallRequests.WithLabelValues(normalizeLabel(cache)).Inc()
	m.shortfallDuration.Observe(duration.Seconds())
}

func (m *PlannerMetrics) AddSkippedMeals(n int) {
	if m == nil || m.skippedMeals == nil || n <= 0 {
		return
	}
	m.skippedMeals.Add(float64(n))
}

// IncPantryMutation records one upsert; err decides the result label.
func (m *PlannerMetrics) IncPantryMutation(mode string, err error) {
	if m == nil || m.pantryMutations == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.pantryMutations.WithLabelValues(normalizeLabel(mode), result).Inc()
}

func (m *PlannerMetrics) AddCommitKeys(applied, failed int) {
	if m == nil || m.commitKeys == nil {
		return
	}
	if applied > 0 {
		m.commitKeys.WithLabelValues("applied").Add(float64(applied))
	}
	if failed > 0 {
		m.commitKeys.WithLabelValues("failed").Add(float64(failed))
	}
}
