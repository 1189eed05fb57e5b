package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Recorder backed by Prometheus.
// Collectors are registered on first use.
type PrometheusCollector struct {
	*NopMetrics

	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	generationDuration *prometheus.HistogramVec
	generationRuns     *prometheus.HistogramVec
	unfilledSlots      *prometheus.CounterVec
	forcedAssignments  *prometheus.CounterVec
	winningScore       *prometheus.GaugeVec
	commits            *prometheus.CounterVec
}

var _ Recorder = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed recorder.
// A nil reg uses prometheus.DefaultRegisterer; an empty namespace uses "shift_rota".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "shift_rota"
	}

	return &PrometheusCollector{NopMetrics: NewNop(), reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.generationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Wall time of schedule generation by site and outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
		}, []string{"site", "outcome"})

		p.generationRuns = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "generation",
			Name:      "runs",
			Help:      "Greedy runs evaluated per generation.",
			Buckets:   []float64{1, 10, 25, 50, 100, 200, 500},
		}, []string{"site"})

		p.unfilledSlots = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "generation",
			Name:      "unfilled_slots_total",
			Help:      "Slots left empty in winning runs.",
		}, []string{"site"})

		p.forcedAssignments = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "generation",
			Name:      "forced_assignments_total",
			Help:      "Workers forced into slots in spite of a constraint in winning runs.",
		}, []string{"site"})

		p.winningScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "generation",
			Name:      "winning_score",
			Help:      "Aggregate score of the most recent winning run.",
		}, []string{"site"})

		p.commits = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "store",
			Name:      "commits_total",
			Help:      "Schedule commit attempts by result (success,failure).",
		}, []string{"result"})

		p.reg.MustRegister(p.generationDuration)
		p.reg.MustRegister(p.generationRuns)
		p.reg.MustRegister(p.unfilledSlots)
		p.reg.MustRegister(p.forcedAssignments)
		p.reg.MustRegister(p.winningScore)
		p.reg.MustRegister(p.commits)
	})
}

func (p *PrometheusCollector) ObserveGeneration(siteID, outcome string, seconds float64) {
	p.ensureRegistered()
	p.generationDuration.WithLabelValues(siteID, outcome).Observe(seconds)
}

func (p *PrometheusCollector) RecordRuns(siteID string, runs int) {
	p.ensureRegistered()
	p.generationRuns.WithLabelValues(siteID).Observe(float64(runs))
}

func (p *PrometheusCollector) RecordConflicts(siteID string, unfilled, forced int) {
	p.ensureRegistered()
	p.unfilledSlots.WithLabelValues(siteID).Add(float64(unfilled))
	p.forcedAssignments.WithLabelValues(siteID).Add(float64(forced))
}

func (p *PrometheusCollector) RecordScore(siteID string, score int) {
	p.ensureRegistered()
	p.winningScore.WithLabelValues(siteID).Set(float64(score))
}

func (p *PrometheusCollector) IncrementCommit(result string) {
	p.ensureRegistered()
	p.commits.WithLabelValues(result).Inc()
}
