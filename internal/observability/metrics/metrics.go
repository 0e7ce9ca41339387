package metrics

import "github.com/prometheus/client_golang/prometheus"

// BenchMetrics exposes counters/histograms for evaluation runs.
type BenchMetrics struct {
	questionsTotal    *prometheus.CounterVec
	trainingFailures  *prometheus.CounterVec
	judgeParseFailed  prometheus.Counter
	judgeLabelRepairs prometheus.Counter
	questionLatency   *prometheus.HistogramVec
}

func NewBenchMetrics(reg prometheus.Registerer) *BenchMetrics {
	m := &BenchMetrics{
		questionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolebench",
			Subsystem: "runner",
			Name:      "questions_total",
			Help:      "Evaluation questions processed, by role and outcome",
		}, []string{"role", "outcome"}),
		trainingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rolebench",
			Subsystem: "trainer",
			Name:      "exemplar_failures_total",
			Help:      "Training exemplars whose priming call failed",
		}, []string{"role"}),
		judgeParseFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rolebench",
			Subsystem: "judge",
			Name:      "parse_failures_total",
			Help:      "Judge outputs with no usable evaluation body",
		}),
		judgeLabelRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rolebench",
			Subsystem: "judge",
			Name:      "label_repairs_total",
			Help:      "Judge outputs where the both-true label pair was repaired",
		}),
		questionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rolebench",
			Subsystem: "runner",
			Name:      "question_latency_seconds",
			Help:      "End-to-end latency of one question, actor call plus judge call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"role"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.questionsTotal, m.trainingFailures, m.judgeParseFailed, m.judgeLabelRepairs, m.questionLatency)
	return m
}

func (m *BenchMetrics) ObserveQuestion(role, outcome string) {
	if m == nil {
		return
	}
	m.questionsTotal.WithLabelValues(role, outcome).Inc()
}

func (m *BenchMetrics) ObserveTrainingFailure(role string) {
	if m == nil {
		return
	}
	m.trainingFailures.WithLabelValues(role).Inc()
}

func (m *BenchMetrics) ObserveJudgeParseFailure() {
	if m == nil {
		return
	}
	m.judgeParseFailed.Inc()
}

func (m *BenchMetrics) ObserveJudgeLabelRepair() {
	if m == nil {
		return
	}
	m.judgeLabelRepairs.Inc()
}

func (m *BenchMetrics) ObserveQuestionLatency(role string, seconds float64) {
	if m == nil {
		return
	}
	m.questionLatency.WithLabelValues(role).Observe(seconds)
}
