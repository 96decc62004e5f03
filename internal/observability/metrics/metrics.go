package metrics

import "github.com/prometheus/client_golang/prometheus"

// PredictionMetrics exposes counters/histograms for no-show risk scoring.
type PredictionMetrics struct {
	predictionsTotal *prometheus.CounterVec
	probability      prometheus.Histogram
	outcomesTotal    *prometheus.CounterVec
}

func NewPredictionMetrics(reg prometheus.Registerer) *PredictionMetrics {
	m := &PredictionMetrics{
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "physiobook",
			Subsystem: "noshow",
			Name:      "predictions_total",
			Help:      "Total no-show predictions by risk level",
		}, []string{"risk_level"}),
		probability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "physiobook",
			Subsystem: "noshow",
			Name:      "probability",
			Help:      "Distribution of predicted no-show probabilities",
			Buckets:   []float64{5, 10, 15, 20, 30, 40, 50, 75, 100},
		}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "physiobook",
			Subsystem: "noshow",
			Name:      "outcomes_total",
			Help:      "Recorded appointment outcomes for predicted appointments",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.predictionsTotal, m.probability, m.outcomesTotal)
	return m
}

func (m *PredictionMetrics) ObservePrediction(riskLevel string, probability float64) {
	if m == nil {
		return
	}
	m.predictionsTotal.WithLabelValues(riskLevel).Inc()
	m.probability.Observe(probability)
}

func (m *PredictionMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(outcome).Inc()
}

// MatchingMetrics exposes counters/histograms for therapist matching.
type MatchingMetrics struct {
	requestsTotal    *prometheus.CounterVec
	candidatesScored prometheus.Histogram
	cacheTotal       *prometheus.CounterVec
}

func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	m := &MatchingMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "physiobook",
			Subsystem: "matching",
			Name:      "requests_total",
			Help:      "Total therapist matching requests",
		}, []string{"outcome"}),
		candidatesScored: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "physiobook",
			Subsystem: "matching",
			Name:      "candidates_scored",
			Help:      "Candidate pool size per matching request",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		cacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "physiobook",
			Subsystem: "matching",
			Name:      "cache_total",
			Help:      "Match cache lookups by result",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.candidatesScored, m.cacheTotal)
	return m
}

func (m *MatchingMetrics) ObserveRequest(outcome string, candidates int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(outcome).Inc()
	m.candidatesScored.Observe(float64(candidates))
}

func (m *MatchingMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheTotal.WithLabelValues(result).Inc()
}
