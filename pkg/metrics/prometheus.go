package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"HoopLine/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions  *prometheus.CounterVec
	failures     *prometheus.CounterVec
	degradations *prometheus.CounterVec
	penalty      prometheus.Histogram
	evaluations  *prometheus.CounterVec
	volGap       prometheus.Histogram
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopline_predictions_total",
				Help: "Total number of scored matchups by override state",
			},
			[]string{"override"},
		),
		failures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopline_prediction_failures_total",
				Help: "Matchups that could not be scored",
			},
			[]string{"stage"},
		),
		degradations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopline_degradations_total",
				Help: "Numeric or data fallbacks absorbed while scoring",
			},
			[]string{"kind"},
		),
		penalty: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hoopline_integrity_penalty",
				Help:    "Integrity penalty applied per prediction, in points",
				Buckets: []float64{0, 0.05, 0.2, 0.5, 1, 2, 5, 10, 20, 40},
			},
		),
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopline_evaluations_total",
				Help: "Post-game evaluations by outcome",
			},
			[]string{"outcome"},
		),
		volGap: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hoopline_volatility_gap_points",
				Help:    "Absolute gap between prediction and actual margin",
				Buckets: []float64{1, 2, 4, 6, 8, 10, 12, 15, 20, 30},
			},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hoopline_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hoopline_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction counts a scored matchup.
func (r *Recorder) RecordPrediction(state models.OverrideState) {
	r.predictions.WithLabelValues(string(state)).Inc()
}

// RecordFailure counts a matchup rejected at stage.
func (r *Recorder) RecordFailure(stage string) {
	r.failures.WithLabelValues(stage).Inc()
}

// RecordDegradation counts one absorbed fallback.
func (r *Recorder) RecordDegradation(kind string) {
	r.degradations.WithLabelValues(kind).Inc()
}

// RecordPenalty observes an integrity penalty.
func (r *Recorder) RecordPenalty(penalty float64) {
	r.penalty.Observe(penalty)
}

// RecordEvaluation counts the outcome flags of a graded prediction.
func (r *Recorder) RecordEvaluation(e models.Evaluation) {
	if e.Correct {
		r.evaluations.WithLabelValues("correct").Inc()
	} else {
		r.evaluations.WithLabelValues("incorrect").Inc()
	}
	if e.ORARegret {
		r.evaluations.WithLabelValues("ora_regret").Inc()
	}
	if e.ORAMiss {
		r.evaluations.WithLabelValues("ora_miss").Inc()
	}
	r.volGap.Observe(e.VolatilityGap)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
