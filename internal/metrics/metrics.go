// Package metrics records intake flow metrics with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder receives intake events.
type Recorder interface {
	// ObserveGenerate records one question provider call. kind is empty on success.
	ObserveGenerate(kind string, questions int, duration time.Duration)
	// ObserveSubmission records one submission sink call.
	ObserveSubmission(backend, outcome string)
	// SessionOpened and SessionClosed track live sessions.
	SessionOpened()
	SessionClosed()
}

// Nop discards every event.
type Nop struct{}

func (Nop) ObserveGenerate(string, int, time.Duration) {}
func (Nop) ObserveSubmission(string, string) {}
func (Nop) SessionOpened() {}
func (Nop) SessionClosed() {}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	generateTotal     *prometheus.CounterVec
	generateDuration  *prometheus.HistogramVec
	generatedQuestion prometheus.Histogram
	submissionsTotal  *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
}

// NewPrometheusRecorder registers the intake metrics with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		generateTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_question_generation_total",
				Help: "Question provider calls by outcome and failure kind",
			},
			[]string{"outcome", "kind"},
		),
		generateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "intake_question_generation_duration_seconds",
				Help:    "Duration of question provider calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		generatedQuestion: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "intake_generated_questions",
				Help:    "Number of questions returned per successful generation",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 8, 13},
			},
		),
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_submissions_total",
				Help: "Candidate submissions by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		sessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "intake_sessions_active",
				Help: "Intake sessions currently held in memory",
			},
		),
	}
}

// ObserveGenerate implements Recorder.
func (p *PrometheusRecorder) ObserveGenerate(kind string, questions int, duration time.Duration) {
	outcome := OutcomeSuccess
	if kind != "" {
		outcome = OutcomeFailure
	} else {
		p.generatedQuestion.Observe(float64(questions))
	}
	p.generateTotal.WithLabelValues(outcome, kind).Inc()
	p.generateDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// ObserveSubmission implements Recorder.
func (p *PrometheusRecorder) ObserveSubmission(backend, outcome string) {
	p.submissionsTotal.WithLabelValues(backend, outcome).Inc()
}

// SessionOpened implements Recorder.
func (p *PrometheusRecorder) SessionOpened() { p.sessionsActive.Inc() }

// SessionClosed implements Recorder.
func (p *PrometheusRecorder) SessionClosed() { p.sessionsActive.Dec() }

var (
	_ Recorder = Nop{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
