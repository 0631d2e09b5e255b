package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveGenerate("", 3, 120*time.Millisecond)
	r.ObserveGenerate("transport", 0, time.Second)
	r.ObserveGenerate("transport", 0, time.Second)
	r.ObserveSubmission("sqlite", OutcomeSuccess)
	r.ObserveSubmission("sqlite", OutcomeFailure)
	r.SessionOpened()
	r.SessionOpened()
	r.SessionClosed()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.generateTotal.WithLabelValues(OutcomeSuccess, "")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.generateTotal.WithLabelValues(OutcomeFailure, "transport")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.submissionsTotal.WithLabelValues("sqlite", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sessionsActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "intake_generated_questions")
	assert.Contains(t, names, "intake_question_generation_duration_seconds")
}

func TestNewPrometheusRecorderRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusRecorder(reg)
	assert.Panics(t, func() { NewPrometheusRecorder(reg) })
}
