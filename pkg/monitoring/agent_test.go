package monitoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-copilot-be/pkg/quality"
)

func TestObserveHealthyRun(t *testing.T) {
	recorder := quality.NewMemoryRecorder(10)
	agent := NewAgent(recorder)

	out := agent.Observe("tkt-1", "completed", []StageObservation{
		{Stage: "triage", Success: true, Confidence: 0.9, DurationMs: 120},
		{Stage: "knowledge", Success: true, Confidence: 0.8, DurationMs: 40},
		{Stage: "decision", Success: true, Confidence: 0.85, DurationMs: 1},
	}, 0, true)

	require.True(t, out.Success)
	require.NotNil(t, out.Result)
	assert.Equal(t, "healthy", out.Result.HealthStatus)
	assert.Empty(t, out.Result.Alerts)
	assert.Equal(t, int64(161), out.Result.TotalDurationMs)
	assert.Equal(t, 1.0, out.Confidence)
	assert.Len(t, out.Result.Metrics, 3)
	assert.False(t, out.Result.Metrics[0].SlowStage)
	assert.False(t, out.Result.Metrics[0].LowConfidence)
}

func TestObserveDegradedRun(t *testing.T) {
	recorder := quality.NewMemoryRecorder(10)
	agent := NewAgent(recorder)

	out := agent.Observe("tkt-2", "failed", []StageObservation{
		{Stage: "triage", Success: true, Confidence: 0.4, DurationMs: 6000},
		{Stage: "knowledge", Success: false, Confidence: 0.0, DurationMs: 10},
	}, 2, false)

	require.NotNil(t, out.Result)
	assert.Equal(t, "degraded", out.Result.HealthStatus)
	assert.Contains(t, out.Result.Alerts, "stage knowledge failed")
	assert.Contains(t, out.Result.Alerts, "stage triage exceeded 5000ms")
	assert.True(t, out.Result.Metrics[0].SlowStage)
	assert.True(t, out.Result.Metrics[0].LowConfidence)
}

func TestObserveRecordsQualitySample(t *testing.T) {
	recorder := quality.NewMemoryRecorder(10)
	agent := NewAgent(recorder)

	agent.Observe("tkt-3", "completed", []StageObservation{
		{Stage: "triage", Success: true, Confidence: 0.9, DurationMs: 100},
		{Stage: "decision", Success: true, Confidence: 0.7, DurationMs: 2},
	}, 1, true)

	samples := recorder.Samples()
	require.Len(t, samples, 1)
	sample := samples[0]
	assert.Equal(t, "tkt-3", sample.TicketID)
	assert.Equal(t, "completed", sample.FinalStatus)
	assert.Equal(t, 0.9, sample.StageConfidences["triage"])
	assert.Equal(t, int64(2), sample.StageDurationsMs["decision"])
	assert.Equal(t, int64(102), sample.TotalDurationMs)
	assert.Equal(t, 1, sample.RiskFlagCount)
	assert.True(t, sample.HumanReviewed)
	assert.False(t, sample.RecordedAt.IsZero())
}

func TestObserveNilRecorder(t *testing.T) {
	agent := NewAgent(nil)

	out := agent.Observe("tkt-4", "completed", nil, 0, false)
	require.NotNil(t, out.Result)
	assert.Equal(t, "healthy", out.Result.HealthStatus)
	assert.Empty(t, out.Result.Metrics)
}
