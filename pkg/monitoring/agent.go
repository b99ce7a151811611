// Package monitoring aggregates per-stage timing and confidence into a
// health summary at the end of each workflow run. It observes only; it
// never influences routing.
package monitoring

import (
	"fmt"
	"time"

	"ai-ops-copilot-be/pkg/quality"
	"ai-ops-copilot-be/pkg/stage"
)

const stageType = "monitoring"

const (
	latencyThresholdMs     = 5000
	lowConfidenceThreshold = 0.5
)

// StageMetric is one stage's observed performance.
type StageMetric struct {
	Stage         string  `json:"stage"`
	Success       bool    `json:"success"`
	Confidence    float64 `json:"confidence"`
	DurationMs    int64   `json:"duration_ms"`
	SlowStage     bool    `json:"slow_stage"`
	LowConfidence bool    `json:"low_confidence"`
}

// Output is the monitoring summary attached to the finished workflow.
type Output struct {
	Metrics         []StageMetric `json:"metrics"`
	TotalDurationMs int64         `json:"total_duration_ms"`
	Alerts          []string      `json:"alerts"`
	HealthStatus    string        `json:"health_status"`
}

// StageObservation is what the workflow engine reports per executed stage.
type StageObservation struct {
	Stage      string
	Success    bool
	Confidence float64
	DurationMs int64
}

// Agent builds the health summary and forwards a quality sample.
type Agent struct {
	recorder quality.Recorder
}

func NewAgent(recorder quality.Recorder) *Agent {
	if recorder == nil {
		recorder = quality.NopRecorder{}
	}
	return &Agent{recorder: recorder}
}

// Observe summarizes a finished run. Metrics are factual, so confidence is
// always 1.0.
func (a *Agent) Observe(ticketID, finalStatus string, observations []StageObservation, riskFlagCount int, humanReviewed bool) *stage.Output[Output] {
	start := time.Now()

	metrics := make([]StageMetric, 0, len(observations))
	var alerts []string
	var total int64

	confidences := make(map[string]float64, len(observations))
	durations := make(map[string]int64, len(observations))

	for _, obs := range observations {
		metric := StageMetric{
			Stage:         obs.Stage,
			Success:       obs.Success,
			Confidence:    obs.Confidence,
			DurationMs:    obs.DurationMs,
			SlowStage:     obs.DurationMs > latencyThresholdMs,
			LowConfidence: obs.Confidence < lowConfidenceThreshold,
		}
		metrics = append(metrics, metric)
		total += obs.DurationMs
		confidences[obs.Stage] = obs.Confidence
		durations[obs.Stage] = obs.DurationMs

		if !obs.Success {
			alerts = append(alerts, fmt.Sprintf("stage %s failed", obs.Stage))
		}
		if metric.SlowStage {
			alerts = append(alerts, fmt.Sprintf("stage %s exceeded %dms", obs.Stage, latencyThresholdMs))
		}
	}

	health := "healthy"
	if len(alerts) > 0 {
		health = "degraded"
	}

	a.recorder.Record(quality.Sample{
		TicketID:         ticketID,
		FinalStatus:      finalStatus,
		StageConfidences: confidences,
		StageDurationsMs: durations,
		TotalDurationMs:  total,
		RiskFlagCount:    riskFlagCount,
		HumanReviewed:    humanReviewed,
		RecordedAt:       time.Now().UTC(),
	})

	if alerts == nil {
		alerts = []string{}
	}

	result := &Output{
		Metrics:         metrics,
		TotalDurationMs: total,
		Alerts:          alerts,
		HealthStatus:    health,
	}

	out := stage.New(stageType, result, 1.0, fmt.Sprintf("Observed %d stages, health %s", len(metrics), health))
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	return out
}
