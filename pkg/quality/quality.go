// Package quality is the hook for confidence-calibration and regression
// tracking. The default recorder does nothing; a real implementation can be
// plugged in without touching the pipeline.
package quality

import (
	"sync"
	"time"
)

// Sample is one completed workflow's quality signals.
type Sample struct {
	TicketID         string             `json:"ticket_id"`
	FinalStatus      string             `json:"final_status"`
	StageConfidences map[string]float64 `json:"stage_confidences"`
	StageDurationsMs map[string]int64   `json:"stage_durations_ms"`
	TotalDurationMs  int64              `json:"total_duration_ms"`
	RiskFlagCount    int                `json:"risk_flag_count"`
	HumanReviewed    bool               `json:"human_reviewed"`
	RecordedAt       time.Time          `json:"recorded_at"`
}

// Recorder receives quality samples as workflows finish.
type Recorder interface {
	Record(sample Sample)
}

// NopRecorder discards every sample.
type NopRecorder struct{}

func (NopRecorder) Record(Sample) {}

// MemoryRecorder keeps the most recent samples in a ring buffer.
type MemoryRecorder struct {
	mu      sync.Mutex
	samples []Sample
	limit   int
}

func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 1000
	}
	return &MemoryRecorder{limit: limit}
}

func (r *MemoryRecorder) Record(sample Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample)
	if len(r.samples) > r.limit {
		r.samples = r.samples[len(r.samples)-r.limit:]
	}
}

// Samples returns a copy of the retained samples, oldest first.
func (r *MemoryRecorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}
