// Package stage defines the common envelope every pipeline stage produces.
// Each stage returns its own typed result inside this envelope so the
// workflow state stays fully typed end to end.
package stage

import "time"

// Output wraps one stage's typed result with the signals the workflow
// engine routes on. A failed stage still produces an Output, with Success
// false and Error set, rather than surfacing a raw error to the graph.
type Output[T any] struct {
	StageType           string    `json:"stage_type"`
	Success             bool      `json:"success"`
	Result              *T        `json:"result,omitempty"`
	Confidence          float64   `json:"confidence"`
	Reasoning           string    `json:"reasoning"`
	RequiresHumanReview bool      `json:"requires_human_review"`
	HumanReviewReason   string    `json:"human_review_reason,omitempty"`
	Sources             []string  `json:"sources"`
	Error               string    `json:"error,omitempty"`
	ProcessingTimeMs    int64     `json:"processing_time_ms"`
	Timestamp           time.Time `json:"timestamp"`
}

func New[T any](stageType string, result *T, confidence float64, reasoning string) *Output[T] {
	return &Output[T]{
		StageType:  stageType,
		Success:    true,
		Result:     result,
		Confidence: confidence,
		Reasoning:  reasoning,
		Sources:    []string{},
		Timestamp:  time.Now().UTC(),
	}
}

// NewError builds a failed output. Error outputs always request human
// review so a broken stage can never silently pass a ticket downstream.
func NewError[T any](stageType, errMessage string) *Output[T] {
	return &Output[T]{
		StageType:           stageType,
		Success:             false,
		Confidence:          0.0,
		Reasoning:           "Processing failed: " + errMessage,
		RequiresHumanReview: true,
		HumanReviewReason:   "Error: " + errMessage,
		Sources:             []string{},
		Error:               errMessage,
		Timestamp:           time.Now().UTC(),
	}
}

// WithReview marks the output as needing a human and records why.
func (o *Output[T]) WithReview(reason string) *Output[T] {
	o.RequiresHumanReview = true
	o.HumanReviewReason = reason
	return o
}

func (o *Output[T]) WithSources(sources []string) *Output[T] {
	if sources == nil {
		sources = []string{}
	}
	o.Sources = sources
	return o
}
