package triage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-ops-copilot-be/pkg/llm"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
)

const stageType = "triage"

// Agent classifies and prioritizes incoming tickets. It is the first
// intelligence step in the pipeline; its output drives retrieval, decision
// and action downstream.
type Agent struct {
	provider            llm.Provider
	confidenceThreshold float64
	escalationKeywords  []string
}

func NewAgent(provider llm.Provider) *Agent {
	return &Agent{
		provider:            provider,
		confidenceThreshold: ConfidenceThreshold,
		escalationKeywords:  EscalationKeywords,
	}
}

// Classify runs the LLM classification and then the deterministic safety
// overlay. Failures never surface as errors; they come back as a failed
// stage output flagged for human review.
func (a *Agent) Classify(ctx context.Context, t ticket.Ticket) *stage.Output[Output] {
	start := time.Now()

	userPrompt := BuildUserPrompt(t)

	response, err := a.provider.GenerateStructured(ctx, userPrompt, SystemPrompt)
	if err != nil {
		return withTiming(stage.NewError[Output](stageType, fmt.Sprintf("triage processing failed: %v", err)), start)
	}

	output, err := a.parseResponse(response, t.TicketID)
	if err != nil {
		return withTiming(stage.NewError[Output](stageType, fmt.Sprintf("llm produced invalid output: %v", err)), start)
	}

	a.applyEscalationRules(output, t)

	out := stage.New(stageType, output, output.Confidence, output.Reasoning.CategoryRationale)
	if reason := a.humanReviewReason(output); reason != "" {
		out.WithReview(reason)
	}
	return withTiming(out, start)
}

func withTiming[T any](out *stage.Output[T], start time.Time) *stage.Output[T] {
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	return out
}

func (a *Agent) parseResponse(response *llm.StructuredResponse, ticketID string) (*Output, error) {
	raw := response.StructuredOutput
	if raw == nil {
		raw = json.RawMessage(response.Content)
	}

	var output Output
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, err
	}

	if output.PrimaryCategory == "" || output.Severity == "" {
		return nil, fmt.Errorf("missing required classification fields")
	}
	if output.Confidence < 0 || output.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]", output.Confidence)
	}

	// Echo back the real ticket ID regardless of what the model produced.
	output.TicketID = ticketID
	return &output, nil
}

// applyEscalationRules enforces the safety rules after the LLM call so they
// hold even when the model misses them.
func (a *Agent) applyEscalationRules(output *Output, t ticket.Ticket) {
	if output.Confidence < a.confidenceThreshold {
		appendReason(output, "Low confidence score")
	}

	if output.Severity == "P1" {
		appendReason(output, "Severity P1")
	}

	ticketText := strings.ToLower(t.SearchableText())
	for _, keyword := range a.escalationKeywords {
		if strings.Contains(ticketText, strings.ToLower(keyword)) {
			appendReason(output, "Contains keyword: "+keyword)
			break
		}
	}
}

func appendReason(output *Output, reason string) {
	output.RequiresEscalation = true
	for _, existing := range output.EscalationReasons {
		if existing == reason {
			return
		}
	}
	output.EscalationReasons = append(output.EscalationReasons, reason)
}

func (a *Agent) humanReviewReason(output *Output) string {
	if output.RequiresEscalation {
		reasons := output.EscalationReasons
		if len(reasons) == 0 {
			return "Escalation triggered"
		}
		if len(reasons) > 3 {
			reasons = reasons[:3]
		}
		return "Escalation triggered: " + strings.Join(reasons, ", ")
	}
	if output.Confidence < a.confidenceThreshold {
		return fmt.Sprintf("Low confidence (%.2f)", output.Confidence)
	}
	if output.IssueType == "incident" {
		return "Issue type is incident"
	}
	return ""
}
