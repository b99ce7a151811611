// Package action turns an approved decision into a draft response or an
// engineer checklist. It never executes anything against external systems;
// every output is a draft for a human to act on.
package action

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
)

const stageType = "action"

// Action type values in Output.
const (
	TypeDraftResponse     = "draft_response"
	TypeEngineerChecklist = "engineer_checklist"
)

// DraftMarker and ChecklistMarker flag generated content as unreviewed.
const (
	DraftMarker     = "DRAFT - REQUIRES HUMAN REVIEW"
	ChecklistMarker = "GENERATED FOR ENGINEER REVIEW"
)

// Input carries everything the action stage may consult. A human-modified
// decision in HumanDecision takes precedence over Decision.
type Input struct {
	Ticket              ticket.Ticket
	Decision            *decision.Output
	HumanDecision       *stage.HumanDecision
	ApprovalStatus      string
	Documents           []knowledge.RetrievedDocument
	KnowledgeConfidence float64
}

// Output is always a draft; nothing here has been sent anywhere.
type Output struct {
	ActionType       string   `json:"action_type"`
	Content          string   `json:"content"`
	GroundingSources []string `json:"grounding_sources"`
	Disclaimers      []string `json:"disclaimers"`
	IsDraft          bool     `json:"is_draft"`
	ExecutedAction   string   `json:"executed_action"`
}

type Agent struct{}

func NewAgent() *Agent {
	return &Agent{}
}

// Execute checks the approval gate before anything else. Without approval
// it returns a SafetyViolationError and produces no content at all.
func (a *Agent) Execute(in Input) (*stage.Output[Output], error) {
	if !approved(in) {
		return nil, &SafetyViolationError{TicketID: in.Ticket.TicketID}
	}

	start := time.Now()

	recommendedAction := ""
	if in.Decision != nil {
		recommendedAction = in.Decision.RecommendedAction
	}
	if in.HumanDecision != nil && in.HumanDecision.Action == stage.HumanModify {
		if override, ok := in.HumanDecision.ModifiedPayload["recommended_action"].(string); ok && override != "" {
			recommendedAction = override
		}
	}

	var result *Output
	if recommendedAction == decision.ActionEscalate {
		result = a.buildChecklist(in)
	} else {
		result = a.buildDraftResponse(in)
	}
	result.ExecutedAction = recommendedAction

	confidence := actionConfidence(in.KnowledgeConfidence, len(in.Documents))

	out := stage.New(stageType, result, confidence, fmt.Sprintf("Prepared %s from approved decision", result.ActionType)).
		WithSources(result.GroundingSources)
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	return out, nil
}

// approved implements the hard gate: an explicit approve decision, a
// human-modified decision, or an approval status of "approved".
func approved(in Input) bool {
	if in.HumanDecision != nil && in.HumanDecision.Action == stage.HumanApprove {
		return true
	}
	if in.HumanDecision != nil && in.HumanDecision.Action == stage.HumanModify {
		return true
	}
	return in.ApprovalStatus == stage.ApprovalStatusApproved
}

func actionConfidence(knowledgeConfidence float64, documentCount int) float64 {
	confidence := 0.6*knowledgeConfidence + math.Min(0.3, 0.1*float64(documentCount))
	confidence = math.Max(0.2, math.Min(1.0, confidence))
	return math.Round(confidence*1000) / 1000
}

func groundingSources(docs []knowledge.RetrievedDocument) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, d := range docs {
		if seen[d.Filename] {
			continue
		}
		seen[d.Filename] = true
		sources = append(sources, d.Filename)
		if len(sources) == 3 {
			break
		}
	}
	if sources == nil {
		sources = []string{}
	}
	return sources
}

func (a *Agent) buildDraftResponse(in Input) *Output {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello,\n\nThank you for reaching out about %q.\n\n", in.Ticket.Subject)

	if len(in.Documents) > 0 {
		top := in.Documents[0]
		excerpt := top.Content
		if len(excerpt) > 300 {
			excerpt = excerpt[:300] + "..."
		}
		fmt.Fprintf(&b, "Based on our documentation (%s), the following may be relevant:\n\n%s\n\n", top.Citation, excerpt)
	} else {
		b.WriteString("We could not find documentation matching your issue, so a support engineer will look into it directly.\n\n")
	}

	b.WriteString("We will follow up once we have confirmed the details above.\n\nBest regards,\nSupport Team\n\n")
	fmt.Fprintf(&b, "[%s]", DraftMarker)

	return &Output{
		ActionType:       TypeDraftResponse,
		Content:          b.String(),
		GroundingSources: groundingSources(in.Documents),
		Disclaimers: []string{
			"This draft has not been reviewed by a human.",
			"Content is grounded only in the cited documentation; verify before sending.",
		},
		IsDraft: true,
	}
}

func (a *Agent) buildChecklist(in Input) *Output {
	var b strings.Builder

	fmt.Fprintf(&b, "Escalation checklist for ticket %s\n", in.Ticket.TicketID)
	fmt.Fprintf(&b, "Summary: %s\n", in.Ticket.Subject)
	if in.Ticket.Severity != "" {
		fmt.Fprintf(&b, "Severity: %s\n", in.Ticket.Severity)
	}
	b.WriteString("\n")

	steps := []string{
		"Confirm the reported symptoms against current service health.",
		"Reproduce the issue in a non-production environment if possible.",
		"Review the referenced documentation for known causes.",
		"Identify the owning team and hand over with full context.",
		"Record findings on the ticket before responding to the customer.",
	}
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	sources := groundingSources(in.Documents)
	if len(sources) > 0 {
		b.WriteString("\nReference documents:\n")
		for _, s := range sources {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}

	fmt.Fprintf(&b, "\n[%s]", ChecklistMarker)

	return &Output{
		ActionType:       TypeEngineerChecklist,
		Content:          b.String(),
		GroundingSources: sources,
		Disclaimers: []string{
			"Checklist generated automatically; validate each step before acting.",
		},
		IsDraft: true,
	}
}
