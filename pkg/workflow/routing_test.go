package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/triage"
)

func TestRouteAfterTriage(t *testing.T) {
	escalated := stage.New("triage", &triage.Output{RequiresEscalation: true}, 0.9, "")
	clean := stage.New("triage", &triage.Output{}, 0.9, "")
	failed := stage.NewError[triage.Output]("triage", "boom")

	tests := []struct {
		name  string
		state *State
		want  string
	}{
		{"escalation goes to human review edge", &State{TriageOutput: escalated}, routeEscalate},
		{"failure goes to error node", &State{TriageOutput: failed, Error: "boom"}, StepError},
		{"normal flow continues to knowledge", &State{TriageOutput: clean}, StepKnowledge},
		{"missing output continues to knowledge", &State{}, StepKnowledge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteAfterTriage(tt.state))
		})
	}
}

func TestRouteAfterDecision(t *testing.T) {
	approvalRequired := stage.New("decision", &decision.Output{RequiresHumanApproval: true}, 0.8, "")
	clean := stage.New("decision", &decision.Output{}, 0.9, "")
	reviewFlagged := stage.New("decision", &decision.Output{}, 0.9, "")
	reviewFlagged.WithReview("risk flags present")

	tests := []struct {
		name  string
		state *State
		want  string
	}{
		{"explicit human decision flag", &State{HumanDecisionRequired: true}, StepHumanReview},
		{"stage review flag", &State{DecisionOutput: reviewFlagged}, StepHumanReview},
		{"approval required in result", &State{DecisionOutput: approvalRequired}, StepHumanReview},
		{"clean decision goes to action", &State{DecisionOutput: clean}, StepAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteAfterDecision(tt.state))
		})
	}
}

func TestRouteAfterHumanReview(t *testing.T) {
	tests := []struct {
		name     string
		decision *stage.HumanDecision
		want     string
	}{
		{"no decision stays suspended", nil, routeWait},
		{"approve continues to action", &stage.HumanDecision{Action: stage.HumanApprove}, StepAction},
		{"modify continues to action", &stage.HumanDecision{Action: stage.HumanModify}, StepAction},
		{"manual completes without action", &stage.HumanDecision{Action: stage.HumanManual}, StepComplete},
		{"cancel routes to cancellation", &stage.HumanDecision{Action: stage.HumanCancel}, routeCancel},
		{"unknown action stays suspended", &stage.HumanDecision{Action: "shrug"}, routeWait},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteAfterHumanReview(&State{HumanDecision: tt.decision}))
		})
	}
}
