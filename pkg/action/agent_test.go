package action

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
)

func sampleTicket() ticket.Ticket {
	return ticket.Ticket{
		TicketID: "tkt-1",
		Subject:  "Validation rejects valid payload",
		Severity: "P3",
	}
}

func sampleDocs() []knowledge.RetrievedDocument {
	return []knowledge.RetrievedDocument{
		{Filename: "validation.md", Content: "Body validation runs before middleware.", Score: 0.8, Citation: "[validation.md] (chunk 0, score: 0.80)"},
		{Filename: "validation.md", Content: "Schemas are strict by default.", Score: 0.6, Citation: "[validation.md] (chunk 1, score: 0.60)"},
		{Filename: "faq.md", Content: "See the FAQ.", Score: 0.5, Citation: "[faq.md] (chunk 0, score: 0.50)"},
	}
}

func TestExecuteWithoutApprovalFails(t *testing.T) {
	agent := NewAgent()

	tests := []struct {
		name string
		in   Input
	}{
		{"no human decision", Input{Ticket: sampleTicket()}},
		{"manual decision", Input{Ticket: sampleTicket(), HumanDecision: &stage.HumanDecision{Action: stage.HumanManual}}},
		{"cancel decision", Input{Ticket: sampleTicket(), HumanDecision: &stage.HumanDecision{Action: stage.HumanCancel}}},
		{"unapproved status", Input{Ticket: sampleTicket(), ApprovalStatus: "pending"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := agent.Execute(tt.in)
			require.Error(t, err)
			assert.True(t, IsSafetyViolation(err))
			assert.Contains(t, err.Error(), "tkt-1")
			assert.Nil(t, out)
		})
	}
}

func TestExecuteApprovedDraftResponse(t *testing.T) {
	agent := NewAgent()

	out, err := agent.Execute(Input{
		Ticket:              sampleTicket(),
		Decision:            &decision.Output{RecommendedAction: decision.ActionAutoRespond},
		HumanDecision:       &stage.HumanDecision{Action: stage.HumanApprove, OperatorID: "op-1"},
		Documents:           sampleDocs(),
		KnowledgeConfidence: 0.8,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	assert.True(t, out.Success)
	assert.Equal(t, TypeDraftResponse, out.Result.ActionType)
	assert.True(t, out.Result.IsDraft)
	assert.Equal(t, decision.ActionAutoRespond, out.Result.ExecutedAction)
	assert.Contains(t, out.Result.Content, DraftMarker)
	assert.Contains(t, out.Result.Content, "[validation.md] (chunk 0, score: 0.80)")
	assert.Equal(t, []string{"validation.md", "faq.md"}, out.Result.GroundingSources)
	assert.NotEmpty(t, out.Result.Disclaimers)
}

func TestExecuteApprovalStatusAloneSuffices(t *testing.T) {
	agent := NewAgent()

	out, err := agent.Execute(Input{
		Ticket:         sampleTicket(),
		Decision:       &decision.Output{RecommendedAction: decision.ActionAutoRespond},
		ApprovalStatus: stage.ApprovalStatusApproved,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)
	assert.Equal(t, TypeDraftResponse, out.Result.ActionType)
	assert.Contains(t, out.Result.Content, "could not find documentation")
}

func TestExecuteEscalateBuildsChecklist(t *testing.T) {
	agent := NewAgent()

	out, err := agent.Execute(Input{
		Ticket:        sampleTicket(),
		Decision:      &decision.Output{RecommendedAction: decision.ActionEscalate},
		HumanDecision: &stage.HumanDecision{Action: stage.HumanApprove},
		Documents:     sampleDocs(),
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	assert.Equal(t, TypeEngineerChecklist, out.Result.ActionType)
	assert.Contains(t, out.Result.Content, ChecklistMarker)
	assert.Contains(t, out.Result.Content, "Escalation checklist for ticket tkt-1")
	assert.Contains(t, out.Result.Content, "- validation.md")
}

func TestExecuteModifyOverridesRecommendedAction(t *testing.T) {
	agent := NewAgent()

	out, err := agent.Execute(Input{
		Ticket:   sampleTicket(),
		Decision: &decision.Output{RecommendedAction: decision.ActionAutoRespond},
		HumanDecision: &stage.HumanDecision{
			Action:          stage.HumanModify,
			ModifiedPayload: map[string]any{"recommended_action": decision.ActionEscalate},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	assert.Equal(t, TypeEngineerChecklist, out.Result.ActionType)
	assert.Equal(t, decision.ActionEscalate, out.Result.ExecutedAction)
}

func TestActionConfidence(t *testing.T) {
	assert.Equal(t, 0.2, actionConfidence(0.0, 0))
	assert.Equal(t, 0.78, actionConfidence(0.8, 3))
	assert.Equal(t, 0.9, actionConfidence(1.0, 10))
	assert.Equal(t, 0.68, actionConfidence(0.8, 2))
}

func TestGroundingSourcesDedupesAndCaps(t *testing.T) {
	docs := []knowledge.RetrievedDocument{
		{Filename: "a.md"}, {Filename: "a.md"}, {Filename: "b.md"},
		{Filename: "c.md"}, {Filename: "d.md"},
	}
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, groundingSources(docs))
	assert.Equal(t, []string{}, groundingSources(nil))
}
