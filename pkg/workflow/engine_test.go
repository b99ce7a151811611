package workflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ops-copilot-be/pkg/action"
	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/embedding"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/llm/mock"
	"ai-ops-copilot-be/pkg/monitoring"
	"ai-ops-copilot-be/pkg/quality"
	"ai-ops-copilot-be/pkg/rag/retriever"
	"ai-ops-copilot-be/pkg/rag/store"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
	"ai-ops-copilot-be/pkg/triage"
)

const cleanClassification = `{
	"ticket_id": "ignored",
	"primary_category": "validation",
	"issue_type": "bug",
	"severity": "P3",
	"severity_justification": "single user impact",
	"confidence": 0.92,
	"confidence_factors": {
		"category_clarity": "clear",
		"symptom_specificity": "specific",
		"technical_detail_level": "high"
	},
	"requires_escalation": false,
	"escalation_reasons": [],
	"keywords": ["validation", "payload"],
	"one_line_summary": "Request body validation rejects a documented payload",
	"reasoning": {
		"category_rationale": "Error points at body validation",
		"facts_from_ticket": ["422 returned"],
		"inferences_made": []
	}
}`

type spyNotifier struct {
	paused    int
	completed int
	failed    int
	cancelled int
	safety    int
}

func (n *spyNotifier) WorkflowPaused(*State) { n.paused++ }

func (n *spyNotifier) WorkflowCompleted(*State) { n.completed++ }

func (n *spyNotifier) WorkflowFailed(*State) { n.failed++ }

func (n *spyNotifier) WorkflowCancelled(*State) { n.cancelled++ }

func (n *spyNotifier) SafetyViolation(*State, error) { n.safety++ }

type engineFixture struct {
	engine      *Engine
	checkpoints CheckpointStore
	notifier    *spyNotifier
	provider    *mock.Provider
	recorder    *quality.MemoryRecorder
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	docsDir := t.TempDir()
	docPath := filepath.Join(docsDir, "validation_errors.md")
	content := "Request body validation rejects a payload when the schema marks a field required. " +
		"Check the documented payload against the schema and loosen strict mode if needed."
	require.NoError(t, os.WriteFile(docPath, []byte(content), 0o644))

	vectorStore := store.NewMemoryStore(embedding.NewLocalProvider())
	ragEngine, err := retriever.NewEngine(docsDir, 200, 40, vectorStore)
	require.NoError(t, err)
	_, err = ragEngine.Ingest(context.Background(), "default")
	require.NoError(t, err)

	provider := &mock.Provider{FixedJSON: cleanClassification}
	notifier := &spyNotifier{}
	checkpoints := NewMemoryCheckpointStore()
	recorder := quality.NewMemoryRecorder(10)

	engine := NewEngine(
		triage.NewAgent(provider),
		knowledge.NewAgent(ragEngine, 5, 0.0, "default"),
		decision.NewAgent(false, 0.85),
		action.NewAgent(),
		monitoring.NewAgent(recorder),
		checkpoints,
		notifier,
	)

	return &engineFixture{
		engine:      engine,
		checkpoints: checkpoints,
		notifier:    notifier,
		provider:    provider,
		recorder:    recorder,
	}
}

func cleanTicket() ticket.Ticket {
	return ticket.Ticket{
		TicketID: "tkt-1",
		Subject:  "Validation rejects valid payload",
		Body:     "Sending the documented request body returns a 422.",
		Channel:  "api",
	}
}

func TestRunPausesForHumanReview(t *testing.T) {
	f := newEngineFixture(t)

	state, err := f.engine.Run(context.Background(), cleanTicket())
	require.NoError(t, err)

	assert.Equal(t, StatusPausedForHuman, state.Status)
	assert.Equal(t, StepHumanReview, state.CurrentStep)
	assert.True(t, state.HumanDecisionRequired)
	assert.Nil(t, state.ActionOutput)

	require.NotNil(t, state.TriageOutput)
	assert.Equal(t, "tkt-1", state.TriageOutput.Result.TicketID)
	require.NotNil(t, state.KnowledgeOutput)
	require.NotNil(t, state.DecisionOutput)

	assert.Equal(t, 1, f.notifier.paused)

	saved, err := f.checkpoints.Load(context.Background(), "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, StatusPausedForHuman, saved.Status)
}

func TestResumeApproveCompletesWithDraft(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Run(context.Background(), cleanTicket())
	require.NoError(t, err)

	state, err := f.engine.Resume(context.Background(), "tkt-1", stage.HumanDecision{
		Action:     stage.HumanApprove,
		OperatorID: "op-1",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, state.Status)
	require.NotNil(t, state.CompletedAt)
	assert.Equal(t, stage.ApprovalStatusApproved, state.HumanApprovalStatus)
	assert.False(t, state.HumanDecision.DecidedAt.IsZero())

	require.NotNil(t, state.ActionOutput)
	require.NotNil(t, state.ActionOutput.Result)
	assert.Contains(t, state.ActionOutput.Result.Content, action.DraftMarker)
	assert.True(t, state.ActionOutput.Result.IsDraft)

	require.NotNil(t, state.MonitoringOutput)
	assert.Equal(t, 1, f.notifier.completed)

	samples := f.recorder.Samples()
	require.Len(t, samples, 1)
	assert.Equal(t, "tkt-1", samples[0].TicketID)
	assert.True(t, samples[0].HumanReviewed)
}

func TestEscalationSkipsRetrieval(t *testing.T) {
	f := newEngineFixture(t)

	state, err := f.engine.Run(context.Background(), ticket.Ticket{
		TicketID: "tkt-2",
		Subject:  "Production outage",
		Body:     "Every request returns a 500 error.",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPausedForHuman, state.Status)
	assert.True(t, state.HumanDecisionRequired)
	assert.Nil(t, state.KnowledgeOutput)
	require.NotNil(t, state.TriageOutput)
	assert.True(t, state.TriageOutput.Result.RequiresEscalation)
}

func TestResumeManualCompletesWithoutAction(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Run(context.Background(), cleanTicket())
	require.NoError(t, err)

	state, err := f.engine.Resume(context.Background(), "tkt-1", stage.HumanDecision{
		Action:     stage.HumanManual,
		OperatorID: "op-1",
		Notes:      "taking this one myself",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Nil(t, state.ActionOutput)
	assert.Equal(t, 1, f.notifier.completed)
}

func TestCancelIsTerminalAndIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Run(ctx, cleanTicket())
	require.NoError(t, err)

	state, err := f.engine.Cancel(ctx, "tkt-1", "op-1", "duplicate ticket")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, state.Status)
	require.NotNil(t, state.CompletedAt)
	assert.Equal(t, 1, f.notifier.cancelled)

	again, err := f.engine.Cancel(ctx, "tkt-1", "op-1", "still duplicate")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Equal(t, 1, f.notifier.cancelled)

	_, err = f.engine.Resume(ctx, "tkt-1", stage.HumanDecision{Action: stage.HumanApprove, OperatorID: "op-1"})
	assert.ErrorIs(t, err, ErrNoPendingReview)
}

func TestResumeUnknownTicket(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Resume(context.Background(), "no-such-ticket", stage.HumanDecision{
		Action:     stage.HumanApprove,
		OperatorID: "op-1",
	})
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestResumeUnknownActionStaysPaused(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Run(ctx, cleanTicket())
	require.NoError(t, err)

	state, err := f.engine.Resume(ctx, "tkt-1", stage.HumanDecision{Action: "defer", OperatorID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusPausedForHuman, state.Status)

	state, err = f.engine.Resume(ctx, "tkt-1", stage.HumanDecision{Action: stage.HumanApprove, OperatorID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
}

func TestTriageFailureFailsWorkflow(t *testing.T) {
	f := newEngineFixture(t)
	f.provider.FixedJSON = "not json at all"

	state, err := f.engine.Run(context.Background(), cleanTicket())
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, StepTriage, state.ErrorStep)
	assert.NotEmpty(t, state.Error)
	assert.Equal(t, 1, f.notifier.failed)
}

func TestCheckpointSurvivesEngineRestart(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	_, err := f.engine.Run(ctx, cleanTicket())
	require.NoError(t, err)

	restarted := NewEngine(
		f.engine.triageAgent,
		f.engine.knowledgeAgent,
		f.engine.decisionAgent,
		f.engine.actionAgent,
		f.engine.monitoringAgent,
		f.checkpoints,
		f.notifier,
	)

	state, err := restarted.Resume(ctx, "tkt-1", stage.HumanDecision{
		Action:     stage.HumanApprove,
		OperatorID: "op-2",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
	require.NotNil(t, state.ActionOutput)
}
