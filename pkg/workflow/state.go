// Package workflow implements the ticket processing state machine: typed
// state, conditional routing, a durable human-review checkpoint and
// pause/resume semantics. The state is the source of truth; every stage
// reads from it and writes its output back into it.
package workflow

import (
	"time"

	"ai-ops-copilot-be/pkg/action"
	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/monitoring"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
	"ai-ops-copilot-be/pkg/triage"
)

// Workflow statuses.
const (
	StatusPending        = "pending"
	StatusRunning        = "running"
	StatusPausedForHuman = "paused_for_human"
	StatusCompleted      = "completed"
	StatusFailed         = "failed"
)

// Step names used as current_step values and routing targets.
const (
	StepStart       = "start"
	StepTriage      = "triage"
	StepKnowledge   = "knowledge"
	StepDecision    = "decision"
	StepAction      = "action"
	StepHumanReview = "human_review"
	StepMonitoring  = "monitoring"
	StepComplete    = "complete"
	StepError       = "error"

	// routeEscalate and routeWait are edge labels, not steps.
	routeEscalate = "escalate"
	routeCancel   = "cancel"
	routeWait     = "wait"
)

// State is the single record threaded through every stage of one ticket's
// workflow. Identity fields never change after creation.
type State struct {
	TicketID  string        `json:"ticket_id"`
	Ticket    ticket.Ticket `json:"ticket_data"`
	TraceID   string        `json:"trace_id"`
	StartedAt time.Time     `json:"started_at"`

	Status      string     `json:"status"`
	CurrentStep string     `json:"current_step"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	TriageOutput     *stage.Output[triage.Output]     `json:"triage_output,omitempty"`
	KnowledgeOutput  *stage.Output[knowledge.Result]  `json:"knowledge_output,omitempty"`
	DecisionOutput   *stage.Output[decision.Output]   `json:"decision_output,omitempty"`
	ActionOutput     *stage.Output[action.Output]     `json:"action_output,omitempty"`
	MonitoringOutput *stage.Output[monitoring.Output] `json:"monitoring_output,omitempty"`

	RetrievedDocuments []knowledge.RetrievedDocument `json:"retrieved_documents,omitempty"`

	HumanDecisionRequired bool                 `json:"human_decision_required"`
	HumanDecision         *stage.HumanDecision `json:"human_decision,omitempty"`
	HumanApprovalStatus   string               `json:"human_approval_status,omitempty"`

	Error     string `json:"error,omitempty"`
	ErrorStep string `json:"error_step,omitempty"`
}

// NewState creates the initial state for a fresh ticket.
func NewState(t ticket.Ticket, traceID string) *State {
	now := time.Now().UTC()
	return &State{
		TicketID:    t.TicketID,
		Ticket:      t,
		TraceID:     traceID,
		StartedAt:   now,
		Status:      StatusPending,
		CurrentStep: StepStart,
		UpdatedAt:   now,
	}
}

func (s *State) touch(step string) {
	s.CurrentStep = step
	s.UpdatedAt = time.Now().UTC()
}

func (s *State) markCompleted() {
	now := time.Now().UTC()
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.touch(StepComplete)
}

func (s *State) markFailed(step, message string) {
	s.Status = StatusFailed
	s.Error = message
	s.ErrorStep = step
	s.touch(StepError)
}

// DecisionRiskFlagCount is used by monitoring and quality sampling.
func (s *State) DecisionRiskFlagCount() int {
	if s.DecisionOutput == nil || s.DecisionOutput.Result == nil {
		return 0
	}
	return len(s.DecisionOutput.Result.RiskFlags)
}
