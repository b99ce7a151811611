package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai-ops-copilot-be/pkg/action"
	"ai-ops-copilot-be/pkg/decision"
	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/monitoring"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/ticket"
	"ai-ops-copilot-be/pkg/triage"
)

// StatusCancelled is the terminal status for operator-cancelled workflows,
// kept distinct from failed so cancellations never show up as errors.
const StatusCancelled = "cancelled"

// Notifier receives workflow lifecycle callbacks. The service layer uses it
// to publish events and push operator notifications.
type Notifier interface {
	WorkflowPaused(state *State)
	WorkflowCompleted(state *State)
	WorkflowFailed(state *State)
	WorkflowCancelled(state *State)
	SafetyViolation(state *State, err error)
}

// NopNotifier ignores every callback.
type NopNotifier struct{}

func (NopNotifier) WorkflowPaused(*State) {}

func (NopNotifier) WorkflowCompleted(*State) {}

func (NopNotifier) WorkflowFailed(*State) {}

func (NopNotifier) WorkflowCancelled(*State) {}

func (NopNotifier) SafetyViolation(*State, error) {}

type nodeFunc func(ctx context.Context, s *State) (string, error)

// Engine executes the ticket workflow graph. Each node writes its stage
// output into the state and the routing functions pick the next edge; a
// stage failure becomes a failed output record, never a panic through the
// graph.
type Engine struct {
	triageAgent     *triage.Agent
	knowledgeAgent  *knowledge.Agent
	decisionAgent   *decision.Agent
	actionAgent     *action.Agent
	monitoringAgent *monitoring.Agent

	checkpoints CheckpointStore
	notifier    Notifier

	nodes map[string]nodeFunc

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewEngine(
	triageAgent *triage.Agent,
	knowledgeAgent *knowledge.Agent,
	decisionAgent *decision.Agent,
	actionAgent *action.Agent,
	monitoringAgent *monitoring.Agent,
	checkpoints CheckpointStore,
	notifier Notifier,
) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}

	e := &Engine{
		triageAgent:     triageAgent,
		knowledgeAgent:  knowledgeAgent,
		decisionAgent:   decisionAgent,
		actionAgent:     actionAgent,
		monitoringAgent: monitoringAgent,
		checkpoints:     checkpoints,
		notifier:        notifier,
		inflight:        make(map[string]*sync.Mutex),
	}

	e.nodes = map[string]nodeFunc{
		StepTriage:      e.triageNode,
		StepKnowledge:   e.knowledgeNode,
		StepDecision:    e.decisionNode,
		StepAction:      e.actionNode,
		StepHumanReview: e.humanReviewNode,
		StepMonitoring:  e.monitoringNode,
		StepComplete:    e.completeNode,
		StepError:       e.errorNode,
	}

	return e
}

// ticketLock serializes execution per ticket so a Resume can never race a
// still-running graph for the same ticket.
func (e *Engine) ticketLock(ticketID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.inflight[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		e.inflight[ticketID] = lock
	}
	return lock
}

// Run starts a fresh workflow for a ticket and executes until it reaches a
// terminal state or suspends at the human-review checkpoint.
func (e *Engine) Run(ctx context.Context, t ticket.Ticket) (*State, error) {
	lock := e.ticketLock(t.TicketID)
	lock.Lock()
	defer lock.Unlock()

	state := NewState(t, uuid.NewString())
	state.Status = StatusRunning

	return e.execute(ctx, state, StepTriage)
}

// Resume re-enters a suspended workflow with the operator's decision and
// continues along the human-review edges.
func (e *Engine) Resume(ctx context.Context, ticketID string, hd stage.HumanDecision) (*State, error) {
	lock := e.ticketLock(ticketID)
	lock.Lock()
	defer lock.Unlock()

	state, err := e.checkpoints.Load(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if state.Status != StatusPausedForHuman {
		if hd.Action == stage.HumanCancel && state.Status == StatusCancelled {
			// Cancelling twice is a no-op.
			return state, nil
		}
		return nil, fmt.Errorf("%w: ticket %s is %s", ErrNoPendingReview, ticketID, state.Status)
	}

	if hd.DecidedAt.IsZero() {
		hd.DecidedAt = time.Now().UTC()
	}
	state.HumanDecision = &hd
	state.Status = StatusRunning

	next := RouteAfterHumanReview(state)
	switch next {
	case routeWait:
		state.Status = StatusPausedForHuman
		if err := e.checkpoints.Save(ctx, state); err != nil {
			return nil, err
		}
		return state, nil
	case routeCancel:
		return e.cancelState(ctx, state)
	case StepAction:
		state.HumanApprovalStatus = stage.ApprovalStatusApproved
	}

	return e.execute(ctx, state, next)
}

// Cancel terminates a paused workflow. Cancelling an already-cancelled
// ticket succeeds without side effects.
func (e *Engine) Cancel(ctx context.Context, ticketID, operatorID, notes string) (*State, error) {
	return e.Resume(ctx, ticketID, stage.HumanDecision{
		Action:     stage.HumanCancel,
		OperatorID: operatorID,
		Notes:      notes,
		DecidedAt:  time.Now().UTC(),
	})
}

// Status returns the checkpointed state for a ticket.
func (e *Engine) Status(ctx context.Context, ticketID string) (*State, error) {
	return e.checkpoints.Load(ctx, ticketID)
}

// execute drives the node map from the given step until the graph ends or
// suspends. State is checkpointed at every node boundary.
func (e *Engine) execute(ctx context.Context, state *State, step string) (*State, error) {
	for {
		node, ok := e.nodes[step]
		if !ok {
			return nil, fmt.Errorf("unknown workflow step: %s", step)
		}

		state.touch(step)

		next, err := node(ctx, state)
		if err != nil {
			// Node-level errors are engine failures (safety violations,
			// checkpoint store unreachable), not stage failures. Persist
			// what we have before surfacing the error.
			_ = e.checkpoints.Save(ctx, state)
			return state, err
		}

		if err := e.checkpoints.Save(ctx, state); err != nil {
			return state, fmt.Errorf("save checkpoint: %w", err)
		}

		switch next {
		case routeWait:
			e.notifier.WorkflowPaused(state)
			return state, nil
		case routeCancel:
			return e.cancelState(ctx, state)
		case routeEscalate:
			state.HumanDecisionRequired = true
			step = StepHumanReview
		case "":
			return state, nil
		default:
			step = next
		}
	}
}

func (e *Engine) cancelState(ctx context.Context, state *State) (*State, error) {
	now := time.Now().UTC()
	state.Status = StatusCancelled
	state.CompletedAt = &now
	state.UpdatedAt = now

	if err := e.checkpoints.Save(ctx, state); err != nil {
		return state, err
	}
	e.notifier.WorkflowCancelled(state)
	return state, nil
}

func (e *Engine) triageNode(ctx context.Context, s *State) (string, error) {
	s.TriageOutput = e.triageAgent.Classify(ctx, s.Ticket)
	if !s.TriageOutput.Success {
		s.Error = s.TriageOutput.Error
		s.ErrorStep = StepTriage
	}
	return RouteAfterTriage(s), nil
}

func (e *Engine) knowledgeNode(ctx context.Context, s *State) (string, error) {
	var triageResult *triage.Output
	if s.TriageOutput != nil {
		triageResult = s.TriageOutput.Result
	}

	// Retrieval failure is non-fatal; the decision stage sees empty
	// results and flags the risk.
	s.KnowledgeOutput = e.knowledgeAgent.Retrieve(ctx, s.Ticket, triageResult)
	if s.KnowledgeOutput.Result != nil {
		s.RetrievedDocuments = s.KnowledgeOutput.Result.Documents
	}
	return StepDecision, nil
}

func (e *Engine) decisionNode(_ context.Context, s *State) (string, error) {
	s.DecisionOutput = e.decisionAgent.Evaluate(decision.Input{
		Triage:    s.TriageOutput,
		Knowledge: s.KnowledgeOutput,
	})

	if s.DecisionOutput.Result != nil && s.DecisionOutput.Result.RequiresHumanApproval {
		s.HumanDecisionRequired = true
	}
	return RouteAfterDecision(s), nil
}

func (e *Engine) humanReviewNode(ctx context.Context, s *State) (string, error) {
	next := RouteAfterHumanReview(s)
	if next == routeWait {
		s.Status = StatusPausedForHuman
		return routeWait, nil
	}
	if next == StepAction {
		s.HumanApprovalStatus = stage.ApprovalStatusApproved
	}
	return next, nil
}

func (e *Engine) actionNode(_ context.Context, s *State) (string, error) {
	var decisionResult *decision.Output
	knowledgeConfidence := 0.0
	if s.DecisionOutput != nil {
		decisionResult = s.DecisionOutput.Result
	}
	if s.KnowledgeOutput != nil {
		knowledgeConfidence = s.KnowledgeOutput.Confidence
	}

	out, err := e.actionAgent.Execute(action.Input{
		Ticket:              s.Ticket,
		Decision:            decisionResult,
		HumanDecision:       s.HumanDecision,
		ApprovalStatus:      s.HumanApprovalStatus,
		Documents:           s.RetrievedDocuments,
		KnowledgeConfidence: knowledgeConfidence,
	})
	if err != nil {
		if action.IsSafetyViolation(err) {
			s.markFailed(StepAction, err.Error())
			e.notifier.SafetyViolation(s, err)
			return "", err
		}
		// Ordinary action failures are recorded and the workflow still
		// completes.
		s.ActionOutput = stage.NewError[action.Output]("action", err.Error())
		return StepMonitoring, nil
	}

	s.ActionOutput = out
	return StepMonitoring, nil
}

func (e *Engine) monitoringNode(_ context.Context, s *State) (string, error) {
	var observations []monitoring.StageObservation

	record := func(name string, confidence float64, success bool, durationMs int64) {
		observations = append(observations, monitoring.StageObservation{
			Stage:      name,
			Success:    success,
			Confidence: confidence,
			DurationMs: durationMs,
		})
	}

	if s.TriageOutput != nil {
		record(StepTriage, s.TriageOutput.Confidence, s.TriageOutput.Success, s.TriageOutput.ProcessingTimeMs)
	}
	if s.KnowledgeOutput != nil {
		record(StepKnowledge, s.KnowledgeOutput.Confidence, s.KnowledgeOutput.Success, s.KnowledgeOutput.ProcessingTimeMs)
	}
	if s.DecisionOutput != nil {
		record(StepDecision, s.DecisionOutput.Confidence, s.DecisionOutput.Success, s.DecisionOutput.ProcessingTimeMs)
	}
	if s.ActionOutput != nil {
		record(StepAction, s.ActionOutput.Confidence, s.ActionOutput.Success, s.ActionOutput.ProcessingTimeMs)
	}

	s.MonitoringOutput = e.monitoringAgent.Observe(
		s.TicketID,
		StatusCompleted,
		observations,
		s.DecisionRiskFlagCount(),
		s.HumanDecision != nil,
	)
	return StepComplete, nil
}

func (e *Engine) completeNode(_ context.Context, s *State) (string, error) {
	s.markCompleted()
	e.notifier.WorkflowCompleted(s)
	return "", nil
}

func (e *Engine) errorNode(_ context.Context, s *State) (string, error) {
	message := s.Error
	if message == "" {
		message = "workflow failed"
	}
	s.markFailed(s.ErrorStep, message)
	e.notifier.WorkflowFailed(s)
	return "", nil
}
