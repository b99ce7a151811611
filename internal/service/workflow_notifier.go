package service

import (
	"context"

	"ai-ops-copilot-be/internal/pkg/logger"
	"ai-ops-copilot-be/pkg/events"
	pktNats "ai-ops-copilot-be/pkg/nats"
	"ai-ops-copilot-be/pkg/workflow"
)

// EventDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type EventDelivery interface {
	Broadcast(event events.Event)
}

// WorkflowNotifier bridges workflow lifecycle transitions to the event bus
// and the operator console feed.
type WorkflowNotifier struct {
	eventPublisher *pktNats.Publisher
	delivery       EventDelivery
	logger         logger.ILogger
}

func NewWorkflowNotifier(eventPublisher *pktNats.Publisher, delivery EventDelivery, log logger.ILogger) *WorkflowNotifier {
	return &WorkflowNotifier{
		eventPublisher: eventPublisher,
		delivery:       delivery,
		logger:         log,
	}
}

var _ workflow.Notifier = &WorkflowNotifier{}

func (n *WorkflowNotifier) WorkflowPaused(state *workflow.State) {
	action := ""
	confidence := 0.0
	var riskFlags []string
	if state.DecisionOutput != nil && state.DecisionOutput.Result != nil {
		d := state.DecisionOutput.Result
		action = d.RecommendedAction
		confidence = d.Confidence
		riskFlags = d.RiskFlags
	}

	n.logger.Info("WorkflowNotifier", "Workflow paused for review", map[string]interface{}{
		"ticket_id":          state.TicketID,
		"recommended_action": action,
		"risk_flags":         riskFlags,
	})
	n.emit(events.NewReviewRequired(state.TicketID, action, confidence, riskFlags))
}

func (n *WorkflowNotifier) WorkflowCompleted(state *workflow.State) {
	var durationMs int64
	if state.CompletedAt != nil {
		durationMs = state.CompletedAt.Sub(state.StartedAt).Milliseconds()
	}

	n.logger.Info("WorkflowNotifier", "Workflow completed", map[string]interface{}{
		"ticket_id":   state.TicketID,
		"duration_ms": durationMs,
	})
	n.emit(events.NewWorkflowCompleted(state.TicketID, durationMs))
}

func (n *WorkflowNotifier) WorkflowFailed(state *workflow.State) {
	n.logger.Error("WorkflowNotifier", "Workflow failed", map[string]interface{}{
		"ticket_id": state.TicketID,
		"step":      state.ErrorStep,
		"reason":    state.Error,
	})
	n.emit(events.NewWorkflowFailed(state.TicketID, state.ErrorStep, state.Error))
}

func (n *WorkflowNotifier) WorkflowCancelled(state *workflow.State) {
	operatorID := ""
	if state.HumanDecision != nil {
		operatorID = state.HumanDecision.OperatorID
	}

	n.logger.Info("WorkflowNotifier", "Workflow cancelled", map[string]interface{}{
		"ticket_id":   state.TicketID,
		"operator_id": operatorID,
	})
	n.emit(events.NewWorkflowCancelled(state.TicketID, operatorID))
}

func (n *WorkflowNotifier) SafetyViolation(state *workflow.State, err error) {
	n.logger.Error("WorkflowNotifier", "Safety violation blocked an action", map[string]interface{}{
		"ticket_id": state.TicketID,
		"detail":    err.Error(),
	})
	n.emit(events.NewSafetyViolation(state.TicketID, err.Error()))
}

func (n *WorkflowNotifier) emit(event events.Event) {
	if n.eventPublisher != nil {
		err := n.eventPublisher.Publish(context.Background(), event)
		if err == nil {
			// The notification service relays bus events to the console
			// feed; broadcasting here too would deliver them twice.
			return
		}
		n.logger.Warn("WorkflowNotifier", "Failed to publish event, falling back to direct delivery", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
	if n.delivery != nil {
		n.delivery.Broadcast(event)
	}
}
