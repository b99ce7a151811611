package events

import "time"

// Workflow lifecycle event types.
const (
	TypeTicketReceived    = "TICKET_RECEIVED"
	TypeReviewRequired    = "REVIEW_REQUIRED"
	TypeWorkflowCompleted = "WORKFLOW_COMPLETED"
	TypeWorkflowFailed    = "WORKFLOW_FAILED"
	TypeWorkflowCancelled = "WORKFLOW_CANCELLED"
	TypeSafetyViolation   = "SAFETY_VIOLATION"
)

func NewTicketReceived(ticketID, traceID string) Event {
	return BaseEvent{
		Type: TypeTicketReceived,
		Data: map[string]interface{}{
			"ticket_id": ticketID,
			"trace_id":  traceID,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewReviewRequired is emitted when a workflow pauses at the human checkpoint.
// This is what the operator notification feed fans out.
func NewReviewRequired(ticketID, recommendedAction string, confidence float64, riskFlags []string) Event {
	return BaseEvent{
		Type: TypeReviewRequired,
		Data: map[string]interface{}{
			"ticket_id":          ticketID,
			"recommended_action": recommendedAction,
			"confidence":         confidence,
			"risk_flags":         riskFlags,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewWorkflowCompleted(ticketID string, durationMs int64) Event {
	return BaseEvent{
		Type: TypeWorkflowCompleted,
		Data: map[string]interface{}{
			"ticket_id":   ticketID,
			"duration_ms": durationMs,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewWorkflowFailed(ticketID, stage, reason string) Event {
	return BaseEvent{
		Type: TypeWorkflowFailed,
		Data: map[string]interface{}{
			"ticket_id": ticketID,
			"stage":     stage,
			"reason":    reason,
		},
		OccurredAt: time.Now().UTC(),
	}
}

func NewWorkflowCancelled(ticketID, operatorID string) Event {
	return BaseEvent{
		Type: TypeWorkflowCancelled,
		Data: map[string]interface{}{
			"ticket_id":   ticketID,
			"operator_id": operatorID,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewSafetyViolation is distinct from WorkflowFailed on purpose: operators must
// be able to tell "something broke" apart from "something tried to bypass the
// approval gate". Subscribers should alert on this one.
func NewSafetyViolation(ticketID, detail string) Event {
	return BaseEvent{
		Type: TypeSafetyViolation,
		Data: map[string]interface{}{
			"ticket_id": ticketID,
			"detail":    detail,
		},
		OccurredAt: time.Now().UTC(),
	}
}
