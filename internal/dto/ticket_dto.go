package dto

import "time"

type SubmitTicketRequest struct {
	Subject    string            `json:"subject" validate:"required"`
	Body       string            `json:"body" validate:"required"`
	Channel    string            `json:"channel" validate:"omitempty,oneof=email chat web api"`
	CustomerID string            `json:"customer_id"`
	Severity   string            `json:"severity" validate:"omitempty,oneof=P1 P2 P3 P4"`
	Metadata   map[string]string `json:"metadata"`
}

type ListTicketsQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=pending running paused_for_human completed failed cancelled"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type SubmitTicketResponse struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

type TicketStatusResponse struct {
	TicketID              string     `json:"ticket_id"`
	Subject               string     `json:"subject"`
	Status                string     `json:"status"`
	CurrentStep           string     `json:"current_step"`
	HumanDecisionRequired bool       `json:"human_decision_required"`
	ReceivedAt            time.Time  `json:"received_at"`
	CompletedAt           *time.Time `json:"completed_at"`
	Error                 string     `json:"error,omitempty"`
}

// ProcessTicketMessage is the internal queue payload that triggers a
// workflow run for an accepted ticket.
type ProcessTicketMessage struct {
	TicketID string `json:"ticket_id"`
}

type HumanDecisionRequest struct {
	Action          string                 `json:"action" validate:"required,oneof=approve modify manual cancel"`
	OperatorID      string                 `json:"operator_id" validate:"required"`
	ModifiedPayload map[string]interface{} `json:"modified_payload"`
	Notes           string                 `json:"notes"`
}

type HumanDecisionResponse struct {
	TicketID string `json:"ticket_id"`
	Status   string `json:"status"`
}

// PendingReviewResponse is the projection an operator sees before deciding.
type PendingReviewResponse struct {
	TicketID          string    `json:"ticket_id"`
	Subject           string    `json:"subject"`
	RecommendedAction string    `json:"recommended_action"`
	Confidence        float64   `json:"confidence"`
	RiskFlags         []string  `json:"risk_flags"`
	Rationale         string    `json:"rationale"`
	Category          string    `json:"category"`
	Severity          string    `json:"severity"`
	Citations         []string  `json:"citations"`
	PausedSince       time.Time `json:"paused_since"`
}
