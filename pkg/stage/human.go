package stage

import "time"

// Human decision actions taken at the review checkpoint.
const (
	HumanApprove = "approve"
	HumanModify  = "modify"
	HumanManual  = "manual"
	HumanCancel  = "cancel"
)

// ApprovalStatusApproved is the approval-status value the action stage
// accepts as an alternative to an explicit approve decision.
const ApprovalStatusApproved = "approved"

// HumanDecision is the operator's verdict supplied while a workflow is
// paused at the review checkpoint.
type HumanDecision struct {
	Action          string         `json:"action"`
	ModifiedPayload map[string]any `json:"modified_payload,omitempty"`
	OperatorID      string         `json:"operator_id"`
	Notes           string         `json:"notes,omitempty"`
	DecidedAt       time.Time      `json:"decided_at"`
}

// Approved reports whether this decision authorizes the action stage.
func (d *HumanDecision) Approved() bool {
	return d != nil && (d.Action == HumanApprove || d.Action == HumanModify)
}
