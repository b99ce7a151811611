package workflow

import "ai-ops-copilot-be/pkg/stage"

// RouteAfterTriage picks the edge out of the triage node: escalation goes
// straight to human review, a failed triage goes to the error node, and the
// normal flow continues to knowledge retrieval.
func RouteAfterTriage(s *State) string {
	if s.TriageOutput != nil && s.TriageOutput.Result != nil && s.TriageOutput.Result.RequiresEscalation {
		return routeEscalate
	}
	if s.Error != "" || (s.TriageOutput != nil && !s.TriageOutput.Success) {
		return StepError
	}
	return StepKnowledge
}

// RouteAfterDecision sends the ticket to human review whenever approval is
// required, which is the common case.
func RouteAfterDecision(s *State) string {
	if s.HumanDecisionRequired {
		return StepHumanReview
	}
	if s.DecisionOutput != nil && s.DecisionOutput.RequiresHumanReview {
		return StepHumanReview
	}
	if s.DecisionOutput != nil && s.DecisionOutput.Result != nil && s.DecisionOutput.Result.RequiresHumanApproval {
		return StepHumanReview
	}
	return StepAction
}

// RouteAfterHumanReview routes on the operator's verdict. With no decision
// recorded yet the workflow stays suspended.
func RouteAfterHumanReview(s *State) string {
	if s.HumanDecision == nil {
		return routeWait
	}

	switch s.HumanDecision.Action {
	case stage.HumanApprove, stage.HumanModify:
		return StepAction
	case stage.HumanManual:
		return StepComplete
	case stage.HumanCancel:
		return routeCancel
	default:
		return routeWait
	}
}
