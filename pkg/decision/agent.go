// Package decision synthesizes triage and retrieval signals into a
// recommended action. The rules are explicit and deterministic; no LLM call
// happens here, so every recommendation is auditable.
package decision

import (
	"fmt"
	"math"
	"strings"
	"time"

	"ai-ops-copilot-be/pkg/knowledge"
	"ai-ops-copilot-be/pkg/stage"
	"ai-ops-copilot-be/pkg/triage"
)

const stageType = "decision"

// Recommended actions.
const (
	ActionAutoRespond  = "auto_respond"
	ActionEscalate     = "escalate"
	ActionManualReview = "manual_review"
)

// Risk flag names.
const (
	FlagLowTriageConfidence    = "low_triage_confidence"
	FlagNoDocumentsRetrieved   = "no_documents_retrieved"
	FlagLowRetrievalConfidence = "low_retrieval_confidence"
	FlagHighSeverityTicket     = "high_severity_ticket"
	FlagLowRelevanceDocuments  = "low_relevance_documents"
)

// Output is the decision contract consumed by the action stage and shown to
// the reviewing operator.
type Output struct {
	RecommendedAction     string   `json:"recommended_action"`
	Confidence            float64  `json:"confidence"`
	RiskFlags             []string `json:"risk_flags"`
	RequiresHumanApproval bool     `json:"requires_human_approval"`
	Rationale             string   `json:"rationale"`
}

// Input gathers everything the decision rules evaluate.
type Input struct {
	Triage    *stage.Output[triage.Output]
	Knowledge *stage.Output[knowledge.Result]
}

// Agent applies the decision rules. AllowAutoApprove relaxes the mandatory
// approval gate for high-confidence auto_respond decisions; it is off by
// default and must be enabled deliberately through configuration.
type Agent struct {
	allowAutoApprove     bool
	autoApproveThreshold float64
}

func NewAgent(allowAutoApprove bool, autoApproveThreshold float64) *Agent {
	if autoApproveThreshold <= 0 {
		autoApproveThreshold = 0.85
	}
	return &Agent{
		allowAutoApprove:     allowAutoApprove,
		autoApproveThreshold: autoApproveThreshold,
	}
}

// Evaluate derives risk flags, picks the recommended action and scores the
// decision. It never fails; missing upstream outputs surface as risk flags.
func (a *Agent) Evaluate(in Input) *stage.Output[Output] {
	start := time.Now()

	triageConfidence := 0.0
	severity := ""
	if in.Triage != nil {
		triageConfidence = in.Triage.Confidence
		if in.Triage.Result != nil {
			severity = in.Triage.Result.Severity
		}
	}

	knowledgeConfidence := 0.0
	documentCount := 0
	avgDocScore := 0.0
	if in.Knowledge != nil {
		knowledgeConfidence = in.Knowledge.Confidence
		if in.Knowledge.Result != nil {
			documentCount = in.Knowledge.Result.DocumentCount
			avgDocScore = averageScore(in.Knowledge.Result.Documents)
		}
	}

	flags := deriveRiskFlags(triageConfidence, knowledgeConfidence, documentCount, avgDocScore, severity)
	action := selectAction(flags, triageConfidence, knowledgeConfidence, documentCount, severity)
	confidence := scoreConfidence(triageConfidence, knowledgeConfidence, len(flags))
	requiresApproval := a.requiresApproval(action, flags, confidence)

	result := &Output{
		RecommendedAction:     action,
		Confidence:            confidence,
		RiskFlags:             flags,
		RequiresHumanApproval: requiresApproval,
		Rationale:             buildRationale(action, flags, triageConfidence, knowledgeConfidence),
	}

	out := stage.New(stageType, result, confidence, result.Rationale)
	if requiresApproval {
		out.WithReview(reviewReason(action, flags))
	}
	out.ProcessingTimeMs = time.Since(start).Milliseconds()
	return out
}

func averageScore(docs []knowledge.RetrievedDocument) float64 {
	if len(docs) == 0 {
		return 0.0
	}
	var sum float64
	for _, d := range docs {
		sum += d.Score
	}
	return sum / float64(len(docs))
}

func deriveRiskFlags(triageConf, knowledgeConf float64, docCount int, avgDocScore float64, severity string) []string {
	flags := []string{}

	if triageConf < 0.6 {
		flags = append(flags, FlagLowTriageConfidence)
	}
	if docCount == 0 {
		flags = append(flags, FlagNoDocumentsRetrieved)
	} else if knowledgeConf < 0.3 {
		flags = append(flags, FlagLowRetrievalConfidence)
	}
	if isHighSeverity(severity) {
		flags = append(flags, FlagHighSeverityTicket)
	}
	if docCount > 0 && avgDocScore < 0.3 {
		flags = append(flags, FlagLowRelevanceDocuments)
	}

	return flags
}

func isHighSeverity(severity string) bool {
	switch strings.ToUpper(severity) {
	case "P1", "P2", "CRITICAL", "HIGH":
		return true
	}
	return false
}

// selectAction evaluates the rules in order; the first match wins and
// manual_review is the safe default.
func selectAction(flags []string, triageConf, knowledgeConf float64, docCount int, severity string) string {
	switch {
	case isHighSeverity(severity):
		return ActionEscalate
	case len(flags) >= 2:
		return ActionManualReview
	case docCount == 0:
		return ActionManualReview
	case triageConf < 0.6:
		return ActionManualReview
	case triageConf >= 0.7 && knowledgeConf >= 0.5:
		return ActionAutoRespond
	default:
		return ActionManualReview
	}
}

func scoreConfidence(triageConf, knowledgeConf float64, flagCount int) float64 {
	confidence := 0.4*triageConf + 0.4*knowledgeConf + 0.2 - 0.1*float64(flagCount)
	confidence = math.Max(0.0, math.Min(1.0, confidence))
	return math.Round(confidence*1000) / 1000
}

func (a *Agent) requiresApproval(action string, flags []string, confidence float64) bool {
	if len(flags) > 0 {
		return true
	}
	if confidence < a.autoApproveThreshold {
		return true
	}
	if action == ActionEscalate {
		return true
	}
	if a.allowAutoApprove && action == ActionAutoRespond {
		return false
	}
	// Human-in-the-loop is the default even when every signal is clean.
	return true
}

func buildRationale(action string, flags []string, triageConf, knowledgeConf float64) string {
	base := fmt.Sprintf("Recommended %s (triage confidence %.2f, knowledge confidence %.2f)", action, triageConf, knowledgeConf)
	if len(flags) > 0 {
		return base + "; risk flags: " + strings.Join(flags, ", ")
	}
	return base + "; no risk flags"
}

func reviewReason(action string, flags []string) string {
	if len(flags) > 0 {
		return "Risk flags present: " + strings.Join(flags, ", ")
	}
	if action == ActionEscalate {
		return "Escalation recommended"
	}
	return "Human approval required before any action"
}
