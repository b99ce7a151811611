package triage

// Categories a ticket can be classified into. The classifier must pick
// exactly one primary category; "other" is preferred over a wrong guess.
var Categories = []string{
	"validation",
	"middleware",
	"async_concurrency",
	"response_handling",
	"performance",
	"serialization",
	"openapi",
	"file_handling",
	"authentication",
	"installation",
	"dependency_lifecycle",
	"other",
}

var IssueTypes = []string{"bug", "question", "incident", "documentation", "feature_request"}

var Severities = []string{"P1", "P2", "P3", "P4"}

// ConfidenceThreshold is the score below which escalation is forced.
const ConfidenceThreshold = 0.7

// EscalationKeywords force escalation when any appears in the ticket text.
// Matching is case-insensitive substring; only the first hit is reported.
var EscalationKeywords = []string{
	"security", "vulnerability", "breach", "cve", "exploit", "attack",
	"data loss", "data corruption", "data deleted", "data missing",
	"outage", "down", "unavailable", "100% failure",
	"all users", "multiple customers", "widespread",
	"500 error", "production error",
	"urgent", "immediate", "asap", "critical",
}

// ConfidenceFactors breaks down what drove the classification confidence.
type ConfidenceFactors struct {
	CategoryClarity      string `json:"category_clarity" validate:"oneof=clear moderate ambiguous"`
	SymptomSpecificity   string `json:"symptom_specificity" validate:"oneof=specific general vague"`
	TechnicalDetailLevel string `json:"technical_detail_level" validate:"oneof=high medium low"`
}

// TechnicalSignals are the technical details lifted verbatim from the ticket.
type TechnicalSignals struct {
	AffectedComponents   []string `json:"affected_components"`
	FrameworkVersion     string   `json:"framework_version,omitempty"`
	RuntimeVersion       string   `json:"runtime_version,omitempty"`
	Environment          string   `json:"environment"`
	HasReproductionSteps bool     `json:"has_reproduction_steps"`
	HasErrorOutput       bool     `json:"has_error_output"`
}

// Reasoning explains the classification, separating stated facts from
// inferences so reviewers can audit the chain.
type Reasoning struct {
	CategoryRationale string   `json:"category_rationale"`
	FactsFromTicket   []string `json:"facts_from_ticket"`
	InferencesMade    []string `json:"inferences_made"`
	UncertaintyNotes  string   `json:"uncertainty_notes,omitempty"`
}

// Output is the structured classification contract every downstream stage
// depends on. The LLM must produce JSON matching this exactly.
type Output struct {
	TicketID              string            `json:"ticket_id"`
	PrimaryCategory       string            `json:"primary_category"`
	SecondaryCategory     string            `json:"secondary_category,omitempty"`
	IssueType             string            `json:"issue_type"`
	Severity              string            `json:"severity"`
	SeverityJustification string            `json:"severity_justification"`
	Confidence            float64           `json:"confidence"`
	ConfidenceFactors     ConfidenceFactors `json:"confidence_factors"`
	RequiresEscalation    bool              `json:"requires_escalation"`
	EscalationReasons     []string          `json:"escalation_reasons"`
	TechnicalSignals      TechnicalSignals  `json:"technical_signals"`
	Keywords              []string          `json:"keywords"`
	OneLineSummary        string            `json:"one_line_summary"`
	Reasoning             Reasoning         `json:"reasoning"`
}
