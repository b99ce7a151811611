package ticket

// Ticket is the normalized intake record every stage consumes. Identity
// fields are set once at intake and never change.
type Ticket struct {
	TicketID   string         `json:"ticket_id"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	Channel    string         `json:"channel"`
	CustomerID string         `json:"customer_id,omitempty"`
	Severity   string         `json:"severity,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// SearchableText joins the fields escalation keyword matching scans.
func (t Ticket) SearchableText() string {
	out := t.Subject
	if t.Body != "" {
		if out != "" {
			out += " "
		}
		out += t.Body
	}
	return out
}
