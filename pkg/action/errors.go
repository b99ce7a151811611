package action

import (
	"errors"
	"fmt"
)

// SafetyViolationError signals that the action stage was invoked without an
// approval in place. This is distinct from ordinary processing failures so
// callers can alert on it rather than just log it.
type SafetyViolationError struct {
	TicketID string
}

func (e *SafetyViolationError) Error() string {
	return fmt.Sprintf("action stage invoked without human approval for ticket %s", e.TicketID)
}

func IsSafetyViolation(err error) bool {
	var sv *SafetyViolationError
	return errors.As(err, &sv)
}
