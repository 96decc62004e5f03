package scoring

import "fmt"

// ValidationError reports malformed input primitives (bad time strings,
// out-of-range ratings, negative counts). Surfaced synchronously to the
// caller, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scoring: invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InvariantViolation reports a computed feature value that breaks a stated
// invariant. This is a programming error in the caller; it fails fast and is
// not recoverable locally.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("scoring: invariant violated (%s): %s", e.Invariant, e.Detail)
}

// NewInvariantViolation builds an InvariantViolation.
func NewInvariantViolation(invariant, detail string) *InvariantViolation {
	return &InvariantViolation{Invariant: invariant, Detail: detail}
}
