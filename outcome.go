package linkpub

import "strconv"

// OutcomeKind classifies the result of a single fetch attempt.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeFailure OutcomeKind = iota
	OutcomeNotModified
	OutcomeUpdated
)

// String returns a short name for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotModified:
		return "not-modified"
	case OutcomeUpdated:
		return "updated"
	default:
		return "failure"
	}
}

// Failure reasons reported by transports.
const (
	ReasonTransportInit = "transport-init"
	ReasonNoStatusLine  = "no-status-line"
	ReasonNoData        = "no-data"
	ReasonNoTransport   = "no-transport"

	reasonUnexpectedStatus = "unexpected-status:"
)

// Outcome is the classified result of one conditional GET.
// It is transient and never persisted as-is.
type Outcome struct {
	Kind OutcomeKind

	// Body and Validator are set for OutcomeUpdated. Validator is the
	// Last-Modified response header, or "" when the server sent none.
	Body      []byte
	Validator string

	// Reason is set for OutcomeFailure.
	Reason string
}

// NotModified returns an outcome for a 304 response.
func NotModified() Outcome {
	return Outcome{Kind: OutcomeNotModified}
}

// Updated returns an outcome for a 200 response.
func Updated(body []byte, validator string) Outcome {
	return Outcome{Kind: OutcomeUpdated, Body: body, Validator: validator}
}

// Failure returns a failed outcome with the given reason.
func Failure(reason string) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: reason}
}

// UnexpectedStatus returns the failure reason for a status other than 200 or 304.
func UnexpectedStatus(code int) string {
	return reasonUnexpectedStatus + strconv.Itoa(code)
}
