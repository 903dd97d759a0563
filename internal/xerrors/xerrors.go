// Package xerrors provides typed error handling for the csentinel agent.
//
// It classifies errors into the kinds the agent's error-handling policy
// distinguishes (probe failures, parse failures, baseline state, transport,
// rejected input, and fatal allocation failure), while wrapping
// github.com/pkg/errors for stack-preserving causes.
package xerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error for the purposes of the agent's error policy.
type Kind int

const (
	// ProbeFailure indicates an individual OS surface was unavailable.
	ProbeFailure Kind = iota
	// ParseFailure indicates a malformed audit line or /proc entry.
	ParseFailure
	// BaselineAbsent indicates no baseline file is present.
	BaselineAbsent
	// BaselineCorrupt indicates a magic/version mismatch on load.
	BaselineCorrupt
	// TransportFailure indicates a syslog/email dispatch error.
	TransportFailure
	// InputRejected indicates user-supplied input failed validation.
	InputRejected
	// FatalOOM indicates an allocation failure during enumeration.
	FatalOOM
)

// String returns a human-readable name for the error kind.
func (k Kind) String() string {
	switch k {
	case ProbeFailure:
		return "probe failure"
	case ParseFailure:
		return "parse failure"
	case BaselineAbsent:
		return "baseline absent"
	case BaselineCorrupt:
		return "baseline corrupt"
	case TransportFailure:
		return "transport failure"
	case InputRejected:
		return "input rejected"
	case FatalOOM:
		return "fatal allocation failure"
	default:
		return "unknown error"
	}
}

// AgentError is the error type surfaced across package boundaries.
type AgentError struct {
	Op     string
	Kind   Kind
	Detail string
	Err    error
}

func (e *AgentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AgentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *AgentError with the same Kind.
func (e *AgentError) Is(target error) bool {
	t, ok := target.(*AgentError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an AgentError without an underlying cause.
func New(kind Kind, op, detail string) *AgentError {
	return &AgentError{Op: op, Kind: kind, Detail: detail}
}

// Wrap attaches a kind and operation to an underlying error, preserving its
// stack trace via github.com/pkg/errors.
func Wrap(err error, kind Kind, op string) *AgentError {
	if err == nil {
		return nil
	}
	return &AgentError{Op: op, Kind: kind, Err: errors.WithStack(err)}
}

// WrapDetail is Wrap with an additional human-readable detail string.
func WrapDetail(err error, kind Kind, op, detail string) *AgentError {
	if err == nil {
		return nil
	}
	return &AgentError{Op: op, Kind: kind, Detail: detail, Err: errors.WithStack(err)}
}

// KindOf reports the Kind of err if it is (or wraps) an *AgentError.
func KindOf(err error) (Kind, bool) {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Cause returns the root cause of err, per github.com/pkg/errors.
func Cause(err error) error {
	return errors.Cause(err)
}
