// Package agenterr defines the error kinds the strategic agent and its
// message handlers use to distinguish user-facing rejections from fatal
// internal bugs (§7).
package agenterr

import (
	"errors"
	"fmt"
)

// Kind classifies why a request or placement attempt failed.
type Kind int

const (
	// KindInvalidMessage marks a malformed or out-of-range request: unknown
	// order number, unknown period id, negative hours. Always user-facing,
	// never fatal.
	KindInvalidMessage Kind = iota
	// KindConstraintReject marks a placement rejected by the placement
	// algorithm's own rules (locked period, excluded period, insufficient
	// capacity). Internal control flow, not a bug: the algorithm is expected
	// to hit this routinely and move on to the next candidate period.
	KindConstraintReject
	// KindInvariantViolation marks state the agent believes cannot happen
	// under correct operation (queue disjointness broken, negative loading
	// with no capacity decrease to explain it). Fatal: the agent rolls back
	// and terminates rather than continue operating on state it cannot
	// trust.
	KindInvariantViolation
	// KindLockContention marks a request that could not acquire the
	// environment lock before its deadline.
	KindLockContention
)

func (k Kind) String() string {
	switch k {
	case KindInvalidMessage:
		return "invalid_message"
	case KindConstraintReject:
		return "constraint_reject"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindLockContention:
		return "lock_contention"
	default:
		return "unknown"
	}
}

// Error is the concrete error type carrying a Kind alongside its message, so
// callers can branch on severity with errors.As without string matching.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Invalid builds a KindInvalidMessage error.
func Invalid(format string, args ...any) *Error {
	return New(KindInvalidMessage, format, args...)
}

// Reject builds a KindConstraintReject error.
func Reject(format string, args ...any) *Error {
	return New(KindConstraintReject, format, args...)
}

// Invariant builds a KindInvariantViolation error.
func Invariant(format string, args ...any) *Error {
	return New(KindInvariantViolation, format, args...)
}

// LockContention builds a KindLockContention error.
func LockContention(format string, args ...any) *Error {
	return New(KindLockContention, format, args...)
}

// Is reports whether err (or any error it wraps) has the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Fatal reports whether err must terminate the agent loop rather than be
// returned as an ordinary reply.
func Fatal(err error) bool {
	return Is(err, KindInvariantViolation)
}
