// Package rerrors defines the typed error kinds the import processor and
// conversion engine fail with, wrapped with github.com/pkg/errors the way
// core/transaction wraps plain strings for stack-trace capture.
package rerrors

import "github.com/pkg/errors"

// Kind is one of the engine's error categories. The core never recovers
// from these locally; they propagate to the surrounding validation layer,
// which rejects the containing block or transaction.
type Kind string

const (
	Overflow               Kind = "overflow"
	InvalidInput           Kind = "invalid_input"
	PolicyViolation        Kind = "policy_violation"
	FeeUnderpayment        Kind = "fee_underpayment"
	ConservationViolation  Kind = "conservation_violation"
	MissingCurrency        Kind = "missing_currency"
	UnsupportedDestination Kind = "unsupported_destination"
)

// Error pairs a Kind with a wrapped cause, preserving pkg/errors' stack
// trace on the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a Kind-tagged error from a message, with a captured stack
// trace.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Err: errors.New(msg)}
}

// Wrap tags an existing error with a Kind, preserving its stack trace if
// it already carries one.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrap(err, msg)}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if asErr, ok := err.(*Error); ok {
			e = asErr
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
