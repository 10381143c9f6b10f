// Package apperr defines the error kinds reported to callers. Every
// operation returns either nil or an *Error; storage failures are wrapped
// as TRANSIENT so callers can tell them apart from domain outcomes.
package apperr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is the machine-readable category of an error
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidState       Kind = "INVALID_STATE"
	KindVerificationFailed Kind = "VERIFICATION_FAILED"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindTransient          Kind = "TRANSIENT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
)

// Error carries a kind, a human-readable message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidState(msg string) error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// Unauthorized reports bad credentials or a stale session
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// VerificationFailed reports a payment that could not be confirmed as settled
func VerificationFailed(msg string, cause error) error {
	return &Error{Kind: KindVerificationFailed, Message: msg, Err: cause}
}

// Transient wraps a storage or collaborator failure, keeping a stack trace
// for error reporting.
func Transient(cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: KindTransient, Message: msg, Err: pkgerrors.WithStack(cause)}
}

// KindOf returns the kind of err. Errors not produced by this package are TRANSIENT.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// MessageOf returns the caller-facing message of err
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Server error"
}

// Is reports whether err is of kind k
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
