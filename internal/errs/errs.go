// Package errs defines the error taxonomy surfaced to callers.
//
// Every error that leaves a tool handler is an *Error whose Error() text is
// built only from its Kind, a fixed message and (optionally) the scope it
// concerns. Provider causes are kept for errors.Is/As but never rendered, so
// raw credentials and unredacted provider payloads cannot reach the wire.
package errs

import (
	"context"
	"errors"
	"fmt"
)

// Kind is the stable, caller-visible error category.
type Kind string

const (
	KindValidation     Kind = "ValidationError"
	KindAuthentication Kind = "AuthenticationError"
	KindAuthorization  Kind = "AuthorizationError"
	KindNotFound       Kind = "NotFound"
	KindTransient      Kind = "TransientProviderError"
	KindConfiguration  Kind = "ConfigurationError"
	KindDeadline       Kind = "DeadlineExceeded"
	KindInternal       Kind = "Internal"
)

// Error is a classified, render-safe error.
type Error struct {
	Kind    Kind
	Message string
	Scope   string
	cause   error
}

func (e *Error) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Scope)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithScope returns a copy of e annotated with the scope it concerns.
func (e *Error) WithScope(scope string) *Error {
	c := *e
	c.Scope = scope
	return &c
}

// WithCause returns a copy of e that wraps cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Validation(msg string) *Error     { return newErr(KindValidation, msg) }
func Authentication(msg string) *Error { return newErr(KindAuthentication, msg) }
func Authorization(msg string) *Error  { return newErr(KindAuthorization, msg) }
func NotFound(msg string) *Error       { return newErr(KindNotFound, msg) }
func Transient(msg string) *Error      { return newErr(KindTransient, msg) }
func Configuration(msg string) *Error  { return newErr(KindConfiguration, msg) }
func Deadline(msg string) *Error       { return newErr(KindDeadline, msg) }
func Internal(msg string) *Error       { return newErr(KindInternal, msg) }

// KindOf reports the Kind of err. Unclassified errors are Internal, except
// bare context errors which map to DeadlineExceeded.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindDeadline
	}
	return KindInternal
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
