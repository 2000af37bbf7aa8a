package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError is the rich error type carried through the application.
// It wraps a cause, an operator hint safe to surface to API callers, and
// optional structured details for logging/reporting.
type InternalError struct {
	cause   error
	hint    string
	details map[string]interface{}
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user-safe hint attached to the error, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// Details returns the reportable details attached to the error, if any.
func (e *InternalError) Details() map[string]interface{} {
	return e.details
}

// ErrorBuilder provides a fluent API for constructing internal errors.
// Mark terminates the chain and classifies the error with a sentinel.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts building an error from a message
func NewError(msg string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.New(msg)},
	}
}

// NewErrorf starts building an error from a format string
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.Newf(format, args...)},
	}
}

// WithError starts building an error wrapping an existing error
func WithError(err error) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: err},
	}
}

// WithHint attaches a user-safe hint surfaced in API error responses
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user-safe hint
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details for logging and reporting
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.details = details
	return b
}

// Mark classifies the error with one of the sentinel errors and returns it
func (b *ErrorBuilder) Mark(sentinel error) error {
	b.err.cause = errors.Mark(b.err.cause, sentinel)
	return b.err
}

// Hint extracts the user-safe hint from an error chain, if present.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint()
	}

	return ""
}

// Details extracts the reportable details from an error chain, if present.
func Details(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Details()
	}

	return nil
}
