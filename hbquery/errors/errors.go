package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	ErrQuerySyntax     Kind = "query_syntax"
	ErrDateFormat      Kind = "date_format"
	ErrNumericCoercion Kind = "numeric_coercion"
	ErrUnknownColumn   Kind = "unknown_column"
	ErrNotFound        Kind = "not_found"
	ErrIO              Kind = "io"
	ErrSQL             Kind = "sql"
	ErrConfig          Kind = "config"
)

// Error is the error type returned by every hbquery package.
type Error struct {
	Kind    Kind
	Message string
	// Fragment is the offending piece of input, if any.
	Fragment string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	base := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Fragment != "" {
		base = fmt.Sprintf("%s (at %q)", base, e.Fragment)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// SyntaxError reports malformed query text at fragment.
func SyntaxError(msg, fragment string) *Error {
	return &Error{Kind: ErrQuerySyntax, Message: msg, Fragment: fragment}
}

// DateFormatError reports a value that matches none of the accepted date layouts.
func DateFormatError(value string) *Error {
	return &Error{Kind: ErrDateFormat, Message: "invalid date format", Fragment: value}
}

// NumericCoercionError reports a field value that cannot be read as a number.
func NumericCoercionError(field, value string) *Error {
	return &Error{Kind: ErrNumericCoercion, Message: fmt.Sprintf("field %s is not numeric", field), Fragment: value}
}

func UnknownColumnError(name string) *Error {
	return &Error{Kind: ErrUnknownColumn, Message: "column not found", Fragment: name}
}

func NotFoundError(what string) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("not found: %s", what)}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
