package hbquery

import hqerrors "github.com/nonibytes/hbquery/hbquery/errors"

// Re-export error types and functions so callers need a single import.
type Error = hqerrors.Error
type ErrorKind = hqerrors.Kind

const (
	ErrQuerySyntax     = hqerrors.ErrQuerySyntax
	ErrDateFormat      = hqerrors.ErrDateFormat
	ErrNumericCoercion = hqerrors.ErrNumericCoercion
	ErrUnknownColumn   = hqerrors.ErrUnknownColumn
	ErrNotFound        = hqerrors.ErrNotFound
	ErrIO              = hqerrors.ErrIO
	ErrSQL             = hqerrors.ErrSQL
	ErrConfig          = hqerrors.ErrConfig
)

func IsKind(err error, kind ErrorKind) bool { return hqerrors.IsKind(err, kind) }
