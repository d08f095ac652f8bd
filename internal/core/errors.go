// Package core provides FatELF and ELF record parsing shared by the rest
// of the module: the machine registry, the endian codec, the ELF identity
// reader, the ELF boundary scanner, the FatELF header codec and the file
// classifier.
package core

import "fmt"

// Kind identifies one of the error kinds from the error handling design:
// Configuration, Io, NotELF, MalformedELF, NotFatELF, DuplicateTarget,
// TooManyRecords, NothingToDo, UnsupportedFileType, UnsupportedMerge,
// FileMismatch, ResourceParseFailure.
type Kind string

const (
	KindConfiguration       Kind = "Configuration"
	KindIo                  Kind = "Io"
	KindNotELF              Kind = "NotELF"
	KindMalformedELF        Kind = "MalformedELF"
	KindNotFatELF           Kind = "NotFatELF"
	KindDuplicateTarget     Kind = "DuplicateTarget"
	KindTooManyRecords      Kind = "TooManyRecords"
	KindNothingToDo         Kind = "NothingToDo"
	KindUnsupportedFileType Kind = "UnsupportedFileType"
	KindUnsupportedMerge    Kind = "UnsupportedMerge"
	KindFileMismatch        Kind = "FileMismatch"
	KindResourceParseFailed Kind = "ResourceParseFailure"
)

// Error is a kind-tagged error carrying the path it concerns and an
// optional cause. It is the idiomatic-Go equivalent of a C errno-context
// error: a diagnostic line is always derivable as "<path>: <message>".
type Error struct {
	K     Kind
	Path  string
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

// Unwrap supports errors.Is / errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the error kind, used by callers that need to decide
// recoverable vs. fatal handling (FileMismatch and ResourceParseFailure
// are never fatal; everything else is).
func (e *Error) Kind() Kind {
	return e.K
}

// Fail constructs a *Error. cause may be nil.
func Fail(kind Kind, path, msg string, cause error) error {
	return &Error{K: kind, Path: path, Msg: msg, Cause: cause}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.K == kind
}
