package jsonpatch

import (
	"errors"
	"fmt"
)

// Kind identifies the type of patch failure.
type Kind uint8

const (
	// KindUnknown is the zero value; it is never produced by this package.
	KindUnknown Kind = iota

	// KindPathNotFound means an operation's path (or from path) does not
	// resolve in the current document.
	KindPathNotFound

	// KindTypeMismatch means an operation is structurally inapplicable,
	// such as indexing into a scalar or adding past the end of an array.
	KindTypeMismatch

	// KindTestFailed means a test operation's expected value did not
	// match the document.
	KindTestFailed

	// KindInvalidPointer means a path is not valid JSON Pointer syntax.
	KindInvalidPointer

	// KindInvalidOp means an operation's op field is not one of the six
	// RFC 6902 operations, or a required field is missing.
	KindInvalidOp
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPathNotFound:
		return "PathNotFound"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindTestFailed:
		return "TestFailed"
	case KindInvalidPointer:
		return "InvalidPointer"
	case KindInvalidOp:
		return "InvalidOp"
	default:
		return "Unknown"
	}
}

// Error describes a failed patch application.
type Error struct {
	Kind Kind   // Failure category
	Op   Op     // Operation that failed
	Path string // Path the failure occurred at
	Msg  string // Human-readable detail
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("jsonpatch: %s at %q: %s", e.Kind, e.Path, e.Msg)
	}
	return fmt.Sprintf("jsonpatch: %s at %q", e.Kind, e.Path)
}

// KindOf returns the Kind of err, or KindUnknown if err is not a patch
// error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

func errPathNotFound(op Op, path string) *Error {
	return &Error{Kind: KindPathNotFound, Op: op, Path: path}
}

func errTypeMismatch(op Op, path, format string, args ...any) *Error {
	return &Error{Kind: KindTypeMismatch, Op: op, Path: path, Msg: fmt.Sprintf(format, args...)}
}

func errTestFailed(path string) *Error {
	return &Error{Kind: KindTestFailed, Op: OpTest, Path: path, Msg: "value does not match"}
}
