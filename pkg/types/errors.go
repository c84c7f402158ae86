package types

import (
	"errors"
	"fmt"
)

// RefactorError represents errors in refactoring operations
type RefactorError struct {
	Type    ErrorType
	Message string
	File    string
	Line    int
	Column  int
	Cause   error
}

func (e *RefactorError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *RefactorError) Unwrap() error {
	return e.Cause
}

type ErrorType int

const (
	EmptySelection ErrorType = iota
	InvalidSelection
	InvalidName
	NameCollision
	NoWorkspace
	InternalAnalysisFailure
	FileWriteFailure
	ParseError
	InvalidOperation
)

// String returns the string representation of ErrorType
func (t ErrorType) String() string {
	switch t {
	case EmptySelection:
		return "EmptySelection"
	case InvalidSelection:
		return "InvalidSelection"
	case InvalidName:
		return "InvalidName"
	case NameCollision:
		return "NameCollision"
	case NoWorkspace:
		return "NoWorkspace"
	case InternalAnalysisFailure:
		return "InternalAnalysisFailure"
	case FileWriteFailure:
		return "FileWriteFailure"
	case ParseError:
		return "ParseError"
	case InvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}

// NewError builds a RefactorError without a location.
func NewError(t ErrorType, format string, args ...any) *RefactorError {
	return &RefactorError{Type: t, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a RefactorError whose message ends with the cause's message.
func WrapError(t ErrorType, cause error, message string) *RefactorError {
	msg := message
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", message, cause)
	}
	return &RefactorError{Type: t, Message: msg, Cause: cause}
}

// IsErrorType reports whether err (or anything it wraps) is a RefactorError of type t.
func IsErrorType(err error, t ErrorType) bool {
	var re *RefactorError
	if errors.As(err, &re) {
		return re.Type == t
	}
	return false
}
