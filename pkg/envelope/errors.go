package envelope

import (
	"errors"
	"fmt"
)

// ErrInvalidFormat is matched by every error caused by a malformed envelope.
// Such errors are detectable from the envelope string alone and are never worth retrying.
var ErrInvalidFormat = errors.New("invalid envelope format")

// FormatError describes why an envelope (or one of its fields) could not be parsed or built.
type FormatError struct {
	// Field names the envelope field at fault, if any.
	Field string
	// Reason is a human readable description of the problem.
	Reason string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("%s field: %s", e.Field, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

// UnknownVersionError is returned when the version tag of an envelope is not one of
// the known versions. Tag is empty when the envelope is empty or starts with a colon.
type UnknownVersionError struct {
	Tag string
}

func (e *UnknownVersionError) Error() string {
	return "Unknown client version: " + e.Tag
}

func (e *UnknownVersionError) Is(target error) bool {
	return target == ErrInvalidFormat
}
