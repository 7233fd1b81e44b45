package keyfetch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotReleased is returned when the private key for a lockdate is still being
	// withheld. Retrying after the lockdate has passed is expected to succeed.
	ErrKeyNotReleased = errors.New("private key has not been released yet")

	// ErrKeyLookupFailed is matched by every transport or service failure.
	ErrKeyLookupFailed = errors.New("key lookup failed")
)

// LookupError describes a failed request to the key-release service.
type LookupError struct {
	// Endpoint is the URL that was requested.
	Endpoint string
	// StatusCode is the HTTP status of the response, or 0 if no response was received.
	StatusCode int
	// Code and Message are the error code and message reported by the service, if any.
	Code    string
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *LookupError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "key lookup at %s failed", e.Endpoint)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %s", e.Err)
	}
	return b.String()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func (e *LookupError) Is(target error) bool {
	return target == ErrKeyLookupFailed
}
