package envelope

import (
	"time"
)

const (
	// LockdateLayout is the time layout of a lockdate inside an envelope and in requests to
	// the key-release service, e.g. 2022-11-19T17:00:00+0100.
	LockdateLayout = "2006-01-02T15:04:05-0700"

	// DatetimeFormat is LockdateLayout expressed as a strftime pattern. It is what clients
	// report to callers that build lockdate strings themselves.
	DatetimeFormat = "%Y-%m-%dT%H:%M:%S%z"
)

// FormatLockdate renders a lockdate. The key-release service indexes key pairs by this
// string, so the same instant written with a different offset selects a different key pair.
func FormatLockdate(t time.Time) string {
	return t.Format(LockdateLayout)
}

// ParseLockdate parses a lockdate rendered by FormatLockdate.
func ParseLockdate(s string) (time.Time, error) {
	t, err := time.Parse(LockdateLayout, s)
	if err != nil {
		return time.Time{}, &FormatError{Field: "lockdate", Reason: "invalid datetime", Err: err}
	}
	return t, nil
}
