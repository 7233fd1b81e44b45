package envelope

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Envelope is the decoded form of an envelope string.
type Envelope struct {
	Version  Version
	Lockdate time.Time
	// Cipher is the raw chunked RSA ciphertext.
	Cipher []byte
	// Hint is only carried from V2 onward.
	Hint string
	// Filename is only carried from V3 onward.
	Filename string
}

// Serialize renders e as an envelope string. It fails if e holds a field its version
// cannot carry.
func Serialize(e Envelope) (string, error) {
	if !e.Version.Valid() {
		return "", &UnknownVersionError{Tag: e.Version.String()}
	}
	if e.Hint != "" && !e.Version.SupportsHint() {
		return "", &FormatError{Field: "hint", Reason: fmt.Sprintf("not carried by version %s envelopes", e.Version)}
	}
	if e.Filename != "" && !e.Version.SupportsFilename() {
		return "", &FormatError{Field: "filename", Reason: fmt.Sprintf("not carried by version %s envelopes", e.Version)}
	}

	fields := make([]string, 0, e.Version.FieldCount())
	fields = append(fields,
		e.Version.String(),
		encodeText(FormatLockdate(e.Lockdate)),
		base64.StdEncoding.EncodeToString(e.Cipher),
	)
	if e.Version.SupportsHint() {
		fields = append(fields, encodeText(e.Hint))
	}
	if e.Version.SupportsFilename() {
		fields = append(fields, encodeText(e.Filename))
	}
	return strings.Join(fields, separator), nil
}

// Parse decodes an envelope string.
//
// The hint and filename are decoded before the lockdate and the cipher. When a later field
// fails to decode, Parse returns the partially filled Envelope along with the error so that
// callers can still show what was recovered. The Envelope is nil only when the version tag
// itself is unknown.
func Parse(s string) (*Envelope, error) {
	v, err := VersionOf(s)
	if err != nil {
		return nil, err
	}

	env := &Envelope{Version: v}
	fields, err := splitFields(s, v)
	if err != nil {
		return env, err
	}

	if v.SupportsHint() {
		if env.Hint, err = decodeText("hint", fields[3]); err != nil {
			return env, err
		}
	}
	if v.SupportsFilename() {
		if env.Filename, err = decodeText("filename", fields[4]); err != nil {
			return env, err
		}
	}
	if env.Lockdate, err = decodeLockdate(fields[1]); err != nil {
		return env, err
	}
	if env.Cipher, err = decodeBytes("cipher", fields[2]); err != nil {
		return env, err
	}
	return env, nil
}

// ExtractLockdate decodes only the lockdate of an envelope of version v.
func ExtractLockdate(s string, v Version) (time.Time, error) {
	fields, err := splitFields(s, v)
	if err != nil {
		return time.Time{}, err
	}
	return decodeLockdate(fields[1])
}

// Wrap turns an envelope of version v.Previous() into an envelope of version v by
// replacing its tag and appending field.
func Wrap(inner string, v Version, field string) (string, error) {
	prev := v.Previous()
	if !v.Valid() || prev == 0 {
		return "", &FormatError{Reason: fmt.Sprintf("version %s does not extend another version", v)}
	}

	fields, err := splitFields(inner, prev)
	if err != nil {
		return "", err
	}
	fields[0] = v.String()
	fields = append(fields, encodeText(field))
	return strings.Join(fields, separator), nil
}

// Unwrap reverses Wrap: it checks that outer is a well formed version v envelope, decodes
// its last field and returns the version v.Previous() envelope it was built from.
func Unwrap(outer string, v Version) (inner string, field string, err error) {
	prev := v.Previous()
	if !v.Valid() || prev == 0 {
		return "", "", &FormatError{Reason: fmt.Sprintf("version %s does not extend another version", v)}
	}

	fields, err := splitFields(outer, v)
	if err != nil {
		return "", "", err
	}

	last := len(fields) - 1
	name := "hint"
	if v == V3 {
		name = "filename"
	}
	field, err = decodeText(name, fields[last])
	if err != nil {
		return "", "", err
	}

	fields[0] = prev.String()
	return strings.Join(fields[:last], separator), field, nil
}

// splitFields splits s on every separator, keeping empty fields, and checks that the
// result is shaped like a version v envelope.
func splitFields(s string, v Version) ([]string, error) {
	fields := strings.Split(s, separator)
	if fields[0] != v.String() {
		return nil, &FormatError{Reason: fmt.Sprintf("expected a version %s envelope, got version tag %q", v, fields[0])}
	}
	if len(fields) != v.FieldCount() {
		return nil, &FormatError{Reason: fmt.Sprintf("version %s envelope must have %d fields, got %d", v, v.FieldCount(), len(fields))}
	}
	return fields, nil
}

func encodeText(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeBytes(field, value string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, &FormatError{Field: field, Reason: "invalid base64", Err: err}
	}
	return b, nil
}

func decodeText(field, value string) (string, error) {
	b, err := decodeBytes(field, value)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &FormatError{Field: field, Reason: "not valid UTF-8"}
	}
	return string(b), nil
}

func decodeLockdate(value string) (time.Time, error) {
	s, err := decodeText("lockdate", value)
	if err != nil {
		return time.Time{}, err
	}
	return ParseLockdate(s)
}
