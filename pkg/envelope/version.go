package envelope

import (
	"strconv"
	"strings"
)

// Version identifies an envelope format. Higher versions are strict extensions of lower ones.
type Version int

const (
	V1 Version = iota + 1
	V2
	V3
)

// Latest is the newest envelope format this package can produce.
const Latest = V3

const separator = ":"

// Versions lists every known version in ascending order.
func Versions() []Version {
	return []Version{V1, V2, V3}
}

// String returns the wire tag of the version.
func (v Version) String() string {
	return strconv.Itoa(int(v))
}

// Valid reports whether v is a known version.
func (v Version) Valid() bool {
	return v >= V1 && v <= Latest
}

// FieldCount is the exact number of colon separated fields an envelope of this version has.
func (v Version) FieldCount() int {
	return int(v) + 2
}

// Previous returns the version a client of version v delegates to. V1 has no predecessor
// and returns 0.
func (v Version) Previous() Version {
	if v <= V1 {
		return 0
	}
	return v - 1
}

// SupportsHint reports whether envelopes of this version carry a hint.
func (v Version) SupportsHint() bool {
	return v >= V2
}

// SupportsFilename reports whether envelopes of this version carry a filename.
func (v Version) SupportsFilename() bool {
	return v >= V3
}

// ParseVersion maps a wire tag to a Version.
func ParseVersion(tag string) (Version, error) {
	switch tag {
	case "1":
		return V1, nil
	case "2":
		return V2, nil
	case "3":
		return V3, nil
	}
	return 0, &UnknownVersionError{Tag: tag}
}

// VersionOf returns the version that produced the envelope by looking at its first field
// only. It does not validate the rest of the envelope.
func VersionOf(envelope string) (Version, error) {
	if envelope == "" {
		return 0, &UnknownVersionError{}
	}
	tag, _, _ := strings.Cut(envelope, separator)
	return ParseVersion(tag)
}

// Analyzer identifies envelope versions without access to key material.
type Analyzer interface {
	// Version returns the version of the given envelope.
	Version(envelope string) (Version, error)
	// ParseVersion maps a wire tag to a Version.
	ParseVersion(tag string) (Version, error)
}

// DefaultAnalyzer is the Analyzer used unless another one is configured.
type DefaultAnalyzer struct{}

var _ Analyzer = DefaultAnalyzer{}

func (DefaultAnalyzer) Version(envelope string) (Version, error) {
	return VersionOf(envelope)
}

func (DefaultAnalyzer) ParseVersion(tag string) (Version, error) {
	return ParseVersion(tag)
}
