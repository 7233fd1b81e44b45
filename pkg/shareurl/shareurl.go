// Package shareurl builds and reads the links that open an envelope in the snailcrypt
// web app, which counts down to the lockdate and decrypts in the browser.
package shareurl

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the page of the snailcrypt web app that opens shared envelopes.
const DefaultBaseURL = "https://webapp.snailcrypt.com/timer.php"

// param is the query parameter carrying the envelope.
const param = "c"

// Build returns a link to base that carries the envelope in its query.
func Build(base, envelope string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid share base URL: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("invalid share base URL %q: must be absolute", base)
	}

	query := url.Values{}
	query.Set(param, envelope)
	u.RawQuery = query.Encode()

	return u.String(), nil
}

// Extract returns the envelope carried by a share link. Input that is not a share link is
// returned as is, with surrounding whitespace removed, so that callers can accept either.
func Extract(s string) (string, error) {
	s = strings.TrimSpace(s)

	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return s, nil
	}

	query, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return "", fmt.Errorf("invalid share link query: %w", err)
	}

	envelope := query.Get(param)
	if envelope == "" {
		return "", fmt.Errorf("share link %q does not carry an envelope in its %q parameter", s, param)
	}

	return envelope, nil
}
