// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"sync"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
)

// RSAKey returns a 2048-bit key that is generated once per test binary, since key
// generation dominates the run time of the crypto tests.
func RSAKey() *rsa.PrivateKey {
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic("failed to generate test RSA key: " + err.Error())
		}
		key = k
	})
	return key
}

// Undent removes the common leading indentation of the lines of s. A leading
// newline is dropped so YAML and PEM documents can be inlined in tests, aligned
// with the surrounding code. Blank lines do not count towards the indentation.
func Undent(s string) string {
	s = strings.TrimPrefix(s, "\n")
	lines := strings.Split(s, "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return s
	}

	for i, line := range lines {
		if len(line) >= indent {
			lines[i] = line[indent:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
