package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUndent(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"empty":           {input: "", want: ""},
		"no indentation":  {input: "a\nb", want: "a\nb"},
		"leading newline": {input: "\n    a: 1\n    b: 2\n", want: "a: 1\nb: 2\n"},
		"nested":          {input: "\n\tkeys:\n\t\tttl: 5m", want: "keys:\n\tttl: 5m"},
		"blank lines":     {input: "\n    a\n\n    b", want: "a\n\nb"},
		"short last line": {input: "\n    a\n  ", want: "a\n"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Undent(tc.input))
		})
	}
}

func TestRSAKey(t *testing.T) {
	k := RSAKey()
	assert.Equal(t, 256, k.Size())
	assert.Same(t, k, RSAKey())
}
