package cmd

import (
	"bytes"
	"context"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
)

const childArgsEnv = "SNAILCRYPT_TEST_CHILD_ARGS"

// keyReleaseServer serves the shared test key pair for every lockdate and releases the
// private key once the lockdate has passed.
func keyReleaseServer(t *testing.T) *httptest.Server {
	t.Helper()

	key := testKey()
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	public := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}))
	private := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LockDate string `json:"lock_date"`
		}
		if r.URL.Path != "/keys" || json.NewDecoder(r.Body).Decode(&req) != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		lockdate, err := envelope.ParseLockdate(req.LockDate)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": 400, "message": "invalid lock_date"}`))
			return
		}

		resp := map[string]string{"public_key": public}
		if !lockdate.After(time.Now()) {
			resp["private_key"] = private
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	return server
}

// runChild runs snailcrypt with args in a child process of the test binary.
func runChild(t *testing.T, ctx context.Context, apiURL string, args ...string) (string, string, error) {
	t.Helper()

	encoded, err := json.Marshal(args)
	require.NoError(t, err)

	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=^TestCLIRoundTrip$")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(
		os.Environ(),
		childArgsEnv+"="+string(encoded),
		"SNAILCRYPT_API_URL="+apiURL,
		"XDG_CONFIG_HOME="+t.TempDir(),
	)
	err = cmd.Run()

	t.Logf("STDOUT\n%s\n", stdout.String())
	t.Logf("STDERR\n%s\n", stderr.String())
	return stdout.String(), stderr.String(), err
}

// TestCLIRoundTrip encrypts and decrypts a message with the snailcrypt command against a
// local key-release service.
func TestCLIRoundTrip(t *testing.T) {
	if encoded, found := os.LookupEnv(childArgsEnv); found {
		var args []string
		require.NoError(t, json.Unmarshal([]byte(encoded), &args))
		os.Args = append([]string{"snailcrypt"}, args...)
		Execute()
		return
	}

	server := keyReleaseServer(t)
	ctx, cancel := context.WithTimeout(t.Context(), 30*time.Second)
	defer cancel()

	stdout, _, err := runChild(t, ctx, server.URL,
		"encrypt",
		"--lockdate=2022-11-19T17:00:00+0100",
		"--hint=open me",
		"--filename=note.txt",
		"see you in the future",
	)
	require.NoError(t, err, context.Cause(ctx))

	sealed, _, _ := strings.Cut(stdout, "\n")
	require.True(t, strings.HasPrefix(sealed, "3:"), "unexpected envelope %q", sealed)

	stdout, stderr, err := runChild(t, ctx, server.URL, "decrypt", sealed)
	require.NoError(t, err, context.Cause(ctx))
	assert.True(t, strings.HasPrefix(stdout, "see you in the future"), "unexpected plaintext %q", stdout)
	assert.Contains(t, stderr, "open me")
	assert.Contains(t, stderr, "note.txt")

	locked, _, err := runChild(t, ctx, server.URL, "encrypt", "--in=48h", "not yet")
	require.NoError(t, err, context.Cause(ctx))
	locked, _, _ = strings.Cut(locked, "\n")

	_, stderr, err = runChild(t, ctx, server.URL, "decrypt", locked)
	require.Error(t, err)
	assert.Contains(t, stderr, "private key has not been released")
}
