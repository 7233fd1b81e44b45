package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/snailcrypt/snailcrypt-go/pkg/client"
	"github.com/snailcrypt/snailcrypt-go/pkg/config"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
	"github.com/snailcrypt/snailcrypt-go/pkg/pathutils"
	"github.com/snailcrypt/snailcrypt-go/pkg/version"
)

// newKeyFetcher returns the key fetcher used by every command. Tests replace it.
var newKeyFetcher = func(c config.Config) (keyfetch.KeyFetcher, error) {
	return keyfetch.NewClient(
		c.APIURL,
		&http.Client{Timeout: c.Timeout},
		keyfetch.WithPublicKeyCacheTTL(c.KeyCacheTTL),
	)
}

// newClient returns the client for the requested envelope version. An empty version falls
// back to the configuration; "auto" selects the version per message.
func newClient(c config.Config, requested string) (client.Client, error) {
	if requested != "" {
		c.ClientVersion = requested
	}

	v, err := c.EnvelopeVersion()
	if err != nil {
		return nil, err
	}

	fetcher, err := newKeyFetcher(c)
	if err != nil {
		return nil, err
	}

	if v == 0 {
		return client.NewDefault(fetcher)
	}
	return client.New(v, fetcher)
}

func printVersion(out io.Writer, verbose bool) {
	fmt.Fprintln(out, "snailcrypt version: ", version.SnailcryptVersion, runtime.GOOS+"/"+runtime.GOARCH)
	if verbose {
		fmt.Fprintln(out, "  Commit: ", version.Commit)
		fmt.Fprintln(out, "  Built:  ", version.BuildDate)
		fmt.Fprintln(out, "  Go:     ", runtime.Version())
	}
}

// readInput returns the positional argument, the content of path, or stdin when neither
// is given or path is "-".
func readInput(stdin io.Reader, args []string, path string) (string, error) {
	if len(args) > 0 && path != "" {
		return "", fmt.Errorf("cannot read input from both an argument and --input")
	}

	if len(args) > 0 {
		return args[0], nil
	}

	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(pathutils.ExpandHome(path))
		if err != nil {
			return "", fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return string(b), nil
}

// parseLockdate accepts the envelope lockdate layout and RFC 3339.
func parseLockdate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := envelope.ParseLockdate(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid lockdate %q: expected a date like %s", s, "2022-11-19T17:00:00+0100")
}

var (
	labelColor = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow)
)

// printField writes a labelled line, skipping empty values.
func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	labelColor.Fprintf(w, "%-10s", label+":")
	fmt.Fprintln(w, value)
}
