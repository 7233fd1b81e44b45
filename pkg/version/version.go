package version

import (
	"fmt"
	"net/http"
	"runtime"
)

// This variables are injected at build time.

// SnailcryptVersion hosts the version of the app.
var SnailcryptVersion = "development"

// Commit is the commit hash of the build
var Commit string

// BuildDate is the date it was built
var BuildDate string

// GoVersion is the go version that was used to compile this
var GoVersion string

// UserAgent returns the User-Agent sent with every request to the key-release service.
func UserAgent() string {
	return fmt.Sprintf("snailcrypt/%s (%s/%s)", SnailcryptVersion, runtime.GOOS, runtime.GOARCH)
}

// SetUserAgent augments an http.Request with a User-Agent header.
func SetUserAgent(req *http.Request) {
	req.Header.Set("User-Agent", UserAgent())
}
