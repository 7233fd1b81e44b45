package keyfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/pmylund/go-cache"
	"k8s.io/klog/v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/logs"
	"github.com/snailcrypt/snailcrypt-go/pkg/version"
)

const (
	// DefaultBaseURL is the production key-release service.
	DefaultBaseURL = "https://api.snailcrypt.com"

	// DefaultPublicKeyCacheTTL is how long fetched public keys are reused.
	DefaultPublicKeyCacheTTL = 15 * time.Minute

	// defaultTimeout bounds requests made with the default HTTP client
	defaultTimeout = 30 * time.Second

	// maxKeysBodySize is the maximum allowed size for a response body from the keys endpoint.
	// A response holding a 4096-bit private key is below 4kB.
	maxKeysBodySize = 256 * 1024
)

// KeyFetcher fetches the PEM encoded keys of a lockdate.
type KeyFetcher interface {
	// FetchPublicKey retrieves the public key of the lockdate. It is always available.
	FetchPublicKey(ctx context.Context, lockdate time.Time) (string, error)

	// FetchPrivateKey retrieves the private key of the lockdate. It returns an error
	// matching ErrKeyNotReleased while the lockdate has not passed.
	FetchPrivateKey(ctx context.Context, lockdate time.Time) (string, error)
}

// Compile-time check that Client implements KeyFetcher
var _ KeyFetcher = (*Client)(nil)

// Client fetches keys from the HTTP key-release service.
// Public keys are cached per lockdate; private keys are fetched on every call.
type Client struct {
	endpoint   string
	httpClient *http.Client

	cacheTTL   time.Duration
	publicKeys *cache.Cache
}

// Option configures a Client.
type Option func(*Client)

// WithPublicKeyCacheTTL sets how long public keys are cached. A zero TTL disables the cache.
func WithPublicKeyCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// NewClient creates a new key fetching client for the service at baseURL.
// If httpClient is nil, a default HTTP client will be created.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL for key-release service: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL for key-release service: unsupported scheme %q", u.Scheme)
	}

	endpoint, err := url.JoinPath(baseURL, "keys")
	if err != nil {
		return nil, fmt.Errorf("failed to construct endpoint URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	c := &Client{
		endpoint:   endpoint,
		httpClient: httpClient,
		cacheTTL:   DefaultPublicKeyCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.cacheTTL > 0 {
		c.publicKeys = cache.New(c.cacheTTL, 2*c.cacheTTL)
	}

	return c, nil
}

// keysRequest is the body of a request to the keys endpoint.
type keysRequest struct {
	LockDate string `json:"lock_date"`
}

// keysResponse is the body of a response from the keys endpoint.
// The service reports errors with a code, which is a number for public key requests and
// a string for private key requests.
type keysResponse struct {
	PublicKey  *string         `json:"public_key"`
	PrivateKey *string         `json:"private_key"`
	Code       json.RawMessage `json:"code"`
	Message    string          `json:"message"`
}

func (r *keysResponse) code() string {
	code := strings.TrimSpace(string(r.Code))
	if code == "" || code == "null" {
		return ""
	}
	return strings.Trim(code, `"`)
}

// FetchPublicKey retrieves the public key of the lockdate, serving it from the cache
// when possible.
func (c *Client) FetchPublicKey(ctx context.Context, lockdate time.Time) (string, error) {
	logger := loggerFrom(ctx)
	key := envelope.FormatLockdate(lockdate)

	if c.publicKeys != nil {
		if cached, ok := c.publicKeys.Get(key); ok {
			logger.V(logs.Trace).Info("using cached public key", "lockdate", key)
			return cached.(string), nil
		}
	}

	resp, statusCode, err := c.requestKeys(ctx, key)
	if err != nil {
		return "", err
	}

	if resp.PublicKey == nil || *resp.PublicKey == "" {
		return "", &LookupError{Endpoint: c.endpoint, StatusCode: statusCode, Message: "response did not contain a public key"}
	}

	logger.V(logs.Debug).Info("fetched public key", "lockdate", key)

	if c.publicKeys != nil {
		c.publicKeys.Set(key, *resp.PublicKey, cache.DefaultExpiration)
	}

	return *resp.PublicKey, nil
}

// FetchPrivateKey retrieves the private key of the lockdate.
func (c *Client) FetchPrivateKey(ctx context.Context, lockdate time.Time) (string, error) {
	logger := loggerFrom(ctx)
	key := envelope.FormatLockdate(lockdate)

	resp, _, err := c.requestKeys(ctx, key)
	if err != nil {
		return "", err
	}

	if resp.PrivateKey == nil || *resp.PrivateKey == "" {
		logger.V(logs.Debug).Info("private key not released yet", "lockdate", key)
		return "", fmt.Errorf("lockdate %s: %w", key, ErrKeyNotReleased)
	}

	logger.V(logs.Debug).Info("fetched private key", "lockdate", key)

	return *resp.PrivateKey, nil
}

func loggerFrom(ctx context.Context) logr.Logger {
	return klog.FromContext(ctx).WithName("keyfetch")
}

// requestKeys performs a single request to the keys endpoint and decodes the response.
// Any error it returns is a *LookupError.
func (c *Client) requestKeys(ctx context.Context, lockdate string) (*keysResponse, int, error) {
	body, err := json.Marshal(keysRequest{LockDate: lockdate})
	if err != nil {
		return nil, 0, &LookupError{Endpoint: c.endpoint, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, &LookupError{Endpoint: c.endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	version.SetUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &LookupError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	loggerFrom(ctx).V(logs.Trace).Info("keys response", "status", resp.StatusCode, "lockdate", lockdate)

	var keysResp keysResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxKeysBodySize)).Decode(&keysResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		lookupErr := &LookupError{Endpoint: c.endpoint, StatusCode: resp.StatusCode}
		if decodeErr == nil {
			lookupErr.Code = keysResp.code()
			lookupErr.Message = keysResp.Message
		}
		return nil, resp.StatusCode, lookupErr
	}

	if decodeErr != nil {
		if decodeErr == io.ErrUnexpectedEOF {
			decodeErr = fmt.Errorf("rejecting JSON response from server as it was too large or was truncated")
		}
		return nil, resp.StatusCode, &LookupError{Endpoint: c.endpoint, StatusCode: resp.StatusCode, Err: decodeErr}
	}

	if code := keysResp.code(); code != "" {
		return nil, resp.StatusCode, &LookupError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Code:       code,
			Message:    keysResp.Message,
		}
	}

	return &keysResp, resp.StatusCode, nil
}
