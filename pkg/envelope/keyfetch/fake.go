package keyfetch

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"sync"
	"time"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
)

// Compile-time check that FakeClient implements KeyFetcher
var _ KeyFetcher = (*FakeClient)(nil)

// FakeClient is a fake implementation of the key fetcher for testing.
// It serves one key pair for every lockdate and releases the private key once the
// lockdate is not after Now().
type FakeClient struct {
	mu sync.Mutex

	// Key is the key pair that will be served.
	// If nil, a random key will be generated on the first call.
	Key *rsa.PrivateKey

	// Err is the error that will be returned by both fetch methods.
	Err error

	// Now returns the current time of the fake service. Defaults to time.Now.
	Now func() time.Time

	// PublicKeyCalls and PrivateKeyCalls track how many times each method was called,
	// including calls that returned an error.
	PublicKeyCalls  int
	PrivateKeyCalls int

	// Lockdates records the formatted lockdate of every call.
	Lockdates []string
}

// NewFakeClient creates a new fake client for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

// NewFakeClientWithKey creates a new fake client that serves the specified key pair.
func NewFakeClientWithKey(key *rsa.PrivateKey) *FakeClient {
	return &FakeClient{Key: key}
}

// NewFakeClientWithError creates a new fake client that returns the specified error.
func NewFakeClientWithError(err error) *FakeClient {
	return &FakeClient{Err: err}
}

// FetchPublicKey returns the configured public key as PKIX PEM.
func (f *FakeClient) FetchPublicKey(ctx context.Context, lockdate time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PublicKeyCalls++
	key, err := f.prepare(ctx, lockdate)
	if err != nil {
		return "", err
	}

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal test public key: %w", err)
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// FetchPrivateKey returns the configured private key as PKCS1 PEM, or ErrKeyNotReleased
// if the lockdate is after Now().
func (f *FakeClient) FetchPrivateKey(ctx context.Context, lockdate time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PrivateKeyCalls++
	key, err := f.prepare(ctx, lockdate)
	if err != nil {
		return "", err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	if lockdate.After(now()) {
		return "", fmt.Errorf("lockdate %s: %w", envelope.FormatLockdate(lockdate), ErrKeyNotReleased)
	}

	der := x509.MarshalPKCS1PrivateKey(key)
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})), nil
}

// prepare records the call and returns the key pair to serve. f.mu must be held.
func (f *FakeClient) prepare(ctx context.Context, lockdate time.Time) (*rsa.PrivateKey, error) {
	f.Lockdates = append(f.Lockdates, envelope.FormatLockdate(lockdate))

	// Check if context is canceled
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if f.Err != nil {
		return nil, f.Err
	}

	if f.Key == nil {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("failed to generate test key: %w", err)
		}
		f.Key = key
	}

	return f.Key, nil
}
