package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
)

// Client encrypts plaintexts until a lockdate and decrypts them once the lockdate has passed.
// Implementations are safe for concurrent use.
type Client interface {
	// Encrypt encrypts args.Plaintext with the public key of args.Lockdate and returns the
	// envelope.
	Encrypt(ctx context.Context, args EncryptArgs) (string, error)

	// Decrypt decrypts an envelope. On failure the returned error is a *DecryptError
	// holding the hint and filename recovered before the failure.
	Decrypt(ctx context.Context, ciphertext string) (*DecryptResult, error)

	// LockdateFromEnvelope returns the lockdate of an envelope without fetching any key.
	LockdateFromEnvelope(ciphertext string) (time.Time, error)

	// DatetimeFormat returns the strftime pattern of lockdates.
	DatetimeFormat() string

	// Version returns the envelope version the client produces.
	Version() envelope.Version
}

// EncryptArgs are the inputs of an encryption.
type EncryptArgs struct {
	Plaintext string
	Lockdate  time.Time
	// Hint is stored unencrypted next to the cipher. Requires V2 or later.
	Hint string
	// Filename is stored unencrypted next to the cipher. Requires V3.
	Filename string
}

// DecryptResult is the outcome of a successful decryption. Hint and Filename are empty
// when the envelope version does not carry them.
type DecryptResult struct {
	Plaintext string
	Hint      string
	Filename  string
}

// DecryptError is returned by Decrypt. It keeps the hint and filename that could be
// decoded before the failure, so that they can still be shown to the user.
type DecryptError struct {
	Err      error
	Hint     string
	Filename string
}

func (e *DecryptError) Error() string {
	return e.Err.Error()
}

func (e *DecryptError) Unwrap() error {
	return e.Err
}

// asDecryptError returns err as a *DecryptError, wrapping it if needed.
func asDecryptError(err error) *DecryptError {
	var decryptErr *DecryptError
	if errors.As(err, &decryptErr) {
		return decryptErr
	}
	return &DecryptError{Err: err}
}

// ErrUnsupported is matched by every CapabilityError.
var ErrUnsupported = errors.New("not supported by client version")

// CapabilityError is returned when a client is asked for a feature its envelope version
// cannot carry.
type CapabilityError struct {
	Version envelope.Version
	Feature string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("client version %s does not support a %s", e.Version, e.Feature)
}

func (e *CapabilityError) Is(target error) bool {
	return target == ErrUnsupported
}

const (
	featureHint     = "plaintext hint"
	featureFilename = "filename"
)

// New creates the client for a fixed envelope version.
func New(version envelope.Version, fetcher keyfetch.KeyFetcher) (Client, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("cannot create client: key fetcher cannot be nil")
	}

	switch version {
	case envelope.V1:
		return NewV1(fetcher), nil
	case envelope.V2:
		return NewV2(fetcher), nil
	case envelope.V3:
		return NewV3(fetcher), nil
	}

	return nil, &envelope.UnknownVersionError{Tag: version.String()}
}

// NewDefault creates a VersionSelector, which picks the envelope version per call.
func NewDefault(fetcher keyfetch.KeyFetcher, opts ...SelectorOption) (*VersionSelector, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("cannot create client: key fetcher cannot be nil")
	}

	return NewVersionSelector(fetcher, opts...), nil
}
