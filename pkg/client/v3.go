package client

import (
	"context"
	"time"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
)

// Compile-time check that V3Client implements Client
var _ Client = (*V3Client)(nil)

// V3Client produces version 3 envelopes. It delegates to a V2Client and only handles the
// filename.
type V3Client struct {
	v2 *V2Client
}

// NewV3 creates a version 3 client.
func NewV3(fetcher keyfetch.KeyFetcher) *V3Client {
	return &V3Client{v2: NewV2(fetcher)}
}

func (c *V3Client) Version() envelope.Version {
	return envelope.V3
}

func (c *V3Client) DatetimeFormat() string {
	return c.v2.DatetimeFormat()
}

func (c *V3Client) Encrypt(ctx context.Context, args EncryptArgs) (string, error) {
	inner, err := c.v2.Encrypt(ctx, EncryptArgs{
		Plaintext: args.Plaintext,
		Lockdate:  args.Lockdate,
		Hint:      args.Hint,
	})
	if err != nil {
		return "", err
	}

	return envelope.Wrap(inner, envelope.V3, args.Filename)
}

func (c *V3Client) Decrypt(ctx context.Context, ciphertext string) (*DecryptResult, error) {
	inner, filename, err := envelope.Unwrap(ciphertext, envelope.V3)
	if err != nil {
		decryptErr := &DecryptError{Err: err}
		// Parse decodes the hint before the filename, so a corrupt filename still
		// leaves the hint.
		if env, _ := envelope.Parse(ciphertext); env != nil {
			decryptErr.Hint = env.Hint
		}
		return nil, decryptErr
	}

	result, err := c.v2.Decrypt(ctx, inner)
	if err != nil {
		decryptErr := asDecryptError(err)
		decryptErr.Filename = filename
		return nil, decryptErr
	}

	result.Filename = filename
	return result, nil
}

// LockdateFromEnvelope only decodes the lockdate field, so it succeeds even if the hint
// or filename is corrupt.
func (c *V3Client) LockdateFromEnvelope(ciphertext string) (time.Time, error) {
	return envelope.ExtractLockdate(ciphertext, envelope.V3)
}
