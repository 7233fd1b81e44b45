package client

import (
	"context"
	"time"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
)

// Compile-time check that V2Client implements Client
var _ Client = (*V2Client)(nil)

// V2Client produces version 2 envelopes. It delegates the cipher to a V1Client and only
// handles the hint.
type V2Client struct {
	v1 *V1Client
}

// NewV2 creates a version 2 client.
func NewV2(fetcher keyfetch.KeyFetcher) *V2Client {
	return &V2Client{v1: NewV1(fetcher)}
}

func (c *V2Client) Version() envelope.Version {
	return envelope.V2
}

func (c *V2Client) DatetimeFormat() string {
	return c.v1.DatetimeFormat()
}

func (c *V2Client) Encrypt(ctx context.Context, args EncryptArgs) (string, error) {
	if args.Filename != "" {
		return "", &CapabilityError{Version: envelope.V2, Feature: featureFilename}
	}

	inner, err := c.v1.Encrypt(ctx, EncryptArgs{
		Plaintext: args.Plaintext,
		Lockdate:  args.Lockdate,
	})
	if err != nil {
		return "", err
	}

	return envelope.Wrap(inner, envelope.V2, args.Hint)
}

// Decrypt decodes the hint before anything else, so that it is reported even if the
// private key is not released yet.
func (c *V2Client) Decrypt(ctx context.Context, ciphertext string) (*DecryptResult, error) {
	inner, hint, err := envelope.Unwrap(ciphertext, envelope.V2)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}

	result, err := c.v1.Decrypt(ctx, inner)
	if err != nil {
		decryptErr := asDecryptError(err)
		decryptErr.Hint = hint
		return nil, decryptErr
	}

	result.Hint = hint
	return result, nil
}

func (c *V2Client) LockdateFromEnvelope(ciphertext string) (time.Time, error) {
	return envelope.ExtractLockdate(ciphertext, envelope.V2)
}
