package client

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"k8s.io/klog/v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
	snailrsa "github.com/snailcrypt/snailcrypt-go/pkg/envelope/rsa"
	"github.com/snailcrypt/snailcrypt-go/pkg/logs"
)

// Compile-time check that V1Client implements Client
var _ Client = (*V1Client)(nil)

// V1Client produces version 1 envelopes, which carry neither hint nor filename.
type V1Client struct {
	fetcher keyfetch.KeyFetcher
}

// NewV1 creates a version 1 client.
func NewV1(fetcher keyfetch.KeyFetcher) *V1Client {
	return &V1Client{fetcher: fetcher}
}

func (c *V1Client) Version() envelope.Version {
	return envelope.V1
}

func (c *V1Client) DatetimeFormat() string {
	return envelope.DatetimeFormat
}

// Encrypt fails with a CapabilityError, before any key is fetched, if a hint or filename
// is given.
func (c *V1Client) Encrypt(ctx context.Context, args EncryptArgs) (string, error) {
	if args.Hint != "" {
		return "", &CapabilityError{Version: envelope.V1, Feature: featureHint}
	}
	if args.Filename != "" {
		return "", &CapabilityError{Version: envelope.V1, Feature: featureFilename}
	}

	logger := klog.FromContext(ctx).WithName("client")
	logger.V(logs.Debug).Info("encrypting", "version", envelope.V1, "lockdate", envelope.FormatLockdate(args.Lockdate), "size", len(args.Plaintext))

	publicPEM, err := c.fetcher.FetchPublicKey(ctx, args.Lockdate)
	if err != nil {
		return "", fmt.Errorf("failed to fetch public key: %w", err)
	}

	publicKey, err := snailrsa.LoadPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return "", &snailrsa.CryptoError{Op: "load public key", Chunk: -1, Err: err}
	}

	encryptor, err := snailrsa.NewEncryptor(publicKey)
	if err != nil {
		return "", &snailrsa.CryptoError{Op: "load public key", Chunk: -1, Err: err}
	}

	cipher, err := encryptor.Encrypt([]byte(args.Plaintext))
	if err != nil {
		return "", err
	}

	return envelope.Serialize(envelope.Envelope{
		Version:  envelope.V1,
		Lockdate: args.Lockdate,
		Cipher:   cipher,
	})
}

func (c *V1Client) Decrypt(ctx context.Context, ciphertext string) (*DecryptResult, error) {
	plaintext, err := c.decrypt(ctx, ciphertext)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}

	return &DecryptResult{Plaintext: plaintext}, nil
}

func (c *V1Client) decrypt(ctx context.Context, ciphertext string) (string, error) {
	env, err := envelope.Parse(ciphertext)
	if err != nil {
		return "", err
	}
	if env.Version != envelope.V1 {
		return "", &envelope.FormatError{Reason: fmt.Sprintf("expected a version %s envelope, got version %s", envelope.V1, env.Version)}
	}

	logger := klog.FromContext(ctx).WithName("client")
	logger.V(logs.Debug).Info("decrypting", "version", envelope.V1, "lockdate", envelope.FormatLockdate(env.Lockdate))

	privatePEM, err := c.fetcher.FetchPrivateKey(ctx, env.Lockdate)
	if err != nil {
		return "", fmt.Errorf("failed to fetch private key: %w", err)
	}

	privateKey, err := snailrsa.LoadPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return "", &snailrsa.CryptoError{Op: "load private key", Chunk: -1, Err: err}
	}

	decryptor, err := snailrsa.NewDecryptor(privateKey)
	if err != nil {
		return "", &snailrsa.CryptoError{Op: "load private key", Chunk: -1, Err: err}
	}

	plaintext, err := decryptor.Decrypt(env.Cipher)
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plaintext) {
		return "", &envelope.FormatError{Field: "plaintext", Reason: "not valid UTF-8"}
	}

	return string(plaintext), nil
}

func (c *V1Client) LockdateFromEnvelope(ciphertext string) (time.Time, error) {
	return envelope.ExtractLockdate(ciphertext, envelope.V1)
}
