package client

import (
	"context"
	"time"

	"k8s.io/klog/v2"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
	"github.com/snailcrypt/snailcrypt-go/pkg/envelope/keyfetch"
	"github.com/snailcrypt/snailcrypt-go/pkg/logs"
)

// Compile-time check that VersionSelector implements Client
var _ Client = (*VersionSelector)(nil)

// VersionSelector holds one client per envelope version. It encrypts with the oldest
// version able to carry the given fields and decrypts with the version that produced
// the envelope.
type VersionSelector struct {
	analyzer envelope.Analyzer

	v1 *V1Client
	v2 *V2Client
	v3 *V3Client
}

// SelectorOption configures a VersionSelector.
type SelectorOption func(*VersionSelector)

// WithAnalyzer replaces the analyzer used to identify envelope versions.
func WithAnalyzer(analyzer envelope.Analyzer) SelectorOption {
	return func(s *VersionSelector) {
		s.analyzer = analyzer
	}
}

// NewVersionSelector creates a VersionSelector whose clients share fetcher.
func NewVersionSelector(fetcher keyfetch.KeyFetcher, opts ...SelectorOption) *VersionSelector {
	s := &VersionSelector{
		analyzer: envelope.DefaultAnalyzer{},
		v1:       NewV1(fetcher),
		v2:       NewV2(fetcher),
		v3:       NewV3(fetcher),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version returns the newest version the selector can produce.
func (s *VersionSelector) Version() envelope.Version {
	return envelope.Latest
}

func (s *VersionSelector) DatetimeFormat() string {
	return envelope.DatetimeFormat
}

// ClientFor returns the client handling envelopes of version v.
func (s *VersionSelector) ClientFor(v envelope.Version) (Client, error) {
	switch v {
	case envelope.V1:
		return s.v1, nil
	case envelope.V2:
		return s.v2, nil
	case envelope.V3:
		return s.v3, nil
	}
	return nil, &envelope.UnknownVersionError{Tag: v.String()}
}

// SelectVersion returns the version Encrypt uses for args.
func SelectVersion(args EncryptArgs) envelope.Version {
	switch {
	case args.Filename != "":
		return envelope.V3
	case args.Hint != "":
		return envelope.V2
	}
	return envelope.V1
}

func (s *VersionSelector) Encrypt(ctx context.Context, args EncryptArgs) (string, error) {
	v := SelectVersion(args)
	klog.FromContext(ctx).WithName("client").V(logs.Trace).Info("selected client version", "version", v)

	c, err := s.ClientFor(v)
	if err != nil {
		return "", err
	}
	return c.Encrypt(ctx, args)
}

func (s *VersionSelector) Decrypt(ctx context.Context, ciphertext string) (*DecryptResult, error) {
	v, err := s.analyzer.Version(ciphertext)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}

	c, err := s.ClientFor(v)
	if err != nil {
		return nil, &DecryptError{Err: err}
	}
	return c.Decrypt(ctx, ciphertext)
}

func (s *VersionSelector) LockdateFromEnvelope(ciphertext string) (time.Time, error) {
	v, err := s.analyzer.Version(ciphertext)
	if err != nil {
		return time.Time{}, err
	}

	c, err := s.ClientFor(v)
	if err != nil {
		return time.Time{}, err
	}
	return c.LockdateFromEnvelope(ciphertext)
}
