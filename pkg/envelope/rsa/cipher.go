package rsa

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/snailcrypt/snailcrypt-go/pkg/envelope"
)

const (
	// minRSAKeySize is the minimum RSA key size in bits; the key-release service hands out
	// larger keys, 2048 is a floor to make sure a weak key can't accidentally be used
	minRSAKeySize = 2048

	// PlaintextChunkSize is the number of plaintext bytes encrypted per RSA operation. It
	// stays below the OAEP limit of every key size the service uses.
	PlaintextChunkSize = 126
)

// Compile-time checks that Encryptor and Decryptor fit the envelope package
var (
	_ envelope.Encryptor = (*Encryptor)(nil)
	_ envelope.Decryptor = (*Decryptor)(nil)
)

// Encryptor encrypts plaintext for a single lockdate's public key.
type Encryptor struct {
	publicKey *rsa.PublicKey
	random    io.Reader
}

// NewEncryptor creates a new Encryptor with the provided RSA public key.
// The RSA key must be at least minRSAKeySize bits.
func NewEncryptor(publicKey *rsa.PublicKey) (*Encryptor, error) {
	if publicKey == nil {
		return nil, fmt.Errorf("RSA public key cannot be nil")
	}

	if err := checkKeySize(publicKey); err != nil {
		return nil, err
	}

	return &Encryptor{
		publicKey: publicKey,
		random:    rand.Reader,
	}, nil
}

// Encrypt splits plaintext into PlaintextChunkSize blocks and encrypts each of them.
// The result is len(plaintext)/PlaintextChunkSize (rounded up) cipher blocks of the key size.
// An empty plaintext yields an empty cipher.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	chunkSize := e.publicKey.Size()
	chunks := (len(plaintext) + PlaintextChunkSize - 1) / PlaintextChunkSize

	out := make([]byte, 0, chunks*chunkSize)
	for i := 0; i < chunks; i++ {
		start := i * PlaintextChunkSize
		end := min(start+PlaintextChunkSize, len(plaintext))

		block, err := rsa.EncryptOAEP(sha1.New(), e.random, e.publicKey, plaintext[start:end], nil)
		if err != nil {
			return nil, &CryptoError{Op: "encrypt", Chunk: i, Err: err}
		}
		out = append(out, block...)
	}

	return out, nil
}

// Decryptor decrypts ciphers produced by an Encryptor holding the matching public key.
type Decryptor struct {
	privateKey *rsa.PrivateKey
}

// NewDecryptor creates a new Decryptor with the provided RSA private key.
// The RSA key must be at least minRSAKeySize bits.
func NewDecryptor(privateKey *rsa.PrivateKey) (*Decryptor, error) {
	if privateKey == nil {
		return nil, fmt.Errorf("RSA private key cannot be nil")
	}

	if err := checkKeySize(&privateKey.PublicKey); err != nil {
		return nil, err
	}

	return &Decryptor{privateKey: privateKey}, nil
}

// Decrypt reverses Encrypt.
//
// Decrypted blocks are laid out at multiples of PlaintextChunkSize in a buffer the size of
// the cipher, and the buffer is cut at its first NUL byte. A plaintext that itself contains
// a NUL byte therefore comes back truncated at that byte.
func (d *Decryptor) Decrypt(cipher []byte) ([]byte, error) {
	chunkSize := d.privateKey.Size()
	if len(cipher)%chunkSize != 0 {
		return nil, &CryptoError{
			Op:    "decrypt",
			Chunk: -1,
			Err:   fmt.Errorf("cipher length %d is not a multiple of the key size %d", len(cipher), chunkSize),
		}
	}

	buf := make([]byte, len(cipher))
	for i := 0; i*chunkSize < len(cipher); i++ {
		cipherEnd := (i + 1) * chunkSize

		block, err := rsa.DecryptOAEP(sha1.New(), nil, d.privateKey, cipher[i*chunkSize:cipherEnd], nil)
		if err != nil {
			return nil, &CryptoError{Op: "decrypt", Chunk: i, Err: err}
		}

		// the window starts where this chunk's plaintext belongs and ends at the cipher
		// chunk boundary, which always leaves room for a full OAEP payload
		window := buf[i*PlaintextChunkSize : cipherEnd]
		if len(block) > len(window) {
			return nil, &CryptoError{Op: "decrypt", Chunk: i, Err: fmt.Errorf("decrypted block of %d bytes does not fit", len(block))}
		}
		copy(window, block)
	}

	if end := bytes.IndexByte(buf, 0); end >= 0 {
		buf = buf[:end]
	}

	return buf, nil
}

func checkKeySize(publicKey *rsa.PublicKey) error {
	if publicKey.N == nil {
		return fmt.Errorf("RSA public key has no modulus")
	}

	keySize := publicKey.N.BitLen()
	if keySize < minRSAKeySize {
		return fmt.Errorf("RSA key size must be at least %d bits, got %d bits", minRSAKeySize, keySize)
	}

	return nil
}
