package rsa

import (
	"errors"
	"fmt"
)

// ErrCrypto is matched by every failure of an RSA operation.
var ErrCrypto = errors.New("rsa operation failed")

// CryptoError reports a failed encrypt or decrypt. A corrupt ciphertext, a wrong key and
// a malformed cipher length all end up here.
type CryptoError struct {
	Op    string
	Chunk int
	Err   error
}

func (e *CryptoError) Error() string {
	if e.Chunk < 0 {
		return fmt.Sprintf("failed to %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s chunk %d: %s", e.Op, e.Chunk, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

func (e *CryptoError) Is(target error) bool {
	return target == ErrCrypto
}
