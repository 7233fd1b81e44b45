// Package rsa implements the chunked RSA-OAEP cipher used by snailcrypt envelopes.
//
// Plaintext is split into blocks of PlaintextChunkSize bytes and every block is encrypted
// on its own with RSA-OAEP (SHA-1, MGF1-SHA-1, empty label). The cipher blocks, each
// exactly the size of the key modulus, are concatenated without separators.
package rsa
