package envelope

// Encryptor encrypts a plaintext into the raw cipher bytes stored in an envelope.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
}

// Decryptor reverses an Encryptor.
type Decryptor interface {
	Decrypt(cipher []byte) ([]byte, error)
}
