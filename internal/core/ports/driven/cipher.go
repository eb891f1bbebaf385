package driven

// Cipher encrypts token material at rest. The TokenStore calls Encrypt on
// write and Decrypt on read; nothing else touches ciphertext.
type Cipher interface {
	// Encrypt returns an opaque encoding of the plaintext.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt.
	Decrypt(ciphertext string) (string, error)
}
