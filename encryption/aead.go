package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

type aeadEncryptor struct {
	aead cipher.AEAD
	alg  Algorithm
}

func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

func newAESGCM(key []byte) (*aeadEncryptor, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &aeadEncryptor{aead: gcm, alg: AlgorithmAESGCM}, nil
}

func newChaCha20(key []byte) (*aeadEncryptor, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create chacha20: %w", err)
	}
	return &aeadEncryptor{aead: aead, alg: AlgorithmChaCha20}, nil
}

func (e *aeadEncryptor) Algorithm() Algorithm { return e.alg }

// Seal returns nonce || ciphertext.
func (e *aeadEncryptor) Seal(plaintext, associated []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, associated), nil
}

// Open reverses Seal. It fails when sealed was produced with other
// associated data or another key.
func (e *aeadEncryptor) Open(sealed, associated []byte) ([]byte, error) {
	n := e.aead.NonceSize()
	if len(sealed) < n+e.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := e.aead.Open(nil, sealed[:n], sealed[n:], associated)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
