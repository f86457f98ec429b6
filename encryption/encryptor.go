package encryption

import (
	"errors"
	"fmt"
)

// Encryptor seals and opens byte slices.
type Encryptor interface {
	Seal(plaintext, associated []byte) ([]byte, error)
	Open(sealed, associated []byte) ([]byte, error)
	Algorithm() Algorithm
}

// Algorithm represents supported encryption algorithms.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM (default).
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305, faster on CPUs without AES-NI.
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

var (
	ErrEmptyKey           = errors.New("encryption: empty key")
	ErrCiphertextTooShort = errors.New("encryption: ciphertext too short")
)

// ParseAlgorithm maps a configuration string to an Algorithm. The empty
// string selects AES-256-GCM.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case "", AlgorithmAESGCM:
		return AlgorithmAESGCM, nil
	case AlgorithmChaCha20:
		return AlgorithmChaCha20, nil
	}
	return "", fmt.Errorf("encryption: unsupported algorithm %q", s)
}

// Option configures New.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the encryption algorithm (default: AES-256-GCM).
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// New creates an Encryptor keyed by passphrase.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	if passphrase == "" {
		return nil, ErrEmptyKey
	}
	o := &options{algorithm: AlgorithmAESGCM}
	for _, opt := range opts {
		opt(o)
	}

	key := deriveKey(passphrase)
	switch o.algorithm {
	case AlgorithmChaCha20:
		return newChaCha20(key)
	case AlgorithmAESGCM, "":
		return newAESGCM(key)
	}
	return nil, fmt.Errorf("encryption: unsupported algorithm %q", o.algorithm)
}
