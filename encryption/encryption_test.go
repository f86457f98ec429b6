package encryption

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	for _, alg := range []Algorithm{AlgorithmAESGCM, AlgorithmChaCha20} {
		enc, err := New("my-secret-key", WithAlgorithm(alg))
		if err != nil {
			t.Fatalf("%s: New failed: %v", alg, err)
		}
		if enc.Algorithm() != alg {
			t.Errorf("expected %s, got %s", alg, enc.Algorithm())
		}

		tests := []struct {
			name      string
			plaintext []byte
		}{
			{"simple", []byte("hello world")},
			{"empty", []byte{}},
			{"unicode", []byte("こんにちは世界")},
			{"json", []byte(`{"access_token":"abc","scope":"public"}`)},
		}
		for _, tc := range tests {
			t.Run(string(alg)+"/"+tc.name, func(t *testing.T) {
				sealed, err := enc.Seal(tc.plaintext, []byte("slot"))
				if err != nil {
					t.Fatalf("Seal failed: %v", err)
				}
				opened, err := enc.Open(sealed, []byte("slot"))
				if err != nil {
					t.Fatalf("Open failed: %v", err)
				}
				if !bytes.Equal(opened, tc.plaintext) {
					t.Errorf("expected %q, got %q", tc.plaintext, opened)
				}
			})
		}
	}
}

func TestSealProducesDifferentCiphertexts(t *testing.T) {
	enc, _ := New("my-key")
	a, _ := enc.Seal([]byte("same input"), nil)
	b, _ := enc.Seal([]byte("same input"), nil)
	if bytes.Equal(a, b) {
		t.Error("expected random nonces to produce different ciphertexts")
	}
}

func TestOpen_WrongAssociatedData(t *testing.T) {
	enc, _ := New("my-key")
	sealed, _ := enc.Seal([]byte("token"), []byte("account"))
	if _, err := enc.Open(sealed, []byte("other")); err == nil {
		t.Error("expected failure with different associated data")
	}
}

func TestOpen_WrongKey(t *testing.T) {
	a, _ := New("key-a")
	b, _ := New("key-b")
	sealed, _ := a.Seal([]byte("token"), nil)
	if _, err := b.Open(sealed, nil); err == nil {
		t.Error("expected failure with a different key")
	}
}

func TestOpen_TooShort(t *testing.T) {
	enc, _ := New("my-key")
	if _, err := enc.Open([]byte{1, 2, 3}, nil); err != ErrCiphertextTooShort {
		t.Errorf("expected ErrCiphertextTooShort, got %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(""); err != ErrEmptyKey {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
	if _, err := New("k", WithAlgorithm("rot13")); err == nil {
		t.Error("expected unsupported algorithm error")
	}
	if _, err := ParseAlgorithm("rot13"); err == nil {
		t.Error("expected parse error")
	}
	if alg, _ := ParseAlgorithm(""); alg != AlgorithmAESGCM {
		t.Errorf("expected default AES-GCM, got %s", alg)
	}
}
