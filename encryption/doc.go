// Package encryption seals small secrets with an AEAD cipher.
//
// Keys are derived from a passphrase with SHA-256. Each sealed value is
// nonce || ciphertext and may be bound to associated data (for example the
// storage key it was written under), so a value copied to another slot
// fails to open.
//
//	enc, err := encryption.New("passphrase", encryption.WithAlgorithm(encryption.AlgorithmChaCha20))
//	sealed, err := enc.Seal([]byte("token"), []byte("account"))
//	plain, err := enc.Open(sealed, []byte("account"))
package encryption
