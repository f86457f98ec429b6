// Package storage keeps named blobs in a single local directory.
//
// Dir writes every blob atomically (temp file, fsync, rename) so readers
// never observe a partial file, and creates its directory lazily so that
// RemoveAll can drop the whole directory at any time. It backs both the
// response cache disk tier and the keychain file store.
package storage
