// Package keychain is the secure storage boundary: a key-value store for
// credentials scoped by a service name and an optional access group.
//
// Failures surface as *Error carrying a platform style status code and a
// human readable message. They never mix with the request error taxonomy.
//
// FileStore keeps each item as an encrypted file; MemoryStore is a
// process-local store for tests and ephemeral sessions.
package keychain
