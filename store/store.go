// Package store provides the persistence capability behind the vault: a
// narrow key-value contract plus interchangeable backends for it.
package store

import (
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// Store is the abstract persistence capability the vault depends on.
// The concrete medium is selected by the host environment; implementations
// must be safe for concurrent use and must replace values atomically, so a
// failed Set never leaves a half-written record behind.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying medium.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendBolt    = "bbolt"
	BackendSQLite  = "sqlite"
	BackendKeyring = "keyring"
)

// Backends returns the backend names accepted by Open.
func Backends() []string {
	return []string{BackendMemory, BackendBolt, BackendSQLite, BackendKeyring}
}

// Open constructs the backend selected by name. For the file-backed backends
// path is the database file; for the keyring backend it is the keychain
// service name; the memory backend ignores it.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendBolt:
		return NewBoltStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendKeyring:
		return NewKeyringStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
