package store

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore implements Store on the operating system keychain. Every vault
// key becomes one keychain item under the configured service name; values are
// base64-encoded because keychain items are strings.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store backed by the OS keychain under the given
// service name.
func NewKeyringStore(service string) *KeyringStore {
	return &KeyringStore{service: service}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *KeyringStore) Get(key string) ([]byte, error) {
	encoded, err := keyring.Get(s.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keyring get: %w", err)
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode keyring value: %w", err)
	}
	return value, nil
}

// Set stores value under key as one keychain item.
func (s *KeyringStore) Set(key string, value []byte) error {
	if err := keyring.Set(s.service, key, base64.StdEncoding.EncodeToString(value)); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

// Delete removes key. Absent keys are not an error.
func (s *KeyringStore) Delete(key string) error {
	err := keyring.Delete(s.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}

// Close is a no-op; keychain items need no handle.
func (s *KeyringStore) Close() error {
	return nil
}
