package vault

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/phrasevault/phrasevault/store"
)

// Storage keys. Wallet records are namespaced by id; the registry and the
// active-wallet pointer each live under a single fixed key.
const (
	walletKeyPrefix = "wallet:"
	registryKey     = "wallet_registry"
	activeWalletKey = "active_wallet"
)

// recordVersion is the current wallet record schema version. Records with a
// different version are rejected on load.
const recordVersion = 1

// vaultRecord is the persisted per-wallet blob. The ciphertext is base64,
// salt and IV are hex, and the PIN hash carries its own salt in the
// verifier's salt:hash form.
type vaultRecord struct {
	EncryptedMnemonic string `json:"encrypted_mnemonic"`
	Salt              string `json:"salt"`
	IV                string `json:"iv"`
	Timestamp         int64  `json:"timestamp"`
	Version           int    `json:"version"`
	PinHash           string `json:"pin_hash"`
}

// registryEntry is one row of the persisted wallet registry.
type registryEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	Network   string `json:"network"`
	CreatedAt int64  `json:"created_at"`
}

func walletKey(id string) string {
	return walletKeyPrefix + id
}

// loadRecord reads and validates the persisted blob for a wallet id. All
// failure modes map to ErrStorage: a missing record, an unreadable store,
// an unparsable blob, and an unsupported schema version.
func (v *Vault) loadRecord(id string) (*vaultRecord, error) {
	raw, err := v.store.Get(walletKey(id))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: no record for wallet %s", ErrStorage, id)
	}
	if err != nil {
		return nil, storageErr("load wallet record", err)
	}

	var rec vaultRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, storageErr("parse wallet record", err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("%w: unsupported record version %d", ErrStorage, rec.Version)
	}
	return &rec, nil
}

// saveRecord persists a wallet blob under its namespaced key. The store's
// Set replaces any previous blob in one operation, so a failed write leaves
// the old record intact.
func (v *Vault) saveRecord(id string, rec *vaultRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return storageErr("encode wallet record", err)
	}
	if err := v.store.Set(walletKey(id), raw); err != nil {
		return storageErr("save wallet record", err)
	}
	return nil
}

func (v *Vault) loadRegistry() ([]registryEntry, error) {
	raw, err := v.store.Get(registryKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("load wallet registry", err)
	}

	var entries []registryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, storageErr("parse wallet registry", err)
	}
	return entries, nil
}

func (v *Vault) saveRegistry(entries []registryEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return storageErr("encode wallet registry", err)
	}
	if err := v.store.Set(registryKey, raw); err != nil {
		return storageErr("save wallet registry", err)
	}
	return nil
}
