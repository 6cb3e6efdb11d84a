package vault

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrasevault/phrasevault/internal/crypto"
	"github.com/phrasevault/phrasevault/internal/validation"
	"github.com/phrasevault/phrasevault/metrics"
	"github.com/phrasevault/phrasevault/store"
)

// Wallet describes one registered wallet. It never carries key material.
type Wallet struct {
	ID        string
	Name      string
	Address   string
	Network   string
	CreatedAt time.Time
}

// WalletParams carries the caller-supplied metadata for a new wallet.
type WalletParams struct {
	Name    string
	Address string
	Network string
}

// CreateWallet generates a fresh 24-word mnemonic, encrypts it under the
// PIN, and registers the wallet as active. The mnemonic is returned exactly
// once so the caller can show it for backup; it is never stored in
// plaintext.
func (v *Vault) CreateWallet(pin string, params WalletParams) (*Wallet, string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := validation.Pin(pin, v.minPinLength, v.maxPinLength); err != nil {
		return nil, "", err
	}

	mnemonic, err := NewMnemonic()
	if err != nil {
		return nil, "", err
	}

	w, err := v.writeWallet(uuid.New().String(), mnemonic, pin, params, time.Now())
	if err != nil {
		return nil, "", err
	}

	v.logger.Info("wallet created", "id", w.ID, "network", w.Network)
	metrics.WalletsCreatedTotal.WithLabelValues("generated").Inc()
	return w, mnemonic, nil
}

// ImportWallet stores an existing recovery phrase under a new wallet id.
// Only the phrase's shape is checked: any phrase with a legal BIP-39 word
// count is accepted, and interior whitespace is normalized to single
// spaces.
func (v *Vault) ImportWallet(mnemonic, pin string, params WalletParams) (*Wallet, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := validation.Pin(pin, v.minPinLength, v.maxPinLength); err != nil {
		return nil, err
	}
	if err := validation.Mnemonic(mnemonic); err != nil {
		return nil, err
	}

	normalized := strings.Join(strings.Fields(mnemonic), " ")
	w, err := v.writeWallet(uuid.New().String(), normalized, pin, params, time.Now())
	if err != nil {
		return nil, err
	}

	v.logger.Info("wallet imported", "id", w.ID, "network", w.Network)
	metrics.WalletsCreatedTotal.WithLabelValues("imported").Inc()
	return w, nil
}

// ListWallets returns all registered wallets in registry order.
func (v *Vault) ListWallets() ([]*Wallet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entries, err := v.loadRegistry()
	if err != nil {
		return nil, err
	}
	wallets := make([]*Wallet, len(entries))
	for i := range entries {
		wallets[i] = entries[i].wallet()
	}
	return wallets, nil
}

// GetWallet returns one wallet's metadata by id.
func (v *Vault) GetWallet(id string) (*Wallet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entry, err := v.findEntry(id)
	if err != nil {
		return nil, err
	}
	return entry.wallet(), nil
}

// Rename updates a wallet's display name.
func (v *Vault) Rename(id, name string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return ErrEmptyWalletName
	}

	entries, err := v.loadRegistry()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Name = name
			return v.saveRegistry(entries)
		}
	}
	return fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

// Delete removes a wallet's record and registry entry. An empty id targets
// the active wallet. When the deleted wallet was active, the first
// remaining wallet is promoted; with none left the pointer is cleared.
func (v *Vault) Delete(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if id == "" {
		raw, err := v.store.Get(activeWalletKey)
		if errors.Is(err, store.ErrKeyNotFound) {
			return fmt.Errorf("%w: no active wallet", ErrWalletNotFound)
		}
		if err != nil {
			return storageErr("load active wallet", err)
		}
		id = string(raw)
	}

	entries, err := v.loadRegistry()
	if err != nil {
		return err
	}
	idx := -1
	for i := range entries {
		if entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrWalletNotFound, id)
	}

	if err := v.store.Delete(walletKey(id)); err != nil {
		return storageErr("delete wallet record", err)
	}
	entries = append(entries[:idx], entries[idx+1:]...)
	if err := v.saveRegistry(entries); err != nil {
		return err
	}
	if err := v.fixActive(id, entries); err != nil {
		return err
	}

	v.logger.Info("wallet deleted", "id", id)
	metrics.WalletsDeletedTotal.Inc()
	return nil
}

// fixActive repairs the active pointer after a deletion: when the deleted
// wallet was active, the first remaining wallet takes its place, or the
// pointer is cleared when no wallets remain.
func (v *Vault) fixActive(deleted string, remaining []registryEntry) error {
	raw, err := v.store.Get(activeWalletKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return storageErr("load active wallet", err)
	}
	if string(raw) != deleted {
		return nil
	}

	if len(remaining) == 0 {
		if err := v.store.Delete(activeWalletKey); err != nil {
			return storageErr("clear active wallet", err)
		}
		return nil
	}
	if err := v.store.Set(activeWalletKey, []byte(remaining[0].ID)); err != nil {
		return storageErr("set active wallet", err)
	}
	return nil
}

// DeleteAll removes every wallet record, the registry, and the active
// pointer, and resets the lockout state.
func (v *Vault) DeleteAll() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	entries, err := v.loadRegistry()
	if err != nil {
		return err
	}
	for i := range entries {
		if err := v.store.Delete(walletKey(entries[i].ID)); err != nil {
			return storageErr("delete wallet record", err)
		}
	}
	if err := v.store.Delete(registryKey); err != nil {
		return storageErr("delete wallet registry", err)
	}
	if err := v.store.Delete(activeWalletKey); err != nil {
		return storageErr("clear active wallet", err)
	}
	if err := v.guard.Reset(); err != nil {
		return storageErr("reset lockout state", err)
	}

	v.logger.Info("vault wiped", "wallets", len(entries))
	return nil
}

// SetActiveWallet marks an existing wallet as the default unlock target.
func (v *Vault) SetActiveWallet(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.findEntry(id); err != nil {
		return err
	}
	if err := v.store.Set(activeWalletKey, []byte(id)); err != nil {
		return storageErr("set active wallet", err)
	}
	return nil
}

// ActiveWallet returns the wallet the active pointer names.
func (v *Vault) ActiveWallet() (*Wallet, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	raw, err := v.store.Get(activeWalletKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: no active wallet", ErrWalletNotFound)
	}
	if err != nil {
		return nil, storageErr("load active wallet", err)
	}

	entry, err := v.findEntry(string(raw))
	if err != nil {
		return nil, err
	}
	return entry.wallet(), nil
}

// WalletCount reports the number of registered wallets. It satisfies the
// metrics collector's stats interface.
func (v *Vault) WalletCount() (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entries, err := v.loadRegistry()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// writeWallet encrypts the mnemonic and persists the wallet record,
// registry entry, and active pointer. The caller must hold the write lock
// and have validated the PIN and mnemonic.
func (v *Vault) writeWallet(id, mnemonic, pin string, params WalletParams, createdAt time.Time) (*Wallet, error) {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	iv, err := crypto.GenerateIV()
	if err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}

	key, err := crypto.DeriveKey(pin, salt, v.keyIterations)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	ciphertext, err := crypto.EncryptString(key, iv, mnemonic)
	crypto.ZeroBytes(key)
	if err != nil {
		return nil, fmt.Errorf("encrypt mnemonic: %w", err)
	}
	metrics.CryptoOperationsTotal.WithLabelValues("encrypt").Inc()

	pinHash, err := crypto.HashPin(pin, v.verifyIterations)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	rec := &vaultRecord{
		EncryptedMnemonic: ciphertext,
		Salt:              hex.EncodeToString(salt),
		IV:                hex.EncodeToString(iv),
		Timestamp:         time.Now().UnixMilli(),
		Version:           recordVersion,
		PinHash:           pinHash,
	}
	if err := v.saveRecord(id, rec); err != nil {
		return nil, err
	}

	network := params.Network
	if network == "" {
		network = v.defaultNetwork
	}
	entry := registryEntry{
		ID:        id,
		Name:      params.Name,
		Address:   params.Address,
		Network:   network,
		CreatedAt: createdAt.UnixMilli(),
	}
	if err := v.upsertEntry(entry); err != nil {
		return nil, err
	}
	if err := v.store.Set(activeWalletKey, []byte(id)); err != nil {
		return nil, storageErr("set active wallet", err)
	}
	return entry.wallet(), nil
}

// upsertEntry adds or replaces the registry row for a wallet, preserving
// list order on update.
func (v *Vault) upsertEntry(entry registryEntry) error {
	entries, err := v.loadRegistry()
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].ID == entry.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return v.saveRegistry(entries)
}

func (v *Vault) findEntry(id string) (*registryEntry, error) {
	entries, err := v.loadRegistry()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrWalletNotFound, id)
}

func (e *registryEntry) wallet() *Wallet {
	return &Wallet{
		ID:        e.ID,
		Name:      e.Name,
		Address:   e.Address,
		Network:   e.Network,
		CreatedAt: time.UnixMilli(e.CreatedAt),
	}
}
