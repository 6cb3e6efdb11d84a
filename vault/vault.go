// Package vault implements a PIN-gated local vault for BIP-39 recovery
// phrases. Phrases are encrypted at rest under a key derived from the
// user's PIN, and repeated unlock failures arm a timed lockout.
package vault

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrasevault/phrasevault/internal/crypto"
	"github.com/phrasevault/phrasevault/internal/lockout"
	"github.com/phrasevault/phrasevault/internal/validation"
	"github.com/phrasevault/phrasevault/metrics"
	"github.com/phrasevault/phrasevault/store"
)

// DefaultNetwork is applied to wallets created without an explicit network.
const DefaultNetwork = "mainnet"

// Vault orchestrates crypto, lockout, and store operations.
type Vault struct {
	store  store.Store
	guard  *lockout.Guard
	logger *slog.Logger

	keyIterations    int
	verifyIterations int
	minPinLength     int
	maxPinLength     int
	defaultNetwork   string

	mu sync.RWMutex
}

// Options tunes a Vault. Zero values take the package defaults.
type Options struct {
	// KeyIterations is the PBKDF2 cost for the mnemonic encryption key.
	KeyIterations int

	// VerifyIterations is the PBKDF2 cost for the stored PIN verifier. It
	// is deliberately cheaper than KeyIterations: the verifier only gates
	// the expensive derivation.
	VerifyIterations int

	// MaxAttempts is the failed-unlock threshold. A negative value
	// disables lockout.
	MaxAttempts int

	// LockoutDuration is how long the vault stays locked once the
	// threshold is reached.
	LockoutDuration time.Duration

	// MinPinLength and MaxPinLength bound accepted PIN lengths.
	MinPinLength int
	MaxPinLength int

	// DefaultNetwork is applied to wallets created without one.
	DefaultNetwork string

	Logger *slog.Logger
}

// New opens a vault over the given store, restoring any persisted lockout
// state.
func New(st store.Store, opts Options) (*Vault, error) {
	if opts.KeyIterations == 0 {
		opts.KeyIterations = crypto.DefaultKeyIterations
	}
	if opts.VerifyIterations == 0 {
		opts.VerifyIterations = crypto.DefaultVerifyIterations
	}
	if opts.MinPinLength == 0 {
		opts.MinPinLength = validation.MinPinLength
	}
	if opts.MaxPinLength == 0 {
		opts.MaxPinLength = validation.MaxPinLength
	}
	if opts.DefaultNetwork == "" {
		opts.DefaultNetwork = DefaultNetwork
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	guard, err := lockout.New(st, lockout.Config{
		MaxAttempts: opts.MaxAttempts,
		Duration:    opts.LockoutDuration,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("restore lockout state: %w", err)
	}

	return &Vault{
		store:            st,
		guard:            guard,
		logger:           opts.Logger,
		keyIterations:    opts.KeyIterations,
		verifyIterations: opts.VerifyIterations,
		minPinLength:     opts.MinPinLength,
		maxPinLength:     opts.MaxPinLength,
		defaultNetwork:   opts.DefaultNetwork,
	}, nil
}

// Close closes the underlying store.
func (v *Vault) Close() error {
	return v.store.Close()
}

// Unlock verifies the PIN and returns the decrypted mnemonic. An empty id
// targets the active wallet. A successful unlock resets the lockout
// counter; the mnemonic is returned once and never retained.
func (v *Vault) Unlock(pin, id string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	mnemonic, _, err := v.unlockLocked(pin, id)
	v.observeUnlock(err)
	return mnemonic, err
}

// ChangePin re-encrypts a wallet's mnemonic under a key derived from the
// new PIN. The old PIN must unlock the wallet first, with failures counted
// like any other unlock; the rewrite uses a wholly fresh salt, IV, and PIN
// hash while keeping the wallet's id and metadata.
func (v *Vault) ChangePin(oldPin, newPin, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := validation.Pin(newPin, v.minPinLength, v.maxPinLength); err != nil {
		return err
	}

	mnemonic, id, err := v.unlockLocked(oldPin, id)
	v.observeUnlock(err)
	if err != nil {
		return err
	}

	entry, err := v.findEntry(id)
	if err != nil {
		return err
	}

	// The rewrite replaces the record in a single Set: a failed write
	// leaves the previous record intact and the old PIN valid.
	if _, err := v.writeWallet(id, mnemonic, newPin, WalletParams{
		Name:    entry.Name,
		Address: entry.Address,
		Network: entry.Network,
	}, time.UnixMilli(entry.CreatedAt)); err != nil {
		return err
	}

	v.logger.Info("pin changed", "id", id)
	metrics.PinChangesTotal.Inc()
	return nil
}

// IsLockedOut reports whether the lockout window is active.
func (v *Vault) IsLockedOut() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.guard.IsLockedOut()
}

// LockoutRemaining returns the time left in the lockout window, or zero.
func (v *Vault) LockoutRemaining() time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.guard.Remaining()
}

// unlockLocked runs the unlock sequence under the vault write lock and
// returns the plaintext mnemonic with the resolved wallet id. The lockout
// check comes first: a locked vault rejects every attempt, uncounted,
// before any record is read.
func (v *Vault) unlockLocked(pin, id string) (string, string, error) {
	if v.guard.IsLockedOut() {
		return "", "", v.lockedOutErr()
	}

	id, err := v.resolveID(id)
	if err != nil {
		return "", "", err
	}

	rec, err := v.loadRecord(id)
	if err != nil {
		return "", "", err
	}

	if !crypto.VerifyPin(pin, rec.PinHash, v.verifyIterations) {
		return "", "", v.failedAttempt()
	}

	salt, err := hex.DecodeString(rec.Salt)
	if err != nil {
		return "", "", storageErr("decode salt", err)
	}
	iv, err := hex.DecodeString(rec.IV)
	if err != nil {
		return "", "", storageErr("decode iv", err)
	}

	key, err := crypto.DeriveKey(pin, salt, v.keyIterations)
	if err != nil {
		return "", "", storageErr("derive key", err)
	}
	mnemonic, err := crypto.DecryptString(key, iv, rec.EncryptedMnemonic)
	crypto.ZeroBytes(key)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidKeySize) || errors.Is(err, crypto.ErrInvalidIVSize) {
			return "", "", storageErr("decrypt mnemonic", err)
		}
		// The verifier passed but the ciphertext would not decrypt.
		// Counted the same as a wrong PIN.
		return "", "", v.failedAttempt()
	}
	metrics.CryptoOperationsTotal.WithLabelValues("decrypt").Inc()

	if err := validation.Mnemonic(mnemonic); err != nil {
		// Decryption produced garbage instead of a phrase.
		return "", "", v.failedAttempt()
	}

	if err := v.guard.Reset(); err != nil {
		v.logger.Warn("failed to reset lockout state", "error", err)
	}
	return mnemonic, id, nil
}

// resolveID maps an empty id to the active wallet.
func (v *Vault) resolveID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	raw, err := v.store.Get(activeWalletKey)
	if errors.Is(err, store.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: no active wallet", ErrStorage)
	}
	if err != nil {
		return "", storageErr("load active wallet", err)
	}
	return string(raw), nil
}

// failedAttempt records one failed unlock and picks the error for it: the
// attempt that reaches the threshold reports the lockout it armed, earlier
// ones report the attempts left.
func (v *Vault) failedAttempt() error {
	remaining := v.guard.RecordFailure()
	if v.guard.IsLockedOut() {
		metrics.LockoutsTotal.Inc()
		v.logger.Warn("lockout armed", "duration", v.guard.Remaining())
		return v.lockedOutErr()
	}
	return fmt.Errorf("%w: %d attempts remaining", ErrInvalidPin, remaining)
}

func (v *Vault) lockedOutErr() error {
	return fmt.Errorf("%w: try again in %s", ErrLockedOut, v.guard.Remaining().Round(time.Second))
}

func (v *Vault) observeUnlock(err error) {
	switch {
	case err == nil:
		metrics.UnlockAttemptsTotal.WithLabelValues("success").Inc()
	case errors.Is(err, ErrLockedOut):
		metrics.UnlockAttemptsTotal.WithLabelValues("locked_out").Inc()
	case errors.Is(err, ErrInvalidPin):
		metrics.UnlockAttemptsTotal.WithLabelValues("invalid_pin").Inc()
	case errors.Is(err, ErrStorage):
		metrics.UnlockAttemptsTotal.WithLabelValues("storage_error").Inc()
	}
}
