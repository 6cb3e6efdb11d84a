package vault

import (
	"errors"
	"fmt"

	"github.com/phrasevault/phrasevault/internal/validation"
)

var (
	// ErrWeakPin is returned when a PIN fails policy validation. Weak-PIN
	// rejections never touch the lockout counter.
	ErrWeakPin = validation.ErrWeakPin

	// ErrInvalidMnemonic is returned when an imported phrase has no legal
	// BIP-39 word count.
	ErrInvalidMnemonic = validation.ErrInvalidMnemonic

	// ErrInvalidPin is returned when an unlock attempt fails verification.
	// It covers both a mismatched PIN and an undecryptable record so a
	// caller cannot tell the two apart.
	ErrInvalidPin = errors.New("invalid pin")

	// ErrLockedOut is returned while the failed-attempt window is active.
	// Attempts rejected during the window are not counted.
	ErrLockedOut = errors.New("too many failed attempts")

	// ErrStorage is returned when the backing store fails or a persisted
	// record cannot be parsed. Storage failures never increment the
	// lockout counter.
	ErrStorage = errors.New("storage failure")

	// ErrWalletNotFound is returned when a registry operation names an
	// unknown wallet id.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrEmptyWalletName is returned by Rename when the new name is blank.
	ErrEmptyWalletName = errors.New("wallet name must not be empty")
)

// storageErr wraps an underlying store or codec failure into ErrStorage so
// callers can match the whole class with errors.Is.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorage, op, err)
}
