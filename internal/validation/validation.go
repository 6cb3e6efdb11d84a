// Package validation provides input validation for PINs and mnemonic phrases.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinPinLength is the default minimum PIN length.
	MinPinLength = 6
	// MaxPinLength is the default maximum PIN length.
	MaxPinLength = 20
)

var (
	// ErrWeakPin is the base error for every PIN strength failure.
	ErrWeakPin = errors.New("weak pin")
	// ErrPinTooShort is returned when a PIN is below the minimum length.
	ErrPinTooShort = fmt.Errorf("%w: pin is too short", ErrWeakPin)
	// ErrPinTooLong is returned when a PIN exceeds the maximum length.
	ErrPinTooLong = fmt.Errorf("%w: pin is too long", ErrWeakPin)
	// ErrPinRepeated is returned when every PIN character is identical.
	ErrPinRepeated = fmt.Errorf("%w: all characters are identical", ErrWeakPin)
	// ErrPinSequential is returned for ascending or descending runs like 123456.
	ErrPinSequential = fmt.Errorf("%w: sequential characters", ErrWeakPin)

	// ErrInvalidMnemonic is the base error for every mnemonic shape failure.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrMnemonicEmpty is returned when a phrase contains no words.
	ErrMnemonicEmpty = fmt.Errorf("%w: empty phrase", ErrInvalidMnemonic)
	// ErrMnemonicWordCount is returned for word counts outside the BIP-39 set.
	ErrMnemonicWordCount = fmt.Errorf("%w: word count must be 12, 15, 18, 21, or 24", ErrInvalidMnemonic)
)

// mnemonicWordCounts are the legal BIP-39 phrase lengths.
var mnemonicWordCounts = map[int]bool{
	12: true,
	15: true,
	18: true,
	21: true,
	24: true,
}

// Pin validates PIN strength.
// Rules: length within [minLen, maxLen], not a single repeated character,
// not a strictly ascending or descending run. Never inspects lockout state.
func Pin(pin string, minLen, maxLen int) error {
	if len(pin) < minLen {
		return ErrPinTooShort
	}
	if len(pin) > maxLen {
		return ErrPinTooLong
	}
	if allSame(pin) {
		return ErrPinRepeated
	}
	if sequentialRun(pin) {
		return ErrPinSequential
	}
	return nil
}

// Mnemonic validates the shape of a recovery phrase: non-empty with a legal
// BIP-39 word count. It deliberately does not check the wordlist or checksum;
// that is the wallet layer's concern.
func Mnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) == 0 {
		return ErrMnemonicEmpty
	}
	if !mnemonicWordCounts[len(words)] {
		return ErrMnemonicWordCount
	}
	return nil
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// sequentialRun reports whether s is one unbroken ascending or descending
// character run, such as 123456 or 987654.
func sequentialRun(s string) bool {
	if len(s) < 2 {
		return false
	}
	asc, desc := true, true
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1]+1 {
			asc = false
		}
		if s[i] != s[i-1]-1 {
			desc = false
		}
	}
	return asc || desc
}
