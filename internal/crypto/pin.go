package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PinHashSize is the size of the derived PIN verifier hash in bytes.
const PinHashSize = 32

// HashPin hashes a PIN with PBKDF2-SHA256 and a fresh random salt.
// The format is: hex(salt) + ":" + hex(hash) where salt is 16 bytes and hash
// is 32 bytes. The hash is a cheap existence check, never key material.
func HashPin(pin string, iterations int) (string, error) {
	if iterations < 1 {
		return "", ErrInvalidIterations
	}

	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}

	hash := pbkdf2.Key([]byte(pin), salt, iterations, PinHashSize, sha256.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// VerifyPin verifies a PIN against a hash created by HashPin.
// Returns true if the PIN matches, false otherwise. Malformed stored hashes
// (missing separator, empty or non-hex parts, wrong lengths) yield false,
// never an error.
func VerifyPin(pin, storedHash string, iterations int) bool {
	if iterations < 1 {
		return false
	}

	saltHex, hashHex, ok := strings.Cut(storedHash, ":")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil || len(salt) != SaltSize {
		return false
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil || len(stored) != PinHashSize {
		return false
	}

	computed := pbkdf2.Key([]byte(pin), salt, iterations, PinHashSize, sha256.New)

	// Constant-time comparison
	return subtle.ConstantTimeCompare(stored, computed) == 1
}
