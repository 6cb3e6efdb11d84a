// Package crypto provides the cryptographic operations for phrasevault.
// It implements AES-256-CBC for mnemonic encryption and PBKDF2-SHA256 for
// key derivation and PIN hashing.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the size of AES-256 keys in bytes.
	KeySize = 32

	// IVSize is the size of CBC initialization vectors in bytes.
	IVSize = 16

	// SaltSize is the size of salts for key derivation in bytes.
	SaltSize = 16

	// DefaultKeyIterations is the PBKDF2 iteration count for deriving the
	// encryption key from a PIN.
	DefaultKeyIterations = 210_000

	// DefaultVerifyIterations is the PBKDF2 iteration count for the cheap
	// PIN verifier hash. Deliberately far below DefaultKeyIterations: the
	// verifier only fast-rejects wrong PINs before the expensive path runs.
	DefaultVerifyIterations = 10_000
)

var (
	// ErrInvalidKeySize is returned when a key has an incorrect size.
	ErrInvalidKeySize = errors.New("key must be 32 bytes")

	// ErrInvalidIVSize is returned when an IV has an incorrect size.
	ErrInvalidIVSize = errors.New("iv must be 16 bytes")

	// ErrInvalidSaltSize is returned when a salt has an incorrect size.
	ErrInvalidSaltSize = errors.New("salt must be 16 bytes")

	// ErrInvalidIterations is returned when an iteration count is not positive.
	ErrInvalidIterations = errors.New("iterations must be positive")

	// ErrInvalidCiphertext is returned when ciphertext is empty or not
	// block-aligned.
	ErrInvalidCiphertext = errors.New("ciphertext is not block-aligned")

	// ErrDecryptionFailed is returned for every decryption failure. A wrong
	// key and corrupted ciphertext are deliberately indistinguishable.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// Encrypt encrypts plaintext using AES-256-CBC with PKCS#7 padding.
// The IV must be freshly generated for every call and stored alongside the
// ciphertext; it is not prepended to the result.
func Encrypt(key, iv, plaintext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIVSize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-256-CBC with PKCS#7 padding.
// Every failure after the size checks is reported as ErrDecryptionFailed, so
// callers cannot tell a wrong key from a padding error.
func Decrypt(key, iv, ciphertext []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIVSize
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

// EncryptString encrypts a string and returns base64-encoded ciphertext.
func EncryptString(key, iv []byte, plaintext string) (string, error) {
	ciphertext, err := Encrypt(key, iv, []byte(plaintext))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts base64-encoded ciphertext and returns the plaintext
// string. A malformed encoding is reported as ErrDecryptionFailed like any
// other decryption failure.
func DecryptString(key, iv []byte, ciphertextB64 string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	plaintext, err := Decrypt(key, iv, ciphertext)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// GenerateSalt generates a cryptographically secure random 16-byte salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateIV generates a cryptographically secure random 16-byte IV.
func GenerateIV() ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}
	return iv, nil
}

// DeriveKey derives a 32-byte key from a PIN using PBKDF2-SHA256.
// The salt must be 16 bytes. Deterministic given identical inputs.
func DeriveKey(pin string, salt []byte, iterations int) ([]byte, error) {
	if len(salt) != SaltSize {
		return nil, ErrInvalidSaltSize
	}
	if iterations < 1 {
		return nil, ErrInvalidIterations
	}
	return pbkdf2.Key([]byte(pin), salt, iterations, KeySize, sha256.New), nil
}

// ZeroBytes securely zeros a byte slice.
// Use this to clear sensitive data from memory when done.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// pkcs7Pad appends PKCS#7 padding up to the AES block size. The result is
// always at least one byte longer than the input.
func pkcs7Pad(data []byte) []byte {
	n := aes.BlockSize - len(data)%aes.BlockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

// pkcs7Unpad strips PKCS#7 padding. Every padding byte is examined without
// short-circuiting, and every malformed padding is the same error.
func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, ErrDecryptionFailed
	}
	n := int(data[len(data)-1])
	if n < 1 || n > aes.BlockSize {
		return nil, ErrDecryptionFailed
	}
	var bad byte
	for _, b := range data[len(data)-n:] {
		bad |= b ^ byte(n)
	}
	if bad != 0 {
		return nil, ErrDecryptionFailed
	}
	return data[:len(data)-n], nil
}
