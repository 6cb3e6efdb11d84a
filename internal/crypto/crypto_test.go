package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/rand"
	"encoding/base64"
	"testing"
)

// testIterations keeps PBKDF2 cheap in tests; production counts live in the
// Default* constants.
const testIterations = 1000

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	return key
}

func TestGenerateSalt(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() error = %v", err)
	}
	if len(salt) != SaltSize {
		t.Errorf("GenerateSalt() returned salt of length %d, want %d", len(salt), SaltSize)
	}

	// Verify salts are random
	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt() second call error = %v", err)
	}
	if bytes.Equal(salt, salt2) {
		t.Error("GenerateSalt() returned identical salts")
	}
}

func TestGenerateIV(t *testing.T) {
	iv, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() error = %v", err)
	}
	if len(iv) != IVSize {
		t.Errorf("GenerateIV() returned iv of length %d, want %d", len(iv), IVSize)
	}

	// Verify IVs are random
	iv2, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() second call error = %v", err)
	}
	if bytes.Equal(iv, iv2) {
		t.Error("GenerateIV() returned identical ivs")
	}
}

func TestEncryptDecrypt(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello")},
		{"twelve_words", []byte("legal winner thank year wave sausage worth useful legal winner thank yellow")},
		{"twenty_four_words", bytes.Repeat([]byte("abandon "), 24)},
		{"long", bytes.Repeat([]byte("x"), 10000)},
		{"binary", []byte{0x00, 0xFF, 0x00, 0xFF, 0xDE, 0xAD, 0xBE, 0xEF}},
		{"null_bytes", []byte("hello\x00world\x00")},
		{"block_aligned", make([]byte, 32)},
		{"one_below_block", make([]byte, 15)},
		{"one_above_block", make([]byte, 17)},
	}

	key := testKey(t)
	iv, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ciphertext, err := Encrypt(key, iv, tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}

			// Padding always adds at least one byte and keeps block alignment
			if len(ciphertext)%aes.BlockSize != 0 {
				t.Errorf("Encrypt() ciphertext length %d not block-aligned", len(ciphertext))
			}
			if len(ciphertext) <= len(tt.plaintext) {
				t.Errorf("Encrypt() ciphertext length %d, want > %d", len(ciphertext), len(tt.plaintext))
			}

			// Decrypt and verify
			decrypted, err := Decrypt(key, iv, ciphertext)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}

			if !bytes.Equal(decrypted, tt.plaintext) {
				t.Errorf("Decrypt() = %v, want %v", decrypted, tt.plaintext)
			}
		})
	}
}

func TestEncrypt_FreshIVChangesCiphertext(t *testing.T) {
	key := testKey(t)
	plaintext := []byte("same plaintext")

	iv1, _ := GenerateIV()
	iv2, _ := GenerateIV()

	ciphertext1, err := Encrypt(key, iv1, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() first call error = %v", err)
	}
	ciphertext2, err := Encrypt(key, iv2, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() second call error = %v", err)
	}

	// Fresh IVs must hide plaintext equality
	if bytes.Equal(ciphertext1, ciphertext2) {
		t.Error("Encrypt() produced identical ciphertexts for same plaintext (iv reuse)")
	}

	// With the same IV the cipher is deterministic, which is exactly why
	// every write generates a new one
	ciphertext3, _ := Encrypt(key, iv1, plaintext)
	if !bytes.Equal(ciphertext1, ciphertext3) {
		t.Error("Encrypt() not deterministic for identical key/iv/plaintext")
	}
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	iv, _ := GenerateIV()

	tests := []struct {
		name    string
		keyLen  int
		wantErr error
	}{
		{"empty_key", 0, ErrInvalidKeySize},
		{"short_key", 16, ErrInvalidKeySize},
		{"long_key", 64, ErrInvalidKeySize},
		{"off_by_one_short", 31, ErrInvalidKeySize},
		{"off_by_one_long", 33, ErrInvalidKeySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := make([]byte, tt.keyLen)
			_, err := Encrypt(key, iv, []byte("test"))
			if err != tt.wantErr {
				t.Errorf("Encrypt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncrypt_InvalidIVSize(t *testing.T) {
	key := testKey(t)

	tests := []struct {
		name    string
		ivLen   int
		wantErr error
	}{
		{"empty_iv", 0, ErrInvalidIVSize},
		{"short_iv", 15, ErrInvalidIVSize},
		{"long_iv", 17, ErrInvalidIVSize},
		{"nonce_sized", 12, ErrInvalidIVSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv := make([]byte, tt.ivLen)
			_, err := Encrypt(key, iv, []byte("test"))
			if err != tt.wantErr {
				t.Errorf("Encrypt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecrypt_InvalidSizes(t *testing.T) {
	key := testKey(t)
	iv, _ := GenerateIV()
	ciphertext, _ := Encrypt(key, iv, []byte("test"))

	if _, err := Decrypt(make([]byte, 16), iv, ciphertext); err != ErrInvalidKeySize {
		t.Errorf("Decrypt() with short key error = %v, want %v", err, ErrInvalidKeySize)
	}
	if _, err := Decrypt(key, make([]byte, 12), ciphertext); err != ErrInvalidIVSize {
		t.Errorf("Decrypt() with short iv error = %v, want %v", err, ErrInvalidIVSize)
	}
}

func TestDecrypt_InvalidCiphertext(t *testing.T) {
	key := testKey(t)
	iv, _ := GenerateIV()

	tests := []struct {
		name       string
		ciphertext []byte
		wantErr    error
	}{
		{"empty", []byte{}, ErrInvalidCiphertext},
		{"below_block", make([]byte, 15), ErrInvalidCiphertext},
		{"above_block", make([]byte, 17), ErrInvalidCiphertext},
		{"two_blocks_minus_one", make([]byte, 31), ErrInvalidCiphertext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decrypt(key, iv, tt.ciphertext)
			if err != tt.wantErr {
				t.Errorf("Decrypt() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecrypt_TamperedCiphertext(t *testing.T) {
	key := testKey(t)
	iv, _ := GenerateIV()
	// 20 bytes pads to two blocks with a 0x0C padding run
	plaintext := []byte("a twenty byte secret")

	ciphertext, err := Encrypt(key, iv, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tests := []struct {
		name       string
		tamperFunc func([]byte) []byte
		wantErr    error
	}{
		{
			// Flipping the last byte of the first ciphertext block flips the
			// final padding byte of the decrypted plaintext
			"flip_padding_byte",
			func(ct []byte) []byte {
				tampered := make([]byte, len(ct))
				copy(tampered, ct)
				tampered[aes.BlockSize-1] ^= 0xFF
				return tampered
			},
			ErrDecryptionFailed,
		},
		{
			"truncate_one_byte",
			func(ct []byte) []byte {
				return ct[:len(ct)-1]
			},
			ErrInvalidCiphertext,
		},
		{
			"append_byte",
			func(ct []byte) []byte {
				return append(ct, 0x00)
			},
			ErrInvalidCiphertext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := tt.tamperFunc(ciphertext)
			_, err := Decrypt(key, iv, tampered)
			if err != tt.wantErr {
				t.Errorf("Decrypt() with tampered ciphertext error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	key1 := testKey(t)
	key2 := testKey(t)
	iv, _ := GenerateIV()
	plaintext := []byte("secret")

	ciphertext, _ := Encrypt(key1, iv, plaintext)

	// CBC has no authentication tag: a wrong key usually fails the padding
	// check but can unpad cleanly by chance. The contract is only that the
	// original plaintext never survives.
	decrypted, err := Decrypt(key2, iv, ciphertext)
	if err == nil && bytes.Equal(decrypted, plaintext) {
		t.Error("Decrypt() with wrong key returned the original plaintext")
	}
}

func TestDeriveKey(t *testing.T) {
	pin := "736190"
	salt, _ := GenerateSalt()

	key, err := DeriveKey(pin, salt, testIterations)
	if err != nil {
		t.Fatalf("DeriveKey() error = %v", err)
	}

	if len(key) != KeySize {
		t.Errorf("DeriveKey() returned key of length %d, want %d", len(key), KeySize)
	}

	// Same pin + salt + iterations should produce same key
	key2, _ := DeriveKey(pin, salt, testIterations)
	if !bytes.Equal(key, key2) {
		t.Error("DeriveKey() not deterministic")
	}

	// Different pin should produce different key
	key3, _ := DeriveKey("736191", salt, testIterations)
	if bytes.Equal(key, key3) {
		t.Error("DeriveKey() produced same key for different pin")
	}

	// Different salt should produce different key
	salt2, _ := GenerateSalt()
	key4, _ := DeriveKey(pin, salt2, testIterations)
	if bytes.Equal(key, key4) {
		t.Error("DeriveKey() produced same key for different salt")
	}

	// Different iteration count should produce different key
	key5, _ := DeriveKey(pin, salt, testIterations+1)
	if bytes.Equal(key, key5) {
		t.Error("DeriveKey() produced same key for different iterations")
	}
}

func TestDeriveKey_InvalidSalt(t *testing.T) {
	tests := []struct {
		name    string
		saltLen int
	}{
		{"empty", 0},
		{"too_short", 15},
		{"too_long", 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			salt := make([]byte, tt.saltLen)
			_, err := DeriveKey("123456", salt, testIterations)
			if err != ErrInvalidSaltSize {
				t.Errorf("DeriveKey() error = %v, want %v", err, ErrInvalidSaltSize)
			}
		})
	}
}

func TestDeriveKey_InvalidIterations(t *testing.T) {
	salt, _ := GenerateSalt()

	for _, iterations := range []int{0, -1, -100000} {
		if _, err := DeriveKey("123456", salt, iterations); err != ErrInvalidIterations {
			t.Errorf("DeriveKey(iterations=%d) error = %v, want %v", iterations, err, ErrInvalidIterations)
		}
	}
}

func TestEncryptString_DecryptString(t *testing.T) {
	key := testKey(t)
	iv, _ := GenerateIV()
	plaintext := "abandon ability able about above absent absorb abstract absurd abuse access accident"

	encrypted, err := EncryptString(key, iv, plaintext)
	if err != nil {
		t.Fatalf("EncryptString() error = %v", err)
	}

	// Should be valid base64
	if _, err := base64.StdEncoding.DecodeString(encrypted); err != nil {
		t.Errorf("EncryptString() returned invalid base64: %v", err)
	}

	// Should decrypt correctly
	decrypted, err := DecryptString(key, iv, encrypted)
	if err != nil {
		t.Fatalf("DecryptString() error = %v", err)
	}

	if decrypted != plaintext {
		t.Errorf("DecryptString() = %q, want %q", decrypted, plaintext)
	}
}

func TestDecryptString_InvalidBase64(t *testing.T) {
	key := testKey(t)
	iv, _ := GenerateIV()

	_, err := DecryptString(key, iv, "not-valid-base64!!!")
	if err != ErrDecryptionFailed {
		t.Errorf("DecryptString() with invalid base64 error = %v, want %v", err, ErrDecryptionFailed)
	}
}

func TestZeroBytes(t *testing.T) {
	data := []byte{0xFF, 0xAA, 0x55, 0x00, 0x12, 0x34}
	original := make([]byte, len(data))
	copy(original, data)

	ZeroBytes(data)

	// All bytes should be zero
	for i, b := range data {
		if b != 0 {
			t.Errorf("ZeroBytes() didn't zero byte at index %d: got %d", i, b)
		}
	}

	// Verify it actually changed
	if bytes.Equal(data, original) {
		t.Error("ZeroBytes() didn't modify the slice")
	}
}

func TestZeroBytes_Empty(t *testing.T) {
	data := []byte{}
	ZeroBytes(data) // Should not panic
}

// Benchmark tests
func BenchmarkEncrypt(b *testing.B) {
	key := make([]byte, KeySize)
	rand.Read(key)
	iv := make([]byte, IVSize)
	rand.Read(iv)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Encrypt(key, iv, plaintext)
	}
}

func BenchmarkDecrypt(b *testing.B) {
	key := make([]byte, KeySize)
	rand.Read(key)
	iv := make([]byte, IVSize)
	rand.Read(iv)
	plaintext := make([]byte, 1024)
	rand.Read(plaintext)
	ciphertext, _ := Encrypt(key, iv, plaintext)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Decrypt(key, iv, ciphertext)
	}
}

func BenchmarkDeriveKey(b *testing.B) {
	salt := make([]byte, SaltSize)
	rand.Read(salt)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DeriveKey("736190", salt, DefaultKeyIterations)
	}
}
