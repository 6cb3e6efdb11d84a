package validation

import (
	"strings"
	"testing"
)

func phrase(words int) string {
	return strings.TrimSpace(strings.Repeat("abandon ", words))
}

func TestPin(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr error
	}{
		{
			name:    "valid six digits",
			pin:     "736190",
			wantErr: nil,
		},
		{
			name:    "valid alphanumeric",
			pin:     "secret99",
			wantErr: nil,
		},
		{
			name:    "valid max length",
			pin:     strings.Repeat("x7", 10),
			wantErr: nil,
		},
		{
			name:    "valid repeated pairs",
			pin:     "111222",
			wantErr: nil,
		},
		{
			name:    "empty",
			pin:     "",
			wantErr: ErrPinTooShort,
		},
		{
			name:    "too short",
			pin:     "12390",
			wantErr: ErrPinTooShort,
		},
		{
			name:    "too long",
			pin:     strings.Repeat("x7", 10) + "z",
			wantErr: ErrPinTooLong,
		},
		{
			name:    "all same digit",
			pin:     "000000",
			wantErr: ErrPinRepeated,
		},
		{
			name:    "all same letter",
			pin:     "aaaaaa",
			wantErr: ErrPinRepeated,
		},
		{
			name:    "ascending digits",
			pin:     "123456",
			wantErr: ErrPinSequential,
		},
		{
			name:    "ascending long",
			pin:     "123456789",
			wantErr: ErrPinSequential,
		},
		{
			name:    "descending digits",
			pin:     "987654",
			wantErr: ErrPinSequential,
		},
		{
			name:    "ascending letters",
			pin:     "abcdef",
			wantErr: ErrPinSequential,
		},
		{
			name:    "broken ascent is fine",
			pin:     "123457",
			wantErr: nil,
		},
		{
			name:    "ascent interrupted by letter",
			pin:     "12345a",
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Pin(tt.pin, MinPinLength, MaxPinLength)
			if err != tt.wantErr {
				t.Errorf("Pin(%q) = %v, want %v", tt.pin, err, tt.wantErr)
			}
		})
	}
}

func TestPin_CustomBounds(t *testing.T) {
	if err := Pin("1359", 4, 8); err != nil {
		t.Errorf("Pin() with relaxed bounds = %v, want nil", err)
	}
	if err := Pin("1359", 6, 8); err != ErrPinTooShort {
		t.Errorf("Pin() below custom minimum = %v, want %v", err, ErrPinTooShort)
	}
	if err := Pin("135913591", 4, 8); err != ErrPinTooLong {
		t.Errorf("Pin() above custom maximum = %v, want %v", err, ErrPinTooLong)
	}
}

func TestMnemonic(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
		wantErr  error
	}{
		{
			name:     "twelve words",
			mnemonic: phrase(12),
			wantErr:  nil,
		},
		{
			name:     "fifteen words",
			mnemonic: phrase(15),
			wantErr:  nil,
		},
		{
			name:     "eighteen words",
			mnemonic: phrase(18),
			wantErr:  nil,
		},
		{
			name:     "twenty one words",
			mnemonic: phrase(21),
			wantErr:  nil,
		},
		{
			name:     "twenty four words",
			mnemonic: phrase(24),
			wantErr:  nil,
		},
		{
			name:     "irregular whitespace",
			mnemonic: "  alpha\tbravo  charlie\ndelta echo foxtrot golf hotel india juliet kilo lima  ",
			wantErr:  nil,
		},
		{
			name:     "empty",
			mnemonic: "",
			wantErr:  ErrMnemonicEmpty,
		},
		{
			name:     "whitespace only",
			mnemonic: "   \t\n",
			wantErr:  ErrMnemonicEmpty,
		},
		{
			name:     "single word",
			mnemonic: "abandon",
			wantErr:  ErrMnemonicWordCount,
		},
		{
			name:     "thirteen words",
			mnemonic: phrase(13),
			wantErr:  ErrMnemonicWordCount,
		},
		{
			name:     "twenty three words",
			mnemonic: phrase(23),
			wantErr:  ErrMnemonicWordCount,
		},
		{
			name:     "twenty five words",
			mnemonic: phrase(25),
			wantErr:  ErrMnemonicWordCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Mnemonic(tt.mnemonic)
			if err != tt.wantErr {
				t.Errorf("Mnemonic(%q) = %v, want %v", tt.mnemonic, err, tt.wantErr)
			}
		})
	}
}
