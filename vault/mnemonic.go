package vault

import (
	"fmt"

	bip39 "github.com/tyler-smith/go-bip39"
)

// mnemonicEntropyBits sizes generated phrases at 24 words.
const mnemonicEntropyBits = 256

// NewMnemonic generates a fresh BIP-39 recovery phrase.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generate mnemonic: %w", err)
	}
	return mnemonic, nil
}
