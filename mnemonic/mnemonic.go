// Package mnemonic generates and validates BIP-39 recovery phrases and
// derives wallet seeds from them.
package mnemonic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("mnemonic: invalid mnemonic phrase")

// 24 words carry 256 bits of entropy.
const entropyBits = 256

// Generate returns a fresh 24-word phrase from the system entropy source.
func Generate() (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("mnemonic: entropy generation failed: %w", err)
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("mnemonic: phrase generation failed: %w", err)
	}
	return phrase, nil
}

// Validate checks word membership, count and the embedded checksum.
func Validate(phrase string) error {
	if !bip39.IsMnemonicValid(phrase) {
		return ErrInvalidMnemonic
	}
	return nil
}

var wordSet = sync.OnceValue(func() map[string]struct{} {
	words := bip39.GetWordList()
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
})

// IsValidWord reports whether word appears in the English wordlist. Useful
// for per-word feedback during phrase entry.
func IsValidWord(word string) bool {
	_, ok := wordSet()[word]
	return ok
}

// ToSeed validates the phrase and stretches it to a 64-byte BIP-39 seed.
// The passphrase may be empty.
func ToSeed(phrase, passphrase string) ([]byte, error) {
	if err := Validate(phrase); err != nil {
		return nil, err
	}
	return bip39.NewSeed(phrase, passphrase), nil
}
