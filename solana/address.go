// Package solana builds, signs, and co-signs Solana transactions at the
// wire level: compact-u16 framing, message compilation, System and SPL Token
// transfers, and PDA/associated-token-account derivation.
//
// A Solana address is the Base58 encoding of the raw 32-byte Ed25519 public
// key. There is no hashing step.
package solana

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidAddress   = errors.New("solana: invalid address")
	ErrTransactionBuild = errors.New("solana: transaction build failed")
	ErrSigning          = errors.New("solana: signing failed")
	ErrSerialization    = errors.New("solana: serialization failed")
)

// PubkeyToAddress encodes a 32-byte Ed25519 public key as an address.
func PubkeyToAddress(pubkey [32]byte) string {
	return base58.Encode(pubkey[:])
}

// AddressToBytes decodes an address into its 32-byte public key form.
func AddressToBytes(address string) ([32]byte, error) {
	var out [32]byte
	decoded, err := base58.Decode(address)
	if err != nil {
		return out, fmt.Errorf("%w: base58 decode: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 32 {
		return out, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidAddress, len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

// ValidateAddress reports whether address is well-formed Base58 decoding to
// exactly 32 bytes.
func ValidateAddress(address string) (bool, error) {
	if _, err := AddressToBytes(address); err != nil {
		return false, err
	}
	return true, nil
}
