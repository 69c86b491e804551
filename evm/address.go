// Package evm builds and signs EIP-1559 transactions for all supported EVM
// networks, plus the contract-call plumbing around them: fixed-word ABI
// encoding for ERC-20 calls, EIP-191 message signing, public key recovery,
// and EIP-55 address handling.
package evm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidPrivateKey = errors.New("evm: invalid private key")
	ErrInvalidPublicKey  = errors.New("evm: invalid public key")
	ErrInvalidAddress    = errors.New("evm: invalid address")
	ErrSigning           = errors.New("evm: signing failed")
	ErrSerialization     = errors.New("evm: serialization failed")
)

// parseAddress strictly parses a 0x-prefixed 40-hex-char address. Checksum
// casing is not enforced here; use ValidateAddress for that.
func parseAddress(addr string) (common.Address, error) {
	rest, ok := strings.CutPrefix(addr, "0x")
	if !ok {
		rest, ok = strings.CutPrefix(addr, "0X")
	}
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %q must start with 0x", ErrInvalidAddress, addr)
	}
	if len(rest) != 40 {
		return common.Address{}, fmt.Errorf("%w: want 40 hex chars, got %d", ErrInvalidAddress, len(rest))
	}
	for _, c := range rest {
		if !isHexChar(c) {
			return common.Address{}, fmt.Errorf("%w: %q is not hex", ErrInvalidAddress, addr)
		}
	}
	return common.HexToAddress(addr), nil
}

func isHexChar(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// PubkeyToAddress converts a 65-byte uncompressed secp256k1 public key to
// its EIP-55 checksummed address.
func PubkeyToAddress(pubkey []byte) (string, error) {
	pub, err := crypto.UnmarshalPubkey(pubkey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// CompressedPubkeyToAddress converts a 33-byte compressed secp256k1 public
// key to its EIP-55 checksummed address.
func CompressedPubkeyToAddress(pubkey []byte) (string, error) {
	pub, err := crypto.DecompressPubkey(pubkey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// ChecksumAddress re-encodes an address with EIP-55 casing.
func ChecksumAddress(addr string) (string, error) {
	parsed, err := parseAddress(addr)
	if err != nil {
		return "", err
	}
	return parsed.Hex(), nil
}

// ValidateAddress reports whether addr is a well-formed Ethereum address.
// All-lowercase and all-uppercase hex are accepted; mixed case must match
// the EIP-55 checksum. Malformed input returns an error.
func ValidateAddress(addr string) (bool, error) {
	parsed, err := parseAddress(addr)
	if err != nil {
		return false, err
	}
	hexPart := addr[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true, nil
	}
	return hexPart == parsed.Hex()[2:], nil
}

// RecoverPubkey recovers the 65-byte uncompressed public key from a 65-byte
// r||s||v signature over a 32-byte digest. Both v in {0,1} and the legacy
// {27,28} convention are accepted.
func RecoverPubkey(signature, digest []byte) ([]byte, error) {
	if len(signature) != 65 {
		return nil, fmt.Errorf("%w: signature must be 65 bytes, got %d", ErrSigning, len(signature))
	}
	if len(digest) != 32 {
		return nil, fmt.Errorf("%w: digest must be 32 bytes, got %d", ErrSigning, len(digest))
	}
	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.Ecrecover(digest, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: recover: %v", ErrSigning, err)
	}
	return pub, nil
}
