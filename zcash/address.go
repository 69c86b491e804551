// Package zcash builds and signs transparent Zcash transactions in the NU5
// (v5) format with ZIP-244 signature digests.
package zcash

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/ripemd160"
)

var (
	ErrInvalidPrivateKey = errors.New("zcash: invalid private key")
	ErrInvalidPublicKey  = errors.New("zcash: invalid public key")
	ErrInvalidAddress    = errors.New("zcash: invalid address")
	ErrTransactionBuild  = errors.New("zcash: transaction build failed")
	ErrSigning           = errors.New("zcash: signing failed")
)

// Network selects the t-address version bytes.
type Network int

const (
	Mainnet Network = iota
	Testnet
)

// Two-byte address version prefixes. Mainnet P2PKH yields "t1" addresses,
// testnet "tm".
var (
	mainnetP2PKHPrefix = [2]byte{0x1C, 0xB8}
	mainnetP2SHPrefix  = [2]byte{0x1C, 0xBD}
	testnetP2PKHPrefix = [2]byte{0x1D, 0x25}
)

func (n Network) p2pkhPrefix() [2]byte {
	if n == Testnet {
		return testnetP2PKHPrefix
	}
	return mainnetP2PKHPrefix
}

// Hash160 is SHA-256 followed by RIPEMD-160.
func Hash160(data []byte) [20]byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	var out [20]byte
	copy(out[:], r.Sum(nil))
	return out
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}

func encodeBase58Check(prefix [2]byte, hash [20]byte) string {
	payload := make([]byte, 0, 26)
	payload = append(payload, prefix[:]...)
	payload = append(payload, hash[:]...)
	check := checksum(payload)
	return base58.Encode(append(payload, check[:]...))
}

// PubkeyToTAddress encodes the hash160 of a 33-byte compressed public key as
// a transparent P2PKH address.
func PubkeyToTAddress(pubkey []byte, network Network) (string, error) {
	if len(pubkey) != 33 {
		return "", fmt.Errorf("%w: want 33 bytes, got %d", ErrInvalidPublicKey, len(pubkey))
	}
	return encodeBase58Check(network.p2pkhPrefix(), Hash160(pubkey)), nil
}

// AddressToPubkeyHash decodes a P2PKH t-address for the network and returns
// the 20-byte public key hash. The checksum and version prefix are verified.
func AddressToPubkeyHash(address string, network Network) ([20]byte, error) {
	var hash [20]byte
	decoded := base58.Decode(address)
	if len(decoded) != 26 {
		return hash, fmt.Errorf("%w: want 26 decoded bytes, got %d", ErrInvalidAddress, len(decoded))
	}

	payload, check := decoded[:22], decoded[22:]
	want := checksum(payload)
	if !bytes.Equal(check, want[:]) {
		return hash, fmt.Errorf("%w: bad checksum", ErrInvalidAddress)
	}

	prefix := network.p2pkhPrefix()
	if payload[0] != prefix[0] || payload[1] != prefix[1] {
		return hash, fmt.Errorf("%w: wrong version prefix %x", ErrInvalidAddress, payload[:2])
	}
	copy(hash[:], payload[2:])
	return hash, nil
}

// ValidateAddress reports whether address is a well-formed transparent
// address on the network. Mainnet P2SH ("t3") addresses validate but cannot
// be decoded with AddressToPubkeyHash.
func ValidateAddress(address string, network Network) (bool, error) {
	decoded := base58.Decode(address)
	if len(decoded) != 26 {
		return false, fmt.Errorf("%w: want 26 decoded bytes, got %d", ErrInvalidAddress, len(decoded))
	}
	payload, check := decoded[:22], decoded[22:]
	want := checksum(payload)
	if !bytes.Equal(check, want[:]) {
		return false, fmt.Errorf("%w: bad checksum", ErrInvalidAddress)
	}

	prefixes := [][2]byte{mainnetP2PKHPrefix, mainnetP2SHPrefix}
	if network == Testnet {
		prefixes = [][2]byte{testnetP2PKHPrefix}
	}
	for _, p := range prefixes {
		if payload[0] == p[0] && payload[1] == p[1] {
			return true, nil
		}
	}
	return false, nil
}
