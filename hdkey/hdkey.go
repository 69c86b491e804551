// Package hdkey derives per-chain signing keys from a BIP-39 seed.
//
// secp256k1 chains use BIP-32 with the path tables below (BIP-84 for native
// SegWit Bitcoin, BIP-44 for everything else). Ed25519 chains use SLIP-0010,
// which only supports hardened derivation, so the Solana path hardens every
// component.
package hdkey

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/peakwallet/walletcore/chain"
	"github.com/peakwallet/walletcore/internal/wipe"
)

// ErrDerivation is returned when a key cannot be derived: malformed path,
// seed outside the BIP-39 length range, or the astronomically unlikely
// out-of-range child scalar.
var ErrDerivation = errors.New("hdkey: derivation failed")

const hardenedOffset = 0x80000000

// Key is a derived secp256k1 keypair. Call Wipe once the private key has
// been consumed.
type Key struct {
	PrivateKey            [32]byte
	PublicKeyCompressed   [33]byte
	PublicKeyUncompressed [65]byte
	Path                  string
}

// Wipe zeroes the private key in place.
func (k *Key) Wipe() {
	wipe.Bytes(k.PrivateKey[:])
}

// Ed25519Key is a derived Ed25519 keypair. PrivateKey is the 32-byte seed
// form; signing expands it on use. Call Wipe once the key has been consumed.
type Ed25519Key struct {
	PrivateKey [32]byte
	PublicKey  [32]byte
	Path       string
}

// Wipe zeroes the private key in place.
func (k *Ed25519Key) Wipe() {
	wipe.Bytes(k.PrivateKey[:])
}

// PathForChain returns the derivation path used for a chain. index is
// ignored for Ed25519 chains, whose path has no address-index level.
func PathForChain(c chain.Chain, account, index uint32) string {
	switch {
	case c == chain.Bitcoin || c == chain.BitcoinTestnet:
		return fmt.Sprintf("m/84'/%d'/%d'/0/%d", c.CoinType(), account, index)
	case c.Curve() == chain.Ed25519:
		return fmt.Sprintf("m/44'/%d'/%d'/0'", c.CoinType(), account)
	default:
		return fmt.Sprintf("m/44'/%d'/%d'/0/%d", c.CoinType(), account, index)
	}
}

type pathStep struct {
	index    uint32
	hardened bool
}

func parsePath(path string) ([]pathStep, error) {
	rest, ok := strings.CutPrefix(path, "m/")
	if !ok {
		return nil, fmt.Errorf("%w: path %q must start with m/", ErrDerivation, path)
	}
	parts := strings.Split(rest, "/")
	steps := make([]pathStep, 0, len(parts))
	for _, part := range parts {
		step := pathStep{}
		if strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h") {
			step.hardened = true
			part = part[:len(part)-1]
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil || n >= hardenedOffset {
			return nil, fmt.Errorf("%w: bad path component %q", ErrDerivation, part)
		}
		step.index = uint32(n)
		steps = append(steps, step)
	}
	return steps, nil
}

// DeriveSecp256k1 derives the secp256k1 key for a chain at
// account/index. The seed is read but not retained or modified.
func DeriveSecp256k1(seed []byte, c chain.Chain, account, index uint32) (*Key, error) {
	if c.Curve() != chain.Secp256k1 {
		return nil, fmt.Errorf("%w: %s is not a secp256k1 chain", ErrDerivation, c)
	}
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("%w: seed must be 16..64 bytes, got %d", ErrDerivation, len(seed))
	}

	path := PathForChain(c, account, index)
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	i := mac.Sum(nil)

	var key, chainCode [32]byte
	copy(key[:], i[:32])
	copy(chainCode[:], i[32:])
	wipe.Bytes(i)
	defer wipe.Bytes(key[:], chainCode[:])

	var parent btcec.ModNScalar
	if overflow := parent.SetBytes(&key); overflow != 0 || parent.IsZero() {
		return nil, fmt.Errorf("%w: invalid master key", ErrDerivation)
	}
	defer parent.Zero()

	var data [37]byte
	for _, step := range steps {
		childIndex := step.index
		if step.hardened {
			childIndex |= hardenedOffset
			data[0] = 0x00
			copy(data[1:33], key[:])
		} else {
			priv, _ := btcec.PrivKeyFromBytes(key[:])
			copy(data[:33], priv.PubKey().SerializeCompressed())
			priv.Zero()
		}
		binary.BigEndian.PutUint32(data[33:], childIndex)

		mac = hmac.New(sha512.New, chainCode[:])
		mac.Write(data[:])
		i = mac.Sum(nil)
		wipe.Bytes(data[:])

		var il [32]byte
		copy(il[:], i[:32])
		copy(chainCode[:], i[32:])
		wipe.Bytes(i)

		var tweak btcec.ModNScalar
		overflow := tweak.SetBytes(&il)
		wipe.Bytes(il[:])
		if overflow != 0 {
			tweak.Zero()
			return nil, fmt.Errorf("%w: child scalar out of range at %s", ErrDerivation, path)
		}
		parent.Add(&tweak)
		tweak.Zero()
		if parent.IsZero() {
			return nil, fmt.Errorf("%w: zero child key at %s", ErrDerivation, path)
		}
		parent.PutBytes(&key)
	}

	priv, _ := btcec.PrivKeyFromBytes(key[:])
	defer priv.Zero()

	out := &Key{Path: path}
	copy(out.PrivateKey[:], key[:])
	copy(out.PublicKeyCompressed[:], priv.PubKey().SerializeCompressed())
	copy(out.PublicKeyUncompressed[:], priv.PubKey().SerializeUncompressed())
	return out, nil
}

// DeriveEd25519 derives the SLIP-0010 Ed25519 key for a chain at the given
// account. The seed is read but not retained or modified.
func DeriveEd25519(seed []byte, c chain.Chain, account uint32) (*Ed25519Key, error) {
	if c.Curve() != chain.Ed25519 {
		return nil, fmt.Errorf("%w: %s is not an ed25519 chain", ErrDerivation, c)
	}
	if len(seed) < 16 || len(seed) > 64 {
		return nil, fmt.Errorf("%w: seed must be 16..64 bytes, got %d", ErrDerivation, len(seed))
	}

	path := PathForChain(c, account, 0)
	steps, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	i := mac.Sum(nil)

	var key, chainCode [32]byte
	copy(key[:], i[:32])
	copy(chainCode[:], i[32:])
	wipe.Bytes(i)
	defer wipe.Bytes(key[:], chainCode[:])

	var data [37]byte
	for _, step := range steps {
		// SLIP-0010 Ed25519 has no public derivation; every component is
		// treated as hardened.
		data[0] = 0x00
		copy(data[1:33], key[:])
		binary.BigEndian.PutUint32(data[33:], step.index|hardenedOffset)

		mac = hmac.New(sha512.New, chainCode[:])
		mac.Write(data[:])
		i = mac.Sum(nil)
		wipe.Bytes(data[:])

		copy(key[:], i[:32])
		copy(chainCode[:], i[32:])
		wipe.Bytes(i)
	}

	out := &Ed25519Key{Path: path}
	copy(out.PrivateKey[:], key[:])
	pub := ed25519.NewKeyFromSeed(key[:]).Public().(ed25519.PublicKey)
	copy(out.PublicKey[:], pub)
	return out, nil
}
