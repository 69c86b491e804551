// Package chain defines the closed set of supported chains together with the
// constant data attached to each one: BIP-44 coin type, signature curve, and
// for EVM networks the chain-id registry.
package chain

import "fmt"

// Chain identifies a supported network.
type Chain int

const (
	Bitcoin Chain = iota
	BitcoinTestnet
	Ethereum
	Polygon
	Arbitrum
	Base
	Optimism
	BSC
	Avalanche
	Sepolia
	PolygonAmoy
	Solana
	SolanaDevnet
	Zcash
	ZcashTestnet
)

// Curve is the signature scheme a chain's keys live on.
type Curve int

const (
	Secp256k1 Curve = iota
	Ed25519
)

// All lists every supported chain in declaration order.
func All() []Chain {
	return []Chain{
		Bitcoin, BitcoinTestnet,
		Ethereum, Polygon, Arbitrum, Base, Optimism, BSC, Avalanche, Sepolia, PolygonAmoy,
		Solana, SolanaDevnet,
		Zcash, ZcashTestnet,
	}
}

func (c Chain) String() string {
	switch c {
	case Bitcoin:
		return "bitcoin"
	case BitcoinTestnet:
		return "bitcoin-testnet"
	case Ethereum:
		return "ethereum"
	case Polygon:
		return "polygon"
	case Arbitrum:
		return "arbitrum"
	case Base:
		return "base"
	case Optimism:
		return "optimism"
	case BSC:
		return "bsc"
	case Avalanche:
		return "avalanche"
	case Sepolia:
		return "sepolia"
	case PolygonAmoy:
		return "polygon-amoy"
	case Solana:
		return "solana"
	case SolanaDevnet:
		return "solana-devnet"
	case Zcash:
		return "zcash"
	case ZcashTestnet:
		return "zcash-testnet"
	}
	return fmt.Sprintf("chain(%d)", int(c))
}

// Curve reports which signature curve the chain uses.
func (c Chain) Curve() Curve {
	switch c {
	case Solana, SolanaDevnet:
		return Ed25519
	default:
		return Secp256k1
	}
}

// CoinType is the BIP-44 coin type used in derivation paths. Testnets share
// coin type 1 per SLIP-0044, except Solana devnet which keeps 501.
func (c Chain) CoinType() uint32 {
	switch c {
	case Bitcoin:
		return 0
	case BitcoinTestnet:
		return 1
	case Solana, SolanaDevnet:
		return 501
	case Zcash:
		return 133
	case ZcashTestnet:
		return 1
	default:
		// Every EVM network derives on the Ethereum coin type so one seed
		// yields one address across all of them.
		return 60
	}
}

// IsEVM reports whether the chain settles EIP-1559 transactions.
func (c Chain) IsEVM() bool {
	switch c {
	case Ethereum, Polygon, Arbitrum, Base, Optimism, BSC, Avalanche, Sepolia, PolygonAmoy:
		return true
	}
	return false
}

// IsTestnet reports whether the chain is a test network.
func (c Chain) IsTestnet() bool {
	switch c {
	case BitcoinTestnet, Sepolia, PolygonAmoy, SolanaDevnet, ZcashTestnet:
		return true
	}
	return false
}
