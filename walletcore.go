// Package walletcore is the seed-level signing core of a non-custodial
// multi-chain wallet. A Signer turns a BIP-39 seed into addresses and
// signed transactions for Bitcoin, EVM chains, Solana and Zcash.
//
// Signing methods take ownership of the seed buffer and zero it before
// returning. Callers that need the seed again must pass a copy.
package walletcore

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/sirupsen/logrus"

	"github.com/peakwallet/walletcore/btc"
	"github.com/peakwallet/walletcore/chain"
	"github.com/peakwallet/walletcore/evm"
	"github.com/peakwallet/walletcore/hdkey"
	"github.com/peakwallet/walletcore/internal/wipe"
	"github.com/peakwallet/walletcore/solana"
	"github.com/peakwallet/walletcore/utxo"
	"github.com/peakwallet/walletcore/zcash"
)

var ErrUnsupportedChain = errors.New("walletcore: unsupported chain")

// DerivedAddress is an address with the chain and path it came from.
type DerivedAddress struct {
	Chain   chain.Chain `json:"chain"`
	Address string      `json:"address"`
	Path    string      `json:"path"`
}

// Signer derives keys and signs transactions from caller-provided seeds.
// It holds no key material between calls. Safe for concurrent use.
type Signer struct {
	log *logrus.Logger
}

// New returns a Signer logging to logger. A nil logger discards output.
func New(logger *logrus.Logger) *Signer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Signer{log: logger}
}

// DeriveAddress derives the address for a chain at the standard path for
// account and index. Ed25519 chains ignore index.
func (s *Signer) DeriveAddress(seed []byte, c chain.Chain, account, index uint32) (DerivedAddress, error) {
	switch c.Curve() {
	case chain.Ed25519:
		key, err := hdkey.DeriveEd25519(seed, c, account)
		if err != nil {
			return DerivedAddress{}, err
		}
		defer key.Wipe()
		return DerivedAddress{Chain: c, Address: solana.PubkeyToAddress(key.PublicKey), Path: key.Path}, nil
	default:
		key, err := hdkey.DeriveSecp256k1(seed, c, account, index)
		if err != nil {
			return DerivedAddress{}, err
		}
		defer key.Wipe()

		var address string
		switch {
		case c == chain.Bitcoin || c == chain.BitcoinTestnet:
			address, err = btc.PubkeyToP2WPKHAddress(key.PublicKeyCompressed[:], btcNetwork(c))
		case c == chain.Zcash || c == chain.ZcashTestnet:
			address, err = zcash.PubkeyToTAddress(key.PublicKeyCompressed[:], zecNetwork(c))
		case c.IsEVM():
			address, err = evm.CompressedPubkeyToAddress(key.PublicKeyCompressed[:])
		default:
			return DerivedAddress{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
		}
		if err != nil {
			return DerivedAddress{}, err
		}

		s.log.WithFields(logrus.Fields{"chain": c.String(), "path": key.Path}).Debug("derived address")
		return DerivedAddress{Chain: c, Address: address, Path: key.Path}, nil
	}
}

// DeriveAllAddresses derives the account's first address on each mainnet
// chain family.
func (s *Signer) DeriveAllAddresses(seed []byte, account uint32) ([]DerivedAddress, error) {
	chains := []chain.Chain{chain.Bitcoin, chain.Ethereum, chain.Solana, chain.Zcash}
	addresses := make([]DerivedAddress, 0, len(chains))
	for _, c := range chains {
		addr, err := s.DeriveAddress(seed, c, account, 0)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}

// ValidateAddress checks an address against the chain's format rules.
func (s *Signer) ValidateAddress(address string, c chain.Chain) (bool, error) {
	switch {
	case c == chain.Bitcoin || c == chain.BitcoinTestnet:
		return btc.ValidateAddress(address, btcNetwork(c))
	case c == chain.Zcash || c == chain.ZcashTestnet:
		return zcash.ValidateAddress(address, zecNetwork(c))
	case c == chain.Solana || c == chain.SolanaDevnet:
		return solana.ValidateAddress(address)
	case c.IsEVM():
		return evm.ValidateAddress(address)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedChain, c)
	}
}

// SignBitcoin builds and signs a P2WPKH transaction spending the given
// UTXOs. All UTXOs must be controlled by the derived key. The seed is wiped.
func (s *Signer) SignBitcoin(seed []byte, account, index uint32, utxos []utxo.UTXO, recipient string, amount uint64, changeAddress string, feeRate uint64, testnet bool) ([]byte, error) {
	defer wipe.Bytes(seed)

	c := chain.Bitcoin
	network := btc.Mainnet
	if testnet {
		c = chain.BitcoinTestnet
		network = btc.Testnet
	}

	key, err := hdkey.DeriveSecp256k1(seed, c, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	unsigned, err := btc.BuildP2WPKHTransaction(utxos, recipient, amount, changeAddress, feeRate, network)
	if err != nil {
		return nil, err
	}
	signed, err := btc.SignTransaction(unsigned, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"chain":  c.String(),
		"inputs": len(unsigned.Tx.TxIn),
		"bytes":  len(signed),
	}).Debug("signed bitcoin transaction")
	return signed, nil
}

// SignEthereum signs a native EIP-1559 transfer, optionally carrying
// calldata. The seed is wiped.
func (s *Signer) SignEthereum(seed []byte, account, index uint32, chainID, nonce uint64, to string, value *big.Int, data []byte, maxPriorityFee, maxFee *big.Int, gasLimit uint64) (*evm.SignedTransaction, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveSecp256k1(seed, chain.Ethereum, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	tx, err := evm.BuildTransfer(chainID, nonce, to, value, maxPriorityFee, maxFee, gasLimit)
	if err != nil {
		return nil, err
	}
	tx.Data = data

	signed, err := evm.Sign(tx, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"chain_id": chainID, "nonce": nonce, "hash": signed.Hash}).Debug("signed ethereum transaction")
	return signed, nil
}

// SignERC20Transfer signs an EIP-1559 transaction calling transfer(to,
// amount) on a token contract. The seed is wiped.
func (s *Signer) SignERC20Transfer(seed []byte, account, index uint32, chainID, nonce uint64, tokenContract, to string, amount *big.Int, maxPriorityFee, maxFee *big.Int, gasLimit uint64) (*evm.SignedTransaction, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveSecp256k1(seed, chain.Ethereum, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	var word [32]byte
	amount.FillBytes(word[:])
	tx, err := evm.BuildERC20Transfer(chainID, nonce, tokenContract, to, word, maxPriorityFee, maxFee, gasLimit)
	if err != nil {
		return nil, err
	}
	signed, err := evm.Sign(tx, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"chain_id": chainID, "token": tokenContract, "hash": signed.Hash}).Debug("signed erc20 transfer")
	return signed, nil
}

// SignEthereumMessage signs with EIP-191 personal_sign, returning a 65-byte
// r || s || v signature with v in {27, 28}. The seed is wiped.
func (s *Signer) SignEthereumMessage(seed []byte, account, index uint32, message []byte) ([]byte, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveSecp256k1(seed, chain.Ethereum, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()
	return evm.SignMessage(message, key.PrivateKey[:])
}

// SignEthereumHash signs a caller-prepared 32-byte digest, as used for
// EIP-712 typed data hashed on the client side. The seed is wiped.
func (s *Signer) SignEthereumHash(seed []byte, account, index uint32, digest []byte) ([]byte, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveSecp256k1(seed, chain.Ethereum, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()
	return evm.SignHash(digest, key.PrivateKey[:])
}

// SignSolanaTransfer builds and signs a System Program transfer. The seed
// is wiped.
func (s *Signer) SignSolanaTransfer(seed []byte, account uint32, to string, lamports uint64, recentBlockhash [32]byte) ([]byte, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveEd25519(seed, chain.Solana, account)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	toBytes, err := solana.AddressToBytes(to)
	if err != nil {
		return nil, err
	}
	tx, err := solana.BuildTransfer(key.PublicKey, toBytes, lamports, recentBlockhash)
	if err != nil {
		return nil, err
	}
	wire, err := solana.Sign(tx, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"chain": "solana", "lamports": lamports, "bytes": len(wire)}).Debug("signed solana transfer")
	return wire, nil
}

// SignSolanaTokenTransfer signs an SPL token transfer between the sender's
// and recipient's associated token accounts for mint. The seed is wiped.
func (s *Signer) SignSolanaTokenTransfer(seed []byte, account uint32, mint, toWallet string, amount uint64, recentBlockhash [32]byte) ([]byte, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveEd25519(seed, chain.Solana, account)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	mintBytes, err := solana.AddressToBytes(mint)
	if err != nil {
		return nil, err
	}
	toBytes, err := solana.AddressToBytes(toWallet)
	if err != nil {
		return nil, err
	}

	sourceATA, err := solana.DeriveAssociatedTokenAddress(key.PublicKey, mintBytes)
	if err != nil {
		return nil, err
	}
	destATA, err := solana.DeriveAssociatedTokenAddress(toBytes, mintBytes)
	if err != nil {
		return nil, err
	}

	ix, err := solana.NewSPLTransferInstruction(sourceATA, destATA, key.PublicKey, amount)
	if err != nil {
		return nil, err
	}
	tx, err := solana.Compile([]solana.Instruction{ix}, key.PublicKey, recentBlockhash)
	if err != nil {
		return nil, err
	}
	wire, err := solana.Sign(tx, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"chain": "solana", "mint": mint, "amount": amount}).Debug("signed spl transfer")
	return wire, nil
}

// CoSignSolana fills this wallet's signature slot in an externally built
// transaction, as dApps hand over via wallet adapters. The seed is wiped.
func (s *Signer) CoSignSolana(seed []byte, account uint32, rawTx []byte) ([]byte, error) {
	defer wipe.Bytes(seed)

	key, err := hdkey.DeriveEd25519(seed, chain.Solana, account)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()
	return solana.CoSign(rawTx, key.PrivateKey[:])
}

// SignZcash builds and signs a transparent v5 transaction. The seed is
// wiped.
func (s *Signer) SignZcash(seed []byte, account, index uint32, utxos []utxo.UTXO, recipient string, amount uint64, changeAddress string, feeRate uint64, testnet bool, expiryHeight uint32) ([]byte, error) {
	defer wipe.Bytes(seed)

	c := chain.Zcash
	network := zcash.Mainnet
	if testnet {
		c = chain.ZcashTestnet
		network = zcash.Testnet
	}

	key, err := hdkey.DeriveSecp256k1(seed, c, account, index)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	unsigned, err := zcash.BuildTransparentTransaction(utxos, recipient, amount, changeAddress, feeRate, network, expiryHeight)
	if err != nil {
		return nil, err
	}
	signed, err := zcash.SignTransaction(unsigned, key.PrivateKey[:])
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"chain":  c.String(),
		"inputs": len(unsigned.Inputs),
		"bytes":  len(signed),
	}).Debug("signed zcash transaction")
	return signed, nil
}

func btcNetwork(c chain.Chain) btc.Network {
	if c == chain.BitcoinTestnet {
		return btc.Testnet
	}
	return btc.Mainnet
}

func zecNetwork(c chain.Chain) zcash.Network {
	if c == chain.ZcashTestnet {
		return zcash.Testnet
	}
	return zcash.Mainnet
}
