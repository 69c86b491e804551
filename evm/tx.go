package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Transaction is an unsigned EIP-1559 (type 2) transaction. To is a
// 0x-prefixed hex address; Data is empty for plain value transfers.
type Transaction struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   string
	Value                *big.Int
	Data                 []byte
}

// SignedTransaction is a broadcast-ready transaction.
type SignedTransaction struct {
	// RawTx is the full wire encoding including the 0x02 type prefix.
	RawTx []byte
	// Hash is the 0x-prefixed Keccak-256 of RawTx.
	Hash string
}

// BuildTransfer assembles an unsigned native-value transfer.
func BuildTransfer(chainID, nonce uint64, to string, value, maxPriorityFee, maxFee *big.Int, gasLimit uint64) (*Transaction, error) {
	if _, err := parseAddress(to); err != nil {
		return nil, err
	}
	return &Transaction{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: maxPriorityFee,
		MaxFeePerGas:         maxFee,
		GasLimit:             gasLimit,
		To:                   to,
		Value:                value,
	}, nil
}

// BuildERC20Transfer assembles an unsigned transfer(address,uint256) call to
// a token contract. amount is a big-endian 32-byte uint256; the transaction
// itself carries zero native value.
func BuildERC20Transfer(chainID, nonce uint64, tokenContract, to string, amount [32]byte, maxPriorityFee, maxFee *big.Int, gasLimit uint64) (*Transaction, error) {
	if _, err := parseAddress(tokenContract); err != nil {
		return nil, err
	}
	calldata, err := EncodeTransfer(to, amount)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: maxPriorityFee,
		MaxFeePerGas:         maxFee,
		GasLimit:             gasLimit,
		To:                   tokenContract,
		Value:                new(big.Int),
		Data:                 calldata,
	}, nil
}

type accessListEntry struct {
	Address     common.Address
	StorageKeys []common.Hash
}

type unsignedFields struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	AccessList           []accessListEntry
}

type signedFields struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	AccessList           []accessListEntry
	YParity              uint64
	R                    *big.Int
	S                    *big.Int
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// EncodeUnsigned produces the signing payload: 0x02 || rlp(chainId, nonce,
// maxPriorityFee, maxFee, gasLimit, to, value, data, accessList). The access
// list is always empty.
func EncodeUnsigned(tx *Transaction) ([]byte, error) {
	to, err := parseAddress(tx.To)
	if err != nil {
		return nil, err
	}
	encoded, err := rlp.EncodeToBytes(&unsignedFields{
		ChainID:              tx.ChainID,
		Nonce:                tx.Nonce,
		MaxPriorityFeePerGas: orZero(tx.MaxPriorityFeePerGas),
		MaxFeePerGas:         orZero(tx.MaxFeePerGas),
		GasLimit:             tx.GasLimit,
		To:                   to,
		Value:                orZero(tx.Value),
		Data:                 tx.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rlp: %v", ErrSerialization, err)
	}
	return append([]byte{0x02}, encoded...), nil
}

// SigningDigest is the Keccak-256 hash the sender signs.
func SigningDigest(tx *Transaction) ([32]byte, error) {
	payload, err := EncodeUnsigned(tx)
	if err != nil {
		return [32]byte{}, err
	}
	return [32]byte(crypto.Keccak256Hash(payload)), nil
}

// Sign signs the transaction with a 32-byte secp256k1 private key and
// returns the raw wire bytes plus the transaction hash.
func Sign(tx *Transaction, privateKey []byte) (*SignedTransaction, error) {
	payload, err := EncodeUnsigned(tx)
	if err != nil {
		return nil, err
	}
	digest := crypto.Keccak256(payload)

	sig, err := signDigest(digest, privateKey)
	if err != nil {
		return nil, err
	}

	to, err := parseAddress(tx.To)
	if err != nil {
		return nil, err
	}
	encoded, err := rlp.EncodeToBytes(&signedFields{
		ChainID:              tx.ChainID,
		Nonce:                tx.Nonce,
		MaxPriorityFeePerGas: orZero(tx.MaxPriorityFeePerGas),
		MaxFeePerGas:         orZero(tx.MaxFeePerGas),
		GasLimit:             tx.GasLimit,
		To:                   to,
		Value:                orZero(tx.Value),
		Data:                 tx.Data,
		YParity:              uint64(sig[64]),
		R:                    new(big.Int).SetBytes(sig[:32]),
		S:                    new(big.Int).SetBytes(sig[32:64]),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rlp: %v", ErrSerialization, err)
	}

	raw := append([]byte{0x02}, encoded...)
	return &SignedTransaction{
		RawTx: raw,
		Hash:  crypto.Keccak256Hash(raw).Hex(),
	}, nil
}

// SignMessage signs an arbitrary message per EIP-191 personal_sign:
// keccak256("\x19Ethereum Signed Message:\n" + len + message). Returns the
// 65-byte r||s||v signature with v in {27, 28}.
func SignMessage(message, privateKey []byte) ([]byte, error) {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	digest := crypto.Keccak256([]byte(prefix), message)

	sig, err := signDigest(digest, privateKey)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SignHash signs a caller-supplied 32-byte digest with no prefixing.
// Returns the 65-byte r||s||v signature with v in {27, 28}. The caller is
// responsible for having hashed the right thing.
func SignHash(digest, privateKey []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, fmt.Errorf("%w: digest must be 32 bytes, got %d", ErrSigning, len(digest))
	}
	sig, err := signDigest(digest, privateKey)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// signDigest produces a 65-byte r||s||v signature with v in {0, 1}. The
// local key copy is wiped before returning.
func signDigest(digest, privateKey []byte) ([]byte, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidPrivateKey, len(privateKey))
	}
	key, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrivateKey, err)
	}
	defer key.D.SetInt64(0)

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return sig, nil
}
