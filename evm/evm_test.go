package evm

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "0x000000000000000000000000000000000000dEaD"

// scalar 1: the generator point's address.
func testPrivKey() []byte {
	key := make([]byte, 32)
	key[31] = 1
	return key
}

func TestPubkeyToAddressKnownKey(t *testing.T) {
	key, err := crypto.ToECDSA(testPrivKey())
	require.NoError(t, err)

	addr, err := PubkeyToAddress(crypto.FromECDSAPub(&key.PublicKey))
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addr)

	compressed := crypto.CompressPubkey(&key.PublicKey)
	addr2, err := CompressedPubkeyToAddress(compressed)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
}

func TestPubkeyToAddressRejectsGarbage(t *testing.T) {
	_, err := PubkeyToAddress(make([]byte, 65))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
	_, err = CompressedPubkeyToAddress(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestChecksumAddress(t *testing.T) {
	// EIP-55 reference vectors.
	for _, vector := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	} {
		got, err := ChecksumAddress(vector)
		require.NoError(t, err)
		assert.Equal(t, vector, got)
	}
}

func TestValidateAddress(t *testing.T) {
	ok, err := ValidateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.True(t, ok)

	// All lowercase and all uppercase skip the checksum.
	ok, err = ValidateAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ValidateAddress("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED")
	require.NoError(t, err)
	assert.True(t, ok)

	// Bad mixed-case checksum.
	ok, err = ValidateAddress("0x5Aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ValidateAddress("5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ValidateAddress("0xdead")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ValidateAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaeg")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEncodeTransfer(t *testing.T) {
	var amount [32]byte
	copy(amount[24:], []byte{0x0d, 0xe0, 0xb6, 0xb3, 0xa7, 0x64, 0x00, 0x00}) // 1e18

	data, err := EncodeTransfer(testAddress, amount)
	require.NoError(t, err)
	require.Len(t, data, 68)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(data[:4]))
	assert.Equal(t, make([]byte, 12), data[4:16])
	assert.Equal(t, byte(0xdE), data[34])
	assert.Equal(t, byte(0xaD), data[35])
	assert.Equal(t, amount[:], data[36:])

	_, err = EncodeTransfer("nope", amount)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEncodeBalanceOfAndApprove(t *testing.T) {
	data, err := EncodeBalanceOf(testAddress)
	require.NoError(t, err)
	require.Len(t, data, 36)
	assert.Equal(t, "70a08231", hex.EncodeToString(data[:4]))

	var amount [32]byte
	amount[31] = 0x64
	data, err = EncodeApprove(testAddress, amount)
	require.NoError(t, err)
	require.Len(t, data, 68)
	assert.Equal(t, "095ea7b3", hex.EncodeToString(data[:4]))
	assert.Equal(t, byte(0x64), data[67])
}

func TestBytesParamTruncates(t *testing.T) {
	word := BytesParam([]byte{0xca, 0xfe})
	assert.Equal(t, byte(0xca), word[0])
	assert.Equal(t, byte(0xfe), word[1])
	assert.Equal(t, [30]byte{}, [30]byte(word[2:]))

	long := make([]byte, 64)
	for i := range long {
		long[i] = 0xff
	}
	word = BytesParam(long)
	for _, b := range word {
		assert.Equal(t, byte(0xff), b)
	}
}

func TestDecodeUint256(t *testing.T) {
	data := make([]byte, 64)
	data[31] = 42
	data[63] = 99

	out, err := DecodeUint256(data)
	require.NoError(t, err)
	assert.Equal(t, byte(42), out[31])

	_, err = DecodeUint256(make([]byte, 16))
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestEncodeUnsigned(t *testing.T) {
	tx, err := BuildTransfer(1, 42, testAddress, big.NewInt(1_000_000_000), big.NewInt(100), big.NewInt(200), 21_000)
	require.NoError(t, err)

	payload, err := EncodeUnsigned(tx)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), payload[0])
	assert.Greater(t, len(payload), 1)

	again, err := EncodeUnsigned(tx)
	require.NoError(t, err)
	assert.Equal(t, payload, again)
}

func TestSignTransactionRoundTrip(t *testing.T) {
	tx, err := BuildTransfer(
		1, 0, testAddress,
		big.NewInt(1_000_000_000_000_000_000),
		big.NewInt(1_000_000_000), big.NewInt(50_000_000_000),
		21_000,
	)
	require.NoError(t, err)

	signed, err := Sign(tx, testPrivKey())
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), signed.RawTx[0])
	assert.Len(t, signed.Hash, 66)

	var parsed types.Transaction
	require.NoError(t, parsed.UnmarshalBinary(signed.RawTx))
	assert.Equal(t, uint8(types.DynamicFeeTxType), parsed.Type())
	assert.Equal(t, uint64(0), parsed.Nonce())
	assert.Equal(t, uint64(21_000), parsed.Gas())
	assert.Equal(t, "1000000000000000000", parsed.Value().String())
	require.NotNil(t, parsed.To())
	assert.Equal(t, testAddress, parsed.To().Hex())
	assert.Equal(t, signed.Hash, parsed.Hash().Hex())

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), &parsed)
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", sender.Hex())
}

func TestSignTransactionDeterministicAndDistinct(t *testing.T) {
	tx1, err := BuildTransfer(1, 0, testAddress, new(big.Int), big.NewInt(100), big.NewInt(200), 21_000)
	require.NoError(t, err)
	tx2, err := BuildTransfer(1, 1, testAddress, new(big.Int), big.NewInt(100), big.NewInt(200), 21_000)
	require.NoError(t, err)
	tx3, err := BuildTransfer(137, 0, testAddress, new(big.Int), big.NewInt(100), big.NewInt(200), 21_000)
	require.NoError(t, err)

	s1a, err := Sign(tx1, testPrivKey())
	require.NoError(t, err)
	s1b, err := Sign(tx1, testPrivKey())
	require.NoError(t, err)
	s2, err := Sign(tx2, testPrivKey())
	require.NoError(t, err)
	s3, err := Sign(tx3, testPrivKey())
	require.NoError(t, err)

	assert.Equal(t, s1a.RawTx, s1b.RawTx)
	assert.NotEqual(t, s1a.RawTx, s2.RawTx)
	assert.NotEqual(t, s1a.RawTx, s3.RawTx)
}

func TestSignTransactionInvalidKey(t *testing.T) {
	tx, err := BuildTransfer(1, 0, testAddress, new(big.Int), nil, nil, 21_000)
	require.NoError(t, err)

	_, err = Sign(tx, make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
	_, err = Sign(tx, make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestBuildERC20Transfer(t *testing.T) {
	token := "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	var amount [32]byte
	amount[31] = 100

	tx, err := BuildERC20Transfer(1, 5, token, testAddress, amount, big.NewInt(1_000_000_000), big.NewInt(50_000_000_000), 65_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), tx.Nonce)
	assert.Equal(t, token, tx.To)
	assert.Zero(t, tx.Value.Sign())
	require.Len(t, tx.Data, 68)
	assert.Equal(t, []byte{0xa9, 0x05, 0x9c, 0xbb}, tx.Data[:4])

	_, err = BuildERC20Transfer(1, 0, "not-an-address", testAddress, amount, nil, nil, 65_000)
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = BuildERC20Transfer(1, 0, token, "bad", amount, nil, nil, 65_000)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestSignMessageRecoverable(t *testing.T) {
	message := []byte("hello peakwallet")
	sig, err := SignMessage(message, testPrivKey())
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	prefix := "\x19Ethereum Signed Message:\n16"
	digest := crypto.Keccak256([]byte(prefix), message)
	pubkey, err := RecoverPubkey(sig, digest)
	require.NoError(t, err)

	addr, err := PubkeyToAddress(pubkey)
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addr)
}

func TestSignHash(t *testing.T) {
	digest := crypto.Keccak256([]byte("raw digest input"))
	sig, err := SignHash(digest, testPrivKey())
	require.NoError(t, err)
	require.Len(t, sig, 65)

	pubkey, err := RecoverPubkey(sig, digest)
	require.NoError(t, err)
	addr, err := PubkeyToAddress(pubkey)
	require.NoError(t, err)
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addr)

	_, err = SignHash(make([]byte, 16), testPrivKey())
	assert.ErrorIs(t, err, ErrSigning)
}

func TestRecoverPubkeyInputChecks(t *testing.T) {
	_, err := RecoverPubkey(make([]byte, 64), make([]byte, 32))
	assert.ErrorIs(t, err, ErrSigning)
	_, err = RecoverPubkey(make([]byte, 65), make([]byte, 31))
	assert.ErrorIs(t, err, ErrSigning)
}
