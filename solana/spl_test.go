package solana

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramIDConstants(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", PubkeyToAddress(TokenProgramID))
	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", PubkeyToAddress(AssociatedTokenProgramID))
}

func TestSPLTransferInstruction(t *testing.T) {
	from := [32]byte{1}
	to := [32]byte{2}
	owner := [32]byte{3}

	ix, err := NewSPLTransferInstruction(from, to, owner, 500_000)
	require.NoError(t, err)

	assert.Equal(t, TokenProgramID, ix.ProgramID)
	require.Len(t, ix.Data, 9)
	assert.Equal(t, byte(3), ix.Data[0])
	assert.Equal(t, uint64(500_000), binary.LittleEndian.Uint64(ix.Data[1:]))

	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.False(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.False(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[2].IsSigner)
	assert.False(t, ix.Accounts[2].IsWritable)
}

func TestSPLTransferZeroAmount(t *testing.T) {
	_, err := NewSPLTransferInstruction([32]byte{1}, [32]byte{2}, [32]byte{3}, 0)
	assert.ErrorIs(t, err, ErrTransactionBuild)
}

func TestSPLTransferSignedEndToEnd(t *testing.T) {
	priv, owner := testKeypair(0x42)
	source := [32]byte{0x10}
	dest := [32]byte{0x20}

	ix, err := NewSPLTransferInstruction(source, dest, owner, 1_000_000)
	require.NoError(t, err)
	tx, err := Compile([]Instruction{ix}, owner, [32]byte{0xdd})
	require.NoError(t, err)

	assert.Equal(t, owner, tx.AccountKeys[0])
	assert.Equal(t, uint8(1), tx.NumRequiredSignatures)

	wire, err := Sign(tx, priv)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(owner[:], wire[65:], wire[1:65]))
}

func TestDeriveAssociatedTokenAddress(t *testing.T) {
	wallet := [32]byte{0xaa}
	mint := [32]byte{0xbb}

	ata, err := DeriveAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)
	assert.False(t, isOnCurve(ata))

	again, err := DeriveAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, again)

	otherWallet, err := DeriveAssociatedTokenAddress([32]byte{0xac}, mint)
	require.NoError(t, err)
	assert.NotEqual(t, ata, otherWallet)

	otherMint, err := DeriveAssociatedTokenAddress(wallet, [32]byte{0xbc})
	require.NoError(t, err)
	assert.NotEqual(t, ata, otherMint)
}

func TestDeriveATAForUSDCMint(t *testing.T) {
	mint, err := AddressToBytes("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)

	wallet := [32]byte{}
	for i := range wallet {
		wallet[i] = 0x42
	}

	ata, err := DeriveAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)
	assert.False(t, isOnCurve(ata))

	ok, err := ValidateAddress(PubkeyToAddress(ata))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFindProgramAddressBump(t *testing.T) {
	address, bump, err := FindProgramAddress([][]byte{[]byte("seed")}, TokenProgramID)
	require.NoError(t, err)
	assert.False(t, isOnCurve(address))

	// The returned bump reproduces the same address.
	again, ok := tryCreateProgramAddress([][]byte{[]byte("seed")}, bump, TokenProgramID)
	require.True(t, ok)
	assert.Equal(t, address, again)
}

func TestIsOnCurve(t *testing.T) {
	// The Ed25519 basepoint in compressed form.
	basepoint := [32]byte{0x58}
	for i := 1; i < 32; i++ {
		basepoint[i] = 0x66
	}
	assert.True(t, isOnCurve(basepoint))

	notAPoint := [32]byte{}
	for i := range notAPoint {
		notAPoint[i] = 0x02
	}
	assert.False(t, isOnCurve(notAPoint))
}
