package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// TokenProgramID is the SPL Token Program,
// TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA.
var TokenProgramID = mustProgramID("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

// AssociatedTokenProgramID is the Associated Token Account Program,
// ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL.
var AssociatedTokenProgramID = mustProgramID("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")

// Domain separator appended to every PDA derivation hash.
var pdaMarker = []byte("ProgramDerivedAddress")

// SPL Token Transfer instruction index.
const splTransferIndex byte = 3

func mustProgramID(address string) [32]byte {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != 32 {
		panic(fmt.Sprintf("bad program id %q", address))
	}
	var out [32]byte
	copy(out[:], decoded)
	return out
}

// NewSPLTransferInstruction builds an SPL Token Transfer of amount base
// units between two token accounts. owner is the wallet that owns the
// source account and must sign. Data is the 1-byte instruction index
// followed by the u64 LE amount.
func NewSPLTransferInstruction(fromTokenAccount, toTokenAccount, owner [32]byte, amount uint64) (Instruction, error) {
	if amount == 0 {
		return Instruction{}, fmt.Errorf("%w: token amount must be > 0", ErrTransactionBuild)
	}

	data := make([]byte, 9)
	data[0] = splTransferIndex
	for i := 0; i < 8; i++ {
		data[1+i] = byte(amount >> (8 * i))
	}

	return Instruction{
		ProgramID: TokenProgramID,
		Accounts: []AccountMeta{
			{Pubkey: fromTokenAccount, IsWritable: true},
			{Pubkey: toTokenAccount, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: data,
	}, nil
}

// DeriveAssociatedTokenAddress computes the canonical token account for a
// wallet and mint: the PDA of [wallet, token program, mint] under the
// associated token program.
func DeriveAssociatedTokenAddress(wallet, mint [32]byte) ([32]byte, error) {
	address, _, err := FindProgramAddress([][]byte{wallet[:], TokenProgramID[:], mint[:]}, AssociatedTokenProgramID)
	return address, err
}

// FindProgramAddress searches bump seeds from 255 downward for the first
// derived address that is not an Ed25519 curve point, returning the address
// and the bump that produced it.
func FindProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		address, ok := tryCreateProgramAddress(seeds, byte(bump), programID)
		if ok {
			return address, uint8(bump), nil
		}
	}
	return [32]byte{}, 0, fmt.Errorf("%w: no valid PDA bump seed", ErrInvalidAddress)
}

func tryCreateProgramAddress(seeds [][]byte, bump byte, programID [32]byte) ([32]byte, bool) {
	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write([]byte{bump})
	h.Write(programID[:])
	h.Write(pdaMarker)

	var address [32]byte
	copy(address[:], h.Sum(nil))

	// A PDA must not be a curve point, so no private key can exist for it.
	if isOnCurve(address) {
		return [32]byte{}, false
	}
	return address, true
}

func isOnCurve(candidate [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(candidate[:])
	return err == nil
}
