package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"

	"github.com/peakwallet/walletcore/internal/wipe"
)

// SystemProgramID is the System Program public key: 32 zero bytes, which
// encodes to "11111111111111111111111111111111".
var SystemProgramID = [32]byte{}

// System Program Transfer instruction index (u32 LE in instruction data).
const systemTransferIndex uint32 = 2

// AccountMeta is one account reference carried by an instruction.
type AccountMeta struct {
	Pubkey     [32]byte
	IsSigner   bool
	IsWritable bool
}

// Instruction is a program invocation before compilation.
type Instruction struct {
	ProgramID [32]byte
	Accounts  []AccountMeta
	Data      []byte
}

// CompiledInstruction references accounts by index into the transaction's
// account key table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	AccountIndices []uint8
	Data           []byte
}

// Transaction is a compiled message ready for serialization and signing.
// AccountKeys are in canonical order: writable signers (fee payer first),
// read-only signers, writable non-signers, read-only non-signers.
type Transaction struct {
	AccountKeys           [][32]byte
	NumRequiredSignatures uint8
	NumReadonlySigned     uint8
	NumReadonlyUnsigned   uint8
	RecentBlockhash       [32]byte
	Instructions          []CompiledInstruction
}

// NewSystemTransferInstruction builds a System Program Transfer moving
// lamports from one account to another. Data is u32 LE index 2 followed by
// the u64 LE amount.
func NewSystemTransferInstruction(from, to [32]byte, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[:4], systemTransferIndex)
	binary.LittleEndian.PutUint64(data[4:], lamports)

	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: to, IsWritable: true},
		},
		Data: data,
	}
}

// BuildTransfer compiles a native SOL transfer with from as fee payer. The
// caller supplies a recent blockhash from the RPC.
func BuildTransfer(from, to [32]byte, lamports uint64, recentBlockhash [32]byte) (*Transaction, error) {
	if lamports == 0 {
		return nil, fmt.Errorf("%w: lamports must be > 0", ErrTransactionBuild)
	}
	ix := NewSystemTransferInstruction(from, to, lamports)
	return Compile([]Instruction{ix}, from, recentBlockhash)
}

type accountEntry struct {
	pubkey     [32]byte
	isSigner   bool
	isWritable bool
}

func (e *accountEntry) rank() int {
	switch {
	case e.isSigner && e.isWritable:
		return 0
	case e.isSigner:
		return 1
	case e.isWritable:
		return 2
	default:
		return 3
	}
}

// Compile flattens instructions into the canonical account table and index
// form. The fee payer is always a writable signer at index 0. Account
// permissions are OR-merged when a pubkey appears more than once.
func Compile(instructions []Instruction, feePayer [32]byte, recentBlockhash [32]byte) (*Transaction, error) {
	var entries []*accountEntry
	upsert := func(pubkey [32]byte, signer, writable bool) {
		for _, e := range entries {
			if e.pubkey == pubkey {
				e.isSigner = e.isSigner || signer
				e.isWritable = e.isWritable || writable
				return
			}
		}
		entries = append(entries, &accountEntry{pubkey: pubkey, isSigner: signer, isWritable: writable})
	}

	upsert(feePayer, true, true)
	for _, ix := range instructions {
		for _, meta := range ix.Accounts {
			upsert(meta.Pubkey, meta.IsSigner, meta.IsWritable)
		}
		upsert(ix.ProgramID, false, false)
	}

	// Stable insertion-order sort within each permission class.
	ordered := make([]*accountEntry, 0, len(entries))
	for rank := 0; rank <= 3; rank++ {
		for _, e := range entries {
			if e.rank() == rank {
				ordered = append(ordered, e)
			}
		}
	}

	if ordered[0].pubkey != feePayer {
		for i, e := range ordered {
			if e.pubkey == feePayer {
				ordered[0], ordered[i] = ordered[i], ordered[0]
				break
			}
		}
	}

	tx := &Transaction{RecentBlockhash: recentBlockhash}
	for _, e := range ordered {
		tx.AccountKeys = append(tx.AccountKeys, e.pubkey)
		if e.isSigner {
			tx.NumRequiredSignatures++
			if !e.isWritable {
				tx.NumReadonlySigned++
			}
		} else if !e.isWritable {
			tx.NumReadonlyUnsigned++
		}
	}

	indexOf := func(pubkey [32]byte) (uint8, error) {
		for i, key := range tx.AccountKeys {
			if key == pubkey {
				return uint8(i), nil
			}
		}
		return 0, fmt.Errorf("%w: account missing from key table", ErrTransactionBuild)
	}

	for _, ix := range instructions {
		programIdx, err := indexOf(ix.ProgramID)
		if err != nil {
			return nil, err
		}
		compiled := CompiledInstruction{ProgramIDIndex: programIdx, Data: ix.Data}
		for _, meta := range ix.Accounts {
			idx, err := indexOf(meta.Pubkey)
			if err != nil {
				return nil, err
			}
			compiled.AccountIndices = append(compiled.AccountIndices, idx)
		}
		tx.Instructions = append(tx.Instructions, compiled)
	}

	return tx, nil
}

// SerializeMessage produces the message bytes that get signed: the 3-byte
// header, the account key table, the blockhash, and the instruction list,
// with compact-u16 length prefixes.
func SerializeMessage(tx *Transaction) []byte {
	var buf bytes.Buffer
	buf.WriteByte(tx.NumRequiredSignatures)
	buf.WriteByte(tx.NumReadonlySigned)
	buf.WriteByte(tx.NumReadonlyUnsigned)

	buf.Write(EncodeCompactU16(uint16(len(tx.AccountKeys))))
	for _, key := range tx.AccountKeys {
		buf.Write(key[:])
	}

	buf.Write(tx.RecentBlockhash[:])

	buf.Write(EncodeCompactU16(uint16(len(tx.Instructions))))
	for _, ix := range tx.Instructions {
		buf.WriteByte(ix.ProgramIDIndex)
		buf.Write(EncodeCompactU16(uint16(len(ix.AccountIndices))))
		buf.Write(ix.AccountIndices)
		buf.Write(EncodeCompactU16(uint16(len(ix.Data))))
		buf.Write(ix.Data)
	}
	return buf.Bytes()
}

// Sign serializes and signs a single-signer transaction with the 32-byte
// Ed25519 seed and returns the full wire bytes.
func Sign(tx *Transaction, privateKey []byte) ([]byte, error) {
	key, err := expandKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipe.Bytes(key)

	message := SerializeMessage(tx)
	signature := ed25519.Sign(key, message)

	var wireBuf bytes.Buffer
	wireBuf.Write(EncodeCompactU16(1))
	wireBuf.Write(signature)
	wireBuf.Write(message)
	return wireBuf.Bytes(), nil
}

// CoSign signs a pre-built wire-format transaction, e.g. one assembled by a
// dApp. It locates this key's slot among the message's required signers,
// signs the message bytes, and splices the 64-byte signature into that slot.
// Other signature slots and the message are left untouched. Errors if the
// key's pubkey is not a required signer.
func CoSign(rawTx, privateKey []byte) ([]byte, error) {
	key, err := expandKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer wipe.Bytes(key)
	pubkey := key.Public().(ed25519.PublicKey)

	numSigs, compactLen, err := DecodeCompactU16(rawTx)
	if err != nil {
		return nil, err
	}
	if numSigs == 0 {
		return nil, fmt.Errorf("%w: transaction has zero signature slots", ErrTransactionBuild)
	}

	sigsStart := compactLen
	sigsEnd := sigsStart + int(numSigs)*64
	if sigsEnd > len(rawTx) {
		return nil, fmt.Errorf("%w: signature slots exceed transaction length", ErrSerialization)
	}

	message := rawTx[sigsEnd:]
	if len(message) < 4 {
		return nil, fmt.Errorf("%w: message too short", ErrSerialization)
	}

	numRequiredSigs := int(message[0])
	numAccounts, accountsLen, err := DecodeCompactU16(message[3:])
	if err != nil {
		return nil, err
	}
	accountsStart := 3 + accountsLen
	if accountsStart+int(numAccounts)*32 > len(message) {
		return nil, fmt.Errorf("%w: message too short for account keys", ErrSerialization)
	}

	signerIdx := -1
	signerCount := min(numRequiredSigs, int(numAccounts))
	for i := 0; i < signerCount; i++ {
		start := accountsStart + i*32
		if bytes.Equal(message[start:start+32], pubkey) {
			signerIdx = i
			break
		}
	}
	if signerIdx < 0 {
		return nil, fmt.Errorf("%w: wallet pubkey is not a required signer", ErrSigning)
	}

	signature := ed25519.Sign(key, message)

	signed := make([]byte, len(rawTx))
	copy(signed, rawTx)
	copy(signed[sigsStart+signerIdx*64:], signature)
	return signed, nil
}

// expandKey turns a 32-byte seed into a full Ed25519 private key. The caller
// wipes the returned key.
func expandKey(privateKey []byte) (ed25519.PrivateKey, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("%w: want 32-byte ed25519 seed, got %d", ErrSigning, len(privateKey))
	}
	return ed25519.NewKeyFromSeed(privateKey), nil
}
