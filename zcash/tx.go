package zcash

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/dchest/blake2b"

	"github.com/peakwallet/walletcore/utxo"
)

// NU5-era v5 transaction constants.
const (
	txVersion      uint32 = 0x80000005 // fOverwintered | v5
	versionGroupID uint32 = 0x26A7270A
	// NU5 consensus branch id, identical on mainnet and testnet.
	consensusBranchID uint32 = 0xC2D6D0B4

	sighashAll byte = 0x01

	// DustThreshold is the minimum change output value in zatoshi.
	DustThreshold = 546
)

// Transparent inputs signal nLockTime without opting into RBF.
const txSequence uint32 = 0xFFFFFFFE

// FeeModel estimates transparent v5 transaction sizes. The overhead covers
// the five header words, the bundle counts and the empty Sapling and Orchard
// sections; inputs assume a P2PKH scriptSig.
var FeeModel = utxo.FeeModel{
	TxOverhead: 46,
	InputSize:  148,
	OutputSize: 34,
}

// EstimateFee returns the fee in zatoshi for a transaction shape at the
// given zat/byte rate.
func EstimateFee(numInputs, numOutputs int, feeRate uint64) uint64 {
	return FeeModel.Estimate(numInputs, numOutputs, feeRate)
}

// TxInput spends a transparent prevout. PrevTxID is in internal byte order
// and ScriptPubKey doubles as the ZIP-244 script code.
type TxInput struct {
	PrevTxID     [32]byte
	PrevVout     uint32
	ScriptPubKey []byte
	Amount       uint64
	Sequence     uint32
}

// TxOutput is a transparent output in zatoshi.
type TxOutput struct {
	Amount uint64
	Script []byte
}

// UnsignedTx is an unsigned v5 transaction with only a transparent bundle.
type UnsignedTx struct {
	Version           uint32
	VersionGroupID    uint32
	ConsensusBranchID uint32
	LockTime          uint32
	ExpiryHeight      uint32
	Inputs            []TxInput
	Outputs           []TxOutput
}

func p2pkhScript(pubkeyHash [20]byte) []byte {
	script := make([]byte, 0, 25)
	script = append(script, 0x76, 0xA9, 0x14) // OP_DUP OP_HASH160 push-20
	script = append(script, pubkeyHash[:]...)
	script = append(script, 0x88, 0xAC) // OP_EQUALVERIFY OP_CHECKSIG
	return script
}

// BuildTransparentTransaction selects UTXOs greedily and builds an unsigned
// v5 transaction paying amount zatoshi to recipient. Change above the dust
// threshold goes back to changeAddress, otherwise it is left to the fee. The
// expiry height bounds how long the transaction stays valid in the mempool.
func BuildTransparentTransaction(utxos []utxo.UTXO, recipient string, amount uint64, changeAddress string, feeRate uint64, network Network, expiryHeight uint32) (*UnsignedTx, error) {
	recipientHash, err := AddressToPubkeyHash(recipient, network)
	if err != nil {
		return nil, err
	}
	changeHash, err := AddressToPubkeyHash(changeAddress, network)
	if err != nil {
		return nil, err
	}

	sel, err := utxo.Select(utxos, amount, feeRate, FeeModel)
	if err != nil {
		return nil, err
	}

	inputs := make([]TxInput, 0, len(sel.UTXOs))
	for _, u := range sel.UTXOs {
		txid, err := parseTxid(u.TxID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, TxInput{
			PrevTxID:     txid,
			PrevVout:     u.Vout,
			ScriptPubKey: u.ScriptPubKey,
			Amount:       u.Amount,
			Sequence:     txSequence,
		})
	}

	outputs := []TxOutput{{Amount: amount, Script: p2pkhScript(recipientHash)}}
	fee2 := EstimateFee(len(inputs), 2, feeRate)
	if change := sel.Total - amount; change > fee2 && change-fee2 > DustThreshold {
		outputs = append(outputs, TxOutput{Amount: change - fee2, Script: p2pkhScript(changeHash)})
	}

	return &UnsignedTx{
		Version:           txVersion,
		VersionGroupID:    versionGroupID,
		ConsensusBranchID: consensusBranchID,
		LockTime:          0,
		ExpiryHeight:      expiryHeight,
		Inputs:            inputs,
		Outputs:           outputs,
	}, nil
}

// SignTransaction signs every transparent input with the same secp256k1 key
// under SIGHASH_ALL and returns the serialized v5 transaction.
func SignTransaction(tx *UnsignedTx, privateKey []byte) ([]byte, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()
	pubkey := priv.PubKey().SerializeCompressed()

	scriptSigs := make([][]byte, 0, len(tx.Inputs))
	for i := range tx.Inputs {
		sighash, err := signatureDigest(tx, i)
		if err != nil {
			return nil, err
		}

		der := ecdsa.Sign(priv, sighash[:]).Serialize()
		sigWithType := append(der, sighashAll)

		scriptSig := make([]byte, 0, len(sigWithType)+35)
		scriptSig = append(scriptSig, byte(len(sigWithType)))
		scriptSig = append(scriptSig, sigWithType...)
		scriptSig = append(scriptSig, 33)
		scriptSig = append(scriptSig, pubkey...)
		scriptSigs = append(scriptSigs, scriptSig)
	}

	return serializeV5(tx, scriptSigs), nil
}

// signatureDigest computes the ZIP-244 signature digest for one input:
// BLAKE2b-256 with personalization "ZcashTxHash_" || branch over the header,
// transparent, Sapling and Orchard digests.
func signatureDigest(tx *UnsignedTx, inputIndex int) ([32]byte, error) {
	transparent, err := transparentSigDigest(tx, inputIndex)
	if err != nil {
		return [32]byte{}, err
	}
	header := headerDigest(tx)
	sapling := blake2b256([]byte("ZTxIdSaplingHash"), nil)
	orchard := blake2b256([]byte("ZTxIdOrchardHash"), nil)

	var persona [16]byte
	copy(persona[:12], "ZcashTxHash_")
	binary.LittleEndian.PutUint32(persona[12:], tx.ConsensusBranchID)

	data := make([]byte, 0, 128)
	data = append(data, header[:]...)
	data = append(data, transparent[:]...)
	data = append(data, sapling[:]...)
	data = append(data, orchard[:]...)
	return blake2b256(persona[:], data), nil
}

func headerDigest(tx *UnsignedTx) [32]byte {
	data := make([]byte, 20)
	binary.LittleEndian.PutUint32(data[0:], tx.Version)
	binary.LittleEndian.PutUint32(data[4:], tx.VersionGroupID)
	binary.LittleEndian.PutUint32(data[8:], tx.ConsensusBranchID)
	binary.LittleEndian.PutUint32(data[12:], tx.LockTime)
	binary.LittleEndian.PutUint32(data[16:], tx.ExpiryHeight)
	return blake2b256([]byte("ZTxIdHeadersHash"), data)
}

func transparentSigDigest(tx *UnsignedTx, inputIndex int) ([32]byte, error) {
	if inputIndex >= len(tx.Inputs) {
		return [32]byte{}, fmt.Errorf("%w: input index %d out of bounds", ErrSigning, inputIndex)
	}

	var data []byte
	for _, in := range tx.Inputs {
		data = append(data, in.PrevTxID[:]...)
		data = binary.LittleEndian.AppendUint32(data, in.PrevVout)
	}
	prevouts := blake2b256([]byte("ZTxIdPrevoutHash"), data)

	data = data[:0]
	for _, in := range tx.Inputs {
		data = binary.LittleEndian.AppendUint64(data, in.Amount)
	}
	amounts := blake2b256([]byte("ZTxIdAmountsHash"), data)

	data = data[:0]
	for _, in := range tx.Inputs {
		data = appendCompactSize(data, uint64(len(in.ScriptPubKey)))
		data = append(data, in.ScriptPubKey...)
	}
	scripts := blake2b256([]byte("ZTxIdScriptsHash"), data)

	data = data[:0]
	for _, in := range tx.Inputs {
		data = binary.LittleEndian.AppendUint32(data, in.Sequence)
	}
	sequences := blake2b256([]byte("ZTxIdSequencHash"), data)

	data = data[:0]
	for _, out := range tx.Outputs {
		data = binary.LittleEndian.AppendUint64(data, out.Amount)
		data = appendCompactSize(data, uint64(len(out.Script)))
		data = append(data, out.Script...)
	}
	outputs := blake2b256([]byte("ZTxIdOutputsHash"), data)

	in := tx.Inputs[inputIndex]
	data = data[:0]
	data = append(data, in.PrevTxID[:]...)
	data = binary.LittleEndian.AppendUint32(data, in.PrevVout)
	data = binary.LittleEndian.AppendUint64(data, in.Amount)
	data = appendCompactSize(data, uint64(len(in.ScriptPubKey)))
	data = append(data, in.ScriptPubKey...)
	data = binary.LittleEndian.AppendUint32(data, in.Sequence)
	txin := blake2b256([]byte("Zcash___TxInHash"), data)

	combined := make([]byte, 0, 1+6*32)
	combined = append(combined, sighashAll)
	combined = append(combined, prevouts[:]...)
	combined = append(combined, amounts[:]...)
	combined = append(combined, scripts[:]...)
	combined = append(combined, sequences[:]...)
	combined = append(combined, outputs[:]...)
	combined = append(combined, txin[:]...)
	return blake2b256([]byte("ZTxIdTranspaHash"), combined), nil
}

func serializeV5(tx *UnsignedTx, scriptSigs [][]byte) []byte {
	buf := make([]byte, 0, 512)
	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)
	buf = binary.LittleEndian.AppendUint32(buf, tx.VersionGroupID)
	buf = binary.LittleEndian.AppendUint32(buf, tx.ConsensusBranchID)
	buf = binary.LittleEndian.AppendUint32(buf, tx.LockTime)
	buf = binary.LittleEndian.AppendUint32(buf, tx.ExpiryHeight)

	buf = appendCompactSize(buf, uint64(len(tx.Inputs)))
	for i, in := range tx.Inputs {
		buf = append(buf, in.PrevTxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevVout)
		buf = appendCompactSize(buf, uint64(len(scriptSigs[i])))
		buf = append(buf, scriptSigs[i]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.Sequence)
	}

	buf = appendCompactSize(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Amount)
		buf = appendCompactSize(buf, uint64(len(out.Script)))
		buf = append(buf, out.Script...)
	}

	// Empty Sapling spends and outputs, empty Orchard actions.
	buf = appendCompactSize(buf, 0)
	buf = appendCompactSize(buf, 0)
	buf = appendCompactSize(buf, 0)
	return buf
}

// blake2b256 hashes data with a 16-byte BLAKE2b personalization.
func blake2b256(personalization, data []byte) [32]byte {
	var persona [16]byte
	copy(persona[:], personalization)
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: persona[:]})
	if err != nil {
		panic(err) // config is static and valid
	}
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// parseTxid converts a display-order hex txid to internal byte order.
func parseTxid(txidHex string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(txidHex)
	if err != nil {
		return out, fmt.Errorf("%w: invalid txid hex: %v", ErrTransactionBuild, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("%w: txid must be 32 bytes, got %d", ErrTransactionBuild, len(raw))
	}
	for i, b := range raw {
		out[31-i] = b
	}
	return out, nil
}

func appendCompactSize(buf []byte, val uint64) []byte {
	switch {
	case val < 0xFD:
		return append(buf, byte(val))
	case val <= 0xFFFF:
		buf = append(buf, 0xFD)
		return binary.LittleEndian.AppendUint16(buf, uint16(val))
	case val <= 0xFFFFFFFF:
		buf = append(buf, 0xFE)
		return binary.LittleEndian.AppendUint32(buf, uint32(val))
	default:
		buf = append(buf, 0xFF)
		return binary.LittleEndian.AppendUint64(buf, val)
	}
}

func parsePrivateKey(privateKey []byte) (*btcec.PrivateKey, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidPrivateKey, len(privateKey))
	}
	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	scalar.Zero()
	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	return priv, nil
}
