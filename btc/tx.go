package btc

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/peakwallet/walletcore/utxo"
)

// DustThreshold is the minimum change value worth creating an output for.
// Anything at or below it is folded into the fee.
const DustThreshold = 546

// FeeModel is the P2WPKH virtual-size model: 11 vbytes of fixed overhead
// (version, locktime, marker/flag, counts), ~68 vbytes per input (41
// non-witness + ~27/4 witness), 31 vbytes per output.
var FeeModel = utxo.FeeModel{TxOverhead: 11, InputSize: 68, OutputSize: 31}

// EstimateFee returns the fee in satoshis for a P2WPKH transaction shape at
// feeRate sat/vbyte.
func EstimateFee(numInputs, numOutputs int, feeRate uint64) uint64 {
	return FeeModel.Estimate(numInputs, numOutputs, feeRate)
}

// rbfSequence opts every input into replace-by-fee without enabling a
// relative locktime (BIP-125).
const rbfSequence = wire.MaxTxInSequenceNum - 2

// UnsignedTx is a built transaction with empty witnesses, paired with the
// outputs it spends so sighashes can be computed.
type UnsignedTx struct {
	Tx       *wire.MsgTx
	PrevOuts []*wire.TxOut
}

// BuildP2WPKHTransaction selects coins and assembles an unsigned version-2
// transaction paying amount satoshis to recipient. Change above the dust
// threshold goes to changeAddr; dust change is left to the fee.
func BuildP2WPKHTransaction(utxos []utxo.UTXO, recipient string, amount uint64, changeAddr string, feeRate uint64, network Network) (*UnsignedTx, error) {
	recipientAddr, err := decodeForNet(recipient, network)
	if err != nil {
		return nil, err
	}
	changeAddress, err := decodeForNet(changeAddr, network)
	if err != nil {
		return nil, err
	}

	sel, err := utxo.Select(utxos, amount, feeRate, FeeModel)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(2)
	prevOuts := make([]*wire.TxOut, 0, len(sel.UTXOs))
	for _, u := range sel.UTXOs {
		txid, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad txid %q: %v", ErrTransactionBuild, u.TxID, err)
		}
		in := wire.NewTxIn(wire.NewOutPoint(txid, u.Vout), nil, nil)
		in.Sequence = rbfSequence
		tx.AddTxIn(in)
		prevOuts = append(prevOuts, wire.NewTxOut(int64(u.Amount), u.ScriptPubKey))
	}

	recipientScript, err := txscript.PayToAddrScript(recipientAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient script: %v", ErrTransactionBuild, err)
	}
	tx.AddTxOut(wire.NewTxOut(int64(amount), recipientScript))

	feeTwoOutputs := EstimateFee(len(sel.UTXOs), 2, feeRate)
	if change := sel.Total - amount; change > feeTwoOutputs && change-feeTwoOutputs > DustThreshold {
		changeScript, err := txscript.PayToAddrScript(changeAddress)
		if err != nil {
			return nil, fmt.Errorf("%w: change script: %v", ErrTransactionBuild, err)
		}
		tx.AddTxOut(wire.NewTxOut(int64(change-feeTwoOutputs), changeScript))
	}

	return &UnsignedTx{Tx: tx, PrevOuts: prevOuts}, nil
}

// SignTransaction signs every input of the built transaction with the same
// 32-byte private key using BIP143 sighashes and returns the serialized
// segwit transaction. The unsigned transaction is not modified.
func SignTransaction(unsigned *UnsignedTx, privateKey []byte) ([]byte, error) {
	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	defer priv.Zero()

	tx := unsigned.Tx.Copy()
	if len(tx.TxIn) != len(unsigned.PrevOuts) {
		return nil, fmt.Errorf("%w: %d inputs but %d prevouts", ErrSigning, len(tx.TxIn), len(unsigned.PrevOuts))
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range tx.TxIn {
		fetcher.AddPrevOut(in.PreviousOutPoint, unsigned.PrevOuts[i])
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i := range tx.TxIn {
		prevOut := unsigned.PrevOuts[i]
		witness, err := txscript.WitnessSignature(
			tx, sigHashes, i, prevOut.Value, prevOut.PkScript,
			txscript.SigHashAll, priv, true,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrSigning, i, err)
		}
		tx.TxIn[i].Witness = witness
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("%w: serialize: %v", ErrSigning, err)
	}
	return buf.Bytes(), nil
}

func parsePrivateKey(privateKey []byte) (*btcec.PrivateKey, error) {
	if len(privateKey) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidPrivateKey, len(privateKey))
	}
	var scalar btcec.ModNScalar
	overflow := scalar.SetByteSlice(privateKey)
	if overflow || scalar.IsZero() {
		scalar.Zero()
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	scalar.Zero()
	priv, _ := btcec.PrivKeyFromBytes(privateKey)
	return priv, nil
}
