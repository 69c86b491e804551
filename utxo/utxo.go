// Package utxo implements the coin selection shared by the UTXO chains.
//
// Selection is greedy largest-first against a linear fee model: inputs are
// consumed in descending value order and the fee estimate is recomputed with
// a recipient-plus-change output pair after each one. The caller's builder
// decides afterwards whether the change output actually materializes.
package utxo

import (
	"fmt"
	"sort"
)

// UTXO is a single unspent output. TxID is the display-order (big-endian)
// hex transaction id.
type UTXO struct {
	TxID         string
	Vout         uint32
	Amount       uint64
	ScriptPubKey []byte
}

// FeeModel is a linear virtual-size model: vbytes = TxOverhead +
// n_in*InputSize + n_out*OutputSize. Each chain package exports its own.
type FeeModel struct {
	TxOverhead uint64
	InputSize  uint64
	OutputSize uint64
}

// Estimate returns the fee for a transaction shape at the given rate
// (units per vbyte).
func (m FeeModel) Estimate(numInputs, numOutputs int, feeRate uint64) uint64 {
	vbytes := m.TxOverhead + uint64(numInputs)*m.InputSize + uint64(numOutputs)*m.OutputSize
	return vbytes * feeRate
}

// Selection is the outcome of coin selection.
type Selection struct {
	UTXOs []UTXO
	Total uint64
}

// InsufficientFundsError reports that the available outputs cannot cover the
// target amount plus fees.
type InsufficientFundsError struct {
	Needed    uint64
	Available uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %d, available %d", e.Needed, e.Available)
}

// Select picks outputs to cover target plus the modeled fee, largest first.
// Ties keep their input order. The input slice is not modified.
//
// The loop sizes the fee for two outputs so a change output is always
// affordable; the terminal check relaxes to one output, since a selection
// that only covers a changeless transaction is still spendable with the
// remainder folded into the fee.
func Select(utxos []UTXO, target, feeRate uint64, model FeeModel) (Selection, error) {
	sorted := make([]UTXO, len(utxos))
	copy(sorted, utxos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})

	var sel Selection
	for _, u := range sorted {
		sel.UTXOs = append(sel.UTXOs, u)
		sel.Total += u.Amount

		fee := model.Estimate(len(sel.UTXOs), 2, feeRate)
		if sel.Total >= target+fee {
			return sel, nil
		}
	}

	fee := model.Estimate(len(sel.UTXOs), 1, feeRate)
	if len(sel.UTXOs) > 0 && sel.Total >= target+fee {
		return sel, nil
	}
	return Selection{}, &InsufficientFundsError{Needed: target + fee, Available: sel.Total}
}
