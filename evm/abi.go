package evm

import "github.com/ethereum/go-ethereum/common"

// Param is a single ABI argument encoded as one 32-byte word. Only the
// static shapes the ERC-20 surface needs are supported.
type Param [32]byte

// AddressParam encodes an address left-padded to 32 bytes.
func AddressParam(addr common.Address) Param {
	var word Param
	copy(word[12:], addr[:])
	return word
}

// Uint256Param passes a big-endian 32-byte integer through unchanged.
func Uint256Param(value [32]byte) Param {
	return Param(value)
}

// BytesParam encodes data right-padded into a single word. Anything past 32
// bytes is truncated; callers own fitting their data into one word.
func BytesParam(data []byte) Param {
	var word Param
	copy(word[:], data)
	return word
}

// EncodeFunctionCall assembles calldata: the 4-byte selector followed by one
// 32-byte word per parameter.
func EncodeFunctionCall(selector [4]byte, params ...Param) []byte {
	data := make([]byte, 0, 4+len(params)*32)
	data = append(data, selector[:]...)
	for _, p := range params {
		data = append(data, p[:]...)
	}
	return data
}
