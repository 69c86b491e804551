package evm

import "fmt"

// ERC-20 function selectors: the first 4 bytes of the Keccak-256 hash of
// the canonical signature.
var (
	TransferSelector  = [4]byte{0xa9, 0x05, 0x9c, 0xbb} // transfer(address,uint256)
	BalanceOfSelector = [4]byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)
	ApproveSelector   = [4]byte{0x09, 0x5e, 0xa7, 0xb3} // approve(address,uint256)
)

// EncodeTransfer builds calldata for transfer(address,uint256). amount is a
// big-endian 32-byte uint256.
func EncodeTransfer(to string, amount [32]byte) ([]byte, error) {
	addr, err := parseAddress(to)
	if err != nil {
		return nil, err
	}
	return EncodeFunctionCall(TransferSelector, AddressParam(addr), Uint256Param(amount)), nil
}

// EncodeBalanceOf builds calldata for balanceOf(address).
func EncodeBalanceOf(owner string) ([]byte, error) {
	addr, err := parseAddress(owner)
	if err != nil {
		return nil, err
	}
	return EncodeFunctionCall(BalanceOfSelector, AddressParam(addr)), nil
}

// EncodeApprove builds calldata for approve(address,uint256).
func EncodeApprove(spender string, amount [32]byte) ([]byte, error) {
	addr, err := parseAddress(spender)
	if err != nil {
		return nil, err
	}
	return EncodeFunctionCall(ApproveSelector, AddressParam(addr), Uint256Param(amount)), nil
}

// DecodeUint256 reads a single uint256 return value, e.g. from balanceOf.
// Extra trailing bytes are ignored.
func DecodeUint256(data []byte) ([32]byte, error) {
	var out [32]byte
	if len(data) < 32 {
		return out, fmt.Errorf("%w: want at least 32 bytes for uint256, got %d", ErrSerialization, len(data))
	}
	copy(out[:], data[:32])
	return out, nil
}
