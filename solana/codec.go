package solana

import "fmt"

// EncodeCompactU16 encodes a length in the compact-u16 format: base-128
// little-endian varint, 1 byte for 0..0x7f, 2 bytes up to 0x3fff, 3 bytes
// beyond.
func EncodeCompactU16(value uint16) []byte {
	v := uint32(value)
	out := make([]byte, 0, 3)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v > 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// DecodeCompactU16 reads a compact-u16 from the front of data and returns
// the value and the number of bytes consumed. At most 3 bytes are read.
func DecodeCompactU16(data []byte) (uint16, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: empty compact-u16", ErrSerialization)
	}

	var value uint32
	var shift uint
	consumed := 0
	for {
		if consumed >= len(data) {
			return 0, 0, fmt.Errorf("%w: truncated compact-u16", ErrSerialization)
		}
		b := data[consumed]
		consumed++

		value |= uint32(b&0x7f) << shift
		shift += 7

		if b&0x80 == 0 {
			break
		}
		if consumed >= 3 {
			return 0, 0, fmt.Errorf("%w: compact-u16 continuation past 3 bytes", ErrSerialization)
		}
	}

	if value > 0xffff {
		return 0, 0, fmt.Errorf("%w: compact-u16 overflow", ErrSerialization)
	}
	return uint16(value), consumed, nil
}
