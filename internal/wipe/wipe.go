// Package wipe zeroes buffers that held secret material.
package wipe

// Bytes overwrites every byte of each buffer with zero. Callers use it to
// scrub seeds and private keys once they are no longer needed.
func Bytes(bufs ...[]byte) {
	for _, b := range bufs {
		for i := range b {
			b[i] = 0
		}
	}
}
