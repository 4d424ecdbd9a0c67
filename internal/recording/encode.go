package recording

import (
	"encoding/binary"
	"math"
)

// encodeFloat32 writes samples as little-endian IEEE floats into dst and
// returns the number of bytes used. Samples that do not fit are dropped.
func encodeFloat32(dst []byte, samples []float32) int {
	n := len(samples)
	if limit := len(dst) / 4; n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(samples[i]))
	}
	return n * 4
}

// encodeInt16 writes samples as little-endian 16-bit PCM into dst.
func encodeInt16(dst []byte, samples []int16) int {
	n := len(samples)
	if limit := len(dst) / 2; n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(samples[i]))
	}
	return n * 2
}
