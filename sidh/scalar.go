package sidh

import (
	"fmt"
	"io"
)

// B-side rejection sampling accepts with probability above 1/2 per
// attempt, so 102 attempts fail with probability below 2^-102.
const maxSampleAttempts = 102

// sampleScalarA fills dst with a uniform even scalar in [0, 2^e2).
// dst must be scalarSizeA bytes, little-endian.
func (par *Parameters) sampleScalarA(rand io.Reader, dst []byte) error {
	if _, err := io.ReadFull(rand, dst); err != nil {
		return fmt.Errorf("sidh: sampling scalar: %w", err)
	}
	dst[len(dst)-1] &= par.maskA
	dst[0] &= 0xfe
	// the scalar is 0 with probability 2^(1-e2), not worth rejecting
	return nil
}

// sampleScalarB fills dst with a scalar 3m for uniform m in
// [0, 3^(e3-1)), by rejection sampling. dst must be scalarSizeB bytes,
// little-endian. Only the number of attempts leaks, and the accepted
// value is independent of it.
func (par *Parameters) sampleScalarB(rand io.Reader, dst []byte) error {
	for i := range dst {
		dst[i] = 0
	}
	sample := dst[:par.sampleSizeB]
	for i := 0; i < maxSampleAttempts; i++ {
		if _, err := io.ReadFull(rand, sample); err != nil {
			return fmt.Errorf("sidh: sampling scalar: %w", err)
		}
		sample[len(sample)-1] &= par.maskB
		if ctBytesLess(sample, par.boundB) == 1 {
			mulByThree(dst)
			return nil
		}
	}
	return fmt.Errorf("sidh: rejection sampling failed %d attempts", maxSampleAttempts)
}

// ctBytesLess returns 1 if a < b as little-endian integers and 0
// otherwise, in constant time. The slices must have equal length.
func ctBytesLess(a, b []byte) uint64 {
	borrow := uint64(0)
	for i := range a {
		borrow = (uint64(a[i]) - uint64(b[i]) - borrow) >> 63
	}
	return borrow
}

// mulByThree multiplies the little-endian integer s by 3 in place,
// in constant time. The result must fit in len(s) bytes.
func mulByThree(s []byte) {
	carry := uint64(0)
	for i := range s {
		t := 3*uint64(s[i]) + carry
		s[i] = byte(t)
		carry = t >> 8
	}
}
