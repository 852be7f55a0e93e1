package fp

import "math/bits"

// Element is a multiprecision unsigned integer stored as little-endian
// 64-bit digits. Whether an Element holds a value in standard or Montgomery
// representation is a property of context, tracked by the caller; the
// multiprecision primitives below are representation-agnostic.
type Element []uint64

// ElementX2 holds a double-width product of two Elements.
type ElementX2 []uint64

// The primitives in this file are constant time: for operands of a given
// length they execute a fixed sequence of digit operations with no
// value-dependent branches or memory accesses. Carry and borrow propagation
// is arithmetic, secret-dependent selection goes through Cmov/CSwap.

// Add sets c = a + b and returns the outgoing carry. All slices must have
// the same length.
func Add(c, a, b Element) (carry uint64) {
	for i := range a {
		c[i], carry = bits.Add64(a[i], b[i], carry)
	}
	return
}

// Sub sets c = a - b and returns the outgoing borrow (1 if a < b).
func Sub(c, a, b Element) (borrow uint64) {
	for i := range a {
		c[i], borrow = bits.Sub64(a[i], b[i], borrow)
	}
	return
}

// ShiftRight1 sets c = a >> 1, dropping the low bit.
func ShiftRight1(c, a Element) {
	n := len(a)
	for i := 0; i < n-1; i++ {
		c[i] = a[i]>>1 | a[i+1]<<63
	}
	c[n-1] = a[n-1] >> 1
}

// ShiftLeft1 sets c = a << 1 and returns the bit shifted out.
func ShiftLeft1(c, a Element) (out uint64) {
	n := len(a)
	out = a[n-1] >> 63
	for i := n - 1; i > 0; i-- {
		c[i] = a[i]<<1 | a[i-1]>>63
	}
	c[0] = a[0] << 1
	return
}

// ShiftLeft sets c = a << k for 0 <= k < 64. Bits shifted beyond the top
// digit are dropped.
func ShiftLeft(c, a Element, k uint) {
	n := len(a)
	inv := (64 - k) & 63
	// For k = 0 the complementary shift a[i-1] >> inv degenerates to
	// a[i-1] >> 0 and must be masked out.
	zmask := -isNonZero(uint64(k))
	for i := n - 1; i > 0; i-- {
		c[i] = a[i]<<k | (a[i-1]>>inv)&zmask
	}
	c[0] = a[0] << k
}

// Mul sets c = a * b using Comba (column-wise schoolbook) multiplication.
// c must have length 2*len(a).
func Mul(c ElementX2, a, b Element) {
	n := len(a)
	var t0, t1, t2 uint64 // three-digit column accumulator, t0 lowest
	for i := 0; i < 2*n-1; i++ {
		lo := 0
		if i >= n {
			lo = i - n + 1
		}
		hi := i
		if hi > n-1 {
			hi = n - 1
		}
		for j := lo; j <= hi; j++ {
			phi, plo := bits.Mul64(a[j], b[i-j])
			var cy uint64
			t0, cy = bits.Add64(t0, plo, 0)
			t1, cy = bits.Add64(t1, phi, cy)
			t2 += cy
		}
		c[i] = t0
		t0, t1, t2 = t1, t2, 0
	}
	c[2*n-1] = t0
}

// Cmp compares a and b in constant time, returning -1, 0 or 1.
func Cmp(a, b Element) int {
	var gt, lt uint64
	for i := len(a) - 1; i >= 0; i-- {
		// the highest differing digit decides; once gt or lt is set,
		// lower digits must not override it
		decided := gt | lt
		gt |= ltMask(b[i], a[i]) &^ decided
		lt |= ltMask(a[i], b[i]) &^ decided
	}
	return int(gt) - int(lt)
}

// ltMask returns 1 if x < y, else 0, in constant time.
func ltMask(x, y uint64) uint64 {
	_, borrow := bits.Sub64(x, y, 0)
	return borrow
}

// isNonZero returns 1 if x != 0, else 0, in constant time.
func isNonZero(x uint64) uint64 {
	return (x | -x) >> 63
}

// IsZero returns 1 if a == 0, else 0, in constant time.
func IsZero(a Element) uint64 {
	var acc uint64
	for i := range a {
		acc |= a[i]
	}
	return 1 - isNonZero(acc)
}

// Cmov copies src into dst if bit = 1 and leaves dst unchanged if bit = 0,
// in constant time. bit must be 0 or 1.
func Cmov(dst, src Element, bit uint64) {
	mask := -bit
	for i := range dst {
		dst[i] ^= mask & (dst[i] ^ src[i])
	}
}

// CSwap exchanges a and b if bit = 1 and leaves them unchanged if bit = 0,
// in constant time. bit must be 0 or 1.
func CSwap(a, b Element, bit uint64) {
	mask := -bit
	for i := range a {
		t := mask & (a[i] ^ b[i])
		a[i] ^= t
		b[i] ^= t
	}
}
