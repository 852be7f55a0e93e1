// Package fp implements constant-time fixed-width multiprecision arithmetic
// and Montgomery-form modular arithmetic over a parameterized prime field.
//
// A Field is an immutable context holding the modulus and its precomputed
// reduction constants; all modular operations are methods on the Field
// operating on digit slices, so every supported prime width runs through
// the same code. Elements handed to the modular methods are expected in
// Montgomery representation and strictly below the modulus; the methods
// preserve both invariants.
package fp

import (
	"fmt"
	"math/big"
	"math/bits"
	"sync"
)

// Field is the modular-arithmetic context of a prime field GF(p).
// It is safe for concurrent use: all fields are read-only after
// construction and scratch space is drawn from an internal pool.
type Field struct {
	nwords int
	bitLen int
	size   int // canonical encoding length in bytes

	p      Element // the modulus
	one    Element // R mod p, the Montgomery image of 1
	r2     Element // R^2 mod p, used to enter Montgomery form
	zero   Element
	mp0inv uint64 // -p^-1 mod 2^64

	// fixed public exponents driving Inv, Sqrt and IsSquare
	pMinus2      Element // p - 2
	pPlus1Over4  Element // (p + 1) / 4
	pMinus1Over2 Element // (p - 1) / 2

	pool sync.Pool // double-width scratch
}

// NewField builds the arithmetic context for the prime given as a
// big-endian hexadecimal string. The prime must be odd and must leave at
// least one spare bit in its top digit (so that sums of two reduced
// elements never overflow the digit vector).
func NewField(pHex string) (*Field, error) {
	p, ok := new(big.Int).SetString(pHex, 16)
	if !ok {
		return nil, fmt.Errorf("cannot parse modulus %q", pHex)
	}
	if p.Bit(0) != 1 {
		return nil, fmt.Errorf("modulus must be odd")
	}
	bitLen := p.BitLen()
	nwords := (bitLen + 63) / 64
	if bitLen == 64*nwords {
		return nil, fmt.Errorf("modulus of %d bits leaves no headroom in %d digits", bitLen, nwords)
	}

	f := &Field{
		nwords: nwords,
		bitLen: bitLen,
		size:   (bitLen + 7) / 8,
		p:      elementFromBig(p, nwords),
	}
	f.pool.New = func() interface{} {
		x := make(ElementX2, 2*nwords)
		return &x
	}

	f.zero = make(Element, nwords)

	r := new(big.Int).Lsh(big.NewInt(1), uint(64*nwords))
	f.one = elementFromBig(new(big.Int).Mod(r, p), nwords)
	f.r2 = elementFromBig(new(big.Int).Mod(new(big.Int).Mul(r, r), p), nwords)
	f.mp0inv = mRedParams(f.p[0])

	// The exponents are derived with the multiprecision primitives so the
	// same fixed-width representation drives the power ladders.
	two := make(Element, nwords)
	two[0] = 2
	f.pMinus2 = make(Element, nwords)
	Sub(f.pMinus2, f.p, two)

	f.pMinus1Over2 = make(Element, nwords)
	two[0] = 1
	Sub(f.pMinus1Over2, f.p, two) // p - 1
	ShiftRight1(f.pMinus1Over2, f.pMinus1Over2)

	f.pPlus1Over4 = make(Element, nwords)
	Add(f.pPlus1Over4, f.p, two) // p + 1; cannot carry out, p has headroom
	ShiftRight1(f.pPlus1Over4, f.pPlus1Over4)
	ShiftRight1(f.pPlus1Over4, f.pPlus1Over4)

	return f, nil
}

// mRedParams computes -p^-1 mod 2^64 by Newton iteration on the lowest
// modulus digit.
func mRedParams(p0 uint64) uint64 {
	inv := uint64(1)
	x := p0
	for i := 0; i < 63; i++ {
		inv *= x
		x *= x
	}
	return -inv
}

func elementFromBig(x *big.Int, nwords int) Element {
	e := make(Element, nwords)
	words := x.Bits()
	for i := range words {
		e[i] = uint64(words[i])
	}
	return e
}

// NWords returns the number of 64-bit digits of a field element.
func (f *Field) NWords() int { return f.nwords }

// BitLen returns the bit length of the modulus.
func (f *Field) BitLen() int { return f.bitLen }

// Size returns the length in bytes of the canonical encoding of a field
// element.
func (f *Field) Size() int { return f.size }

// Modulus returns a copy of the modulus digits.
func (f *Field) Modulus() Element {
	m := make(Element, f.nwords)
	copy(m, f.p)
	return m
}

// NewElement allocates a zero element of the field.
func (f *Field) NewElement() Element { return make(Element, f.nwords) }

func (f *Field) getX2() *ElementX2 { return f.pool.Get().(*ElementX2) }
func (f *Field) putX2(x *ElementX2) {
	for i := range *x {
		(*x)[i] = 0
	}
	f.pool.Put(x)
}

// reduceOnce sets c = a - p if a >= p and c = a otherwise, in constant
// time. a must be below 2p.
func (f *Field) reduceOnce(c, a Element) {
	borrow := Sub(c, a, f.p)
	mask := -borrow
	var carry uint64
	for i := range c {
		c[i], carry = bits.Add64(c[i], f.p[i]&mask, carry)
	}
}

// AddMod sets c = a + b mod p. Inputs must be reduced; the output is.
func (f *Field) AddMod(c, a, b Element) {
	Add(c, a, b) // cannot carry out of the digit vector, p has headroom
	f.reduceOnce(c, c)
}

// SubMod sets c = a - b mod p.
func (f *Field) SubMod(c, a, b Element) {
	borrow := Sub(c, a, b)
	mask := -borrow
	var carry uint64
	for i := range c {
		c[i], carry = bits.Add64(c[i], f.p[i]&mask, carry)
	}
}

// Neg sets c = -a mod p.
func (f *Field) Neg(c, a Element) {
	f.SubMod(c, f.zero, a)
}

// MontRed performs Montgomery reduction of the double-width value t,
// setting c = t * R^-1 mod p. t must be below p*R; it is destroyed.
func (f *Field) MontRed(c Element, t ElementX2) {
	n := f.nwords
	for i := 0; i < n; i++ {
		m := t[i] * f.mp0inv
		var carry uint64
		for j := 0; j < n; j++ {
			hi, lo := bits.Mul64(m, f.p[j])
			var cy uint64
			lo, cy = bits.Add64(lo, carry, 0)
			hi += cy
			t[i+j], cy = bits.Add64(t[i+j], lo, 0)
			carry = hi + cy
		}
		// propagate the column carry to the top without branching on it
		for k := i + n; k < 2*n; k++ {
			t[k], carry = bits.Add64(t[k], carry, 0)
		}
	}
	f.reduceOnce(c, Element(t[n:]))
}

// MulMod sets c = a * b * R^-1 mod p, the product of two Montgomery-form
// elements in Montgomery form. Any of a, b, c may alias.
func (f *Field) MulMod(c, a, b Element) {
	t := f.getX2()
	Mul(*t, a, b)
	f.MontRed(c, *t)
	f.putX2(t)
}

// SquareMod sets c = a^2 * R^-1 mod p.
func (f *Field) SquareMod(c, a Element) {
	f.MulMod(c, a, a)
}

// MForm converts a standard-representation element into Montgomery form,
// c = a * R mod p.
func (f *Field) MForm(c, a Element) {
	f.MulMod(c, a, f.r2)
}

// IMForm converts a Montgomery-form element back to standard
// representation, c = a * R^-1 mod p.
func (f *Field) IMForm(c, a Element) {
	t := f.getX2()
	copy(*t, a)
	f.MontRed(c, *t)
	f.putX2(t)
}

// One sets c to the Montgomery image of 1.
func (f *Field) One(c Element) { copy(c, f.one) }

// Zero sets c to 0.
func (f *Field) Zero(c Element) {
	for i := range c {
		c[i] = 0
	}
}

// SetUint64 sets c to the Montgomery image of x.
func (f *Field) SetUint64(c Element, x uint64) {
	f.Zero(c)
	c[0] = x
	f.MForm(c, c)
}

// pow sets c = a^e mod p for a fixed public exponent, by a left-to-right
// square-and-multiply ladder over the full digit vector of e. The branch
// on each exponent bit is public data: the exponents used here are all
// derived from the modulus.
func (f *Field) pow(c, a Element, e Element) {
	base := f.NewElement()
	copy(base, a)
	f.One(c)
	for i := f.nwords - 1; i >= 0; i-- {
		for j := 63; j >= 0; j-- {
			f.SquareMod(c, c)
			if e[i]>>uint(j)&1 == 1 {
				f.MulMod(c, c, base)
			}
		}
	}
}

// Inv sets c = a^-1 mod p via Fermat exponentiation by p-2. The exponent
// is public, so the operation sequence does not depend on a. The inverse
// of 0 is 0.
func (f *Field) Inv(c, a Element) {
	f.pow(c, a, f.pMinus2)
}

// Sqrt sets c to a square root of a, valid when a is a quadratic residue
// (the field primes are 3 mod 4, so the root is a^((p+1)/4)). For a
// non-residue the result is undefined.
func (f *Field) Sqrt(c, a Element) {
	f.pow(c, a, f.pPlus1Over4)
}

// IsSquare reports whether a is a quadratic residue, by Euler's criterion.
// Used only on public parameter-derivation data.
func (f *Field) IsSquare(a Element) bool {
	t := f.NewElement()
	f.pow(t, a, f.pMinus1Over2)
	return f.Equal(t, f.one) || IsZero(t) == 1
}

// Equal reports whether a == b. Variable time; test and boundary use only.
func (f *Field) Equal(a, b Element) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ToBytes writes the canonical little-endian encoding of the
// Montgomery-form element a into out, which must be exactly Size() bytes.
func (f *Field) ToBytes(out []byte, a Element) error {
	if len(out) != f.size {
		return fmt.Errorf("invalid encoding length %d, expected %d", len(out), f.size)
	}
	std := f.NewElement()
	f.IMForm(std, a)
	for i := 0; i < f.size; i++ {
		out[i] = byte(std[i/8] >> (8 * uint(i%8)))
	}
	return nil
}

// FromBytes reads a canonical little-endian encoding of Size() bytes and
// sets a to its Montgomery form. The encoded value must be below p; values
// at or above p are reduced silently (a boundary concern, not checked
// here, since a reduced encoding is part of the caller contract).
func (f *Field) FromBytes(a Element, in []byte) error {
	if len(in) != f.size {
		return fmt.Errorf("invalid encoding length %d, expected %d", len(in), f.size)
	}
	f.Zero(a)
	for i := 0; i < f.size; i++ {
		a[i/8] |= uint64(in[i]) << (8 * uint(i%8))
	}
	f.MForm(a, a)
	return nil
}
