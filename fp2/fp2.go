// Package fp2 implements arithmetic of the quadratic extension field
// GF(p^2) = GF(p)(i), i^2 = -1, on top of the Montgomery-form prime-field
// arithmetic of package fp.
//
// An element a + b*i is stored as the digit pair (A, B), both components
// in Montgomery form. All operations are methods on a Field context and
// are constant time except where explicitly documented otherwise.
package fp2

import (
	"fmt"

	"github.com/quantumsafe/isogeny/fp"
)

// Element is an element a + b*i of GF(p^2), both components in Montgomery
// form.
type Element struct {
	A fp.Element
	B fp.Element
}

// Field is the arithmetic context of GF(p^2). It is safe for concurrent
// use.
type Field struct {
	Fp *fp.Field
}

// NewField builds the GF(p^2) context over the given prime field. The
// primes in use satisfy p = 3 mod 4, so -1 is a non-residue and x^2 + 1
// is irreducible.
func NewField(base *fp.Field) *Field {
	return &Field{Fp: base}
}

// Size returns the byte length of the canonical encoding of an element.
func (e *Field) Size() int { return 2 * e.Fp.Size() }

// NewElement allocates a zero element.
func (e *Field) NewElement() Element {
	return Element{A: e.Fp.NewElement(), B: e.Fp.NewElement()}
}

// Set copies x into dst.
func (e *Field) Set(dst *Element, x *Element) {
	copy(dst.A, x.A)
	copy(dst.B, x.B)
}

// Zero sets dst = 0.
func (e *Field) Zero(dst *Element) {
	e.Fp.Zero(dst.A)
	e.Fp.Zero(dst.B)
}

// One sets dst = 1.
func (e *Field) One(dst *Element) {
	e.Fp.One(dst.A)
	e.Fp.Zero(dst.B)
}

// SetUint64 sets dst = x (a real constant).
func (e *Field) SetUint64(dst *Element, x uint64) {
	e.Fp.SetUint64(dst.A, x)
	e.Fp.Zero(dst.B)
}

// Add sets dst = x + y. Any arguments may alias.
func (e *Field) Add(dst, x, y *Element) {
	e.Fp.AddMod(dst.A, x.A, y.A)
	e.Fp.AddMod(dst.B, x.B, y.B)
}

// Sub sets dst = x - y.
func (e *Field) Sub(dst, x, y *Element) {
	e.Fp.SubMod(dst.A, x.A, y.A)
	e.Fp.SubMod(dst.B, x.B, y.B)
}

// Neg sets dst = -x.
func (e *Field) Neg(dst, x *Element) {
	e.Fp.Neg(dst.A, x.A)
	e.Fp.Neg(dst.B, x.B)
}

// Mul sets dst = x * y using the 3-multiplication Karatsuba combination
//
//	(a + b*i)(c + d*i) = (ac - bd) + ((b-a)(c-d) + ac + bd)*i.
//
// Any arguments may alias.
func (e *Field) Mul(dst, x, y *Element) {
	f := e.Fp
	ac := f.NewElement()
	bd := f.NewElement()
	t0 := f.NewElement()
	t1 := f.NewElement()

	f.MulMod(ac, x.A, y.A)
	f.MulMod(bd, x.B, y.B)
	f.SubMod(t0, x.B, x.A) // b - a
	f.SubMod(t1, y.A, y.B) // c - d
	f.MulMod(t0, t0, t1)   // (b-a)(c-d) = bc + ad - ac - bd

	f.AddMod(t0, t0, ac)
	f.AddMod(dst.B, t0, bd) // ad + bc
	f.SubMod(dst.A, ac, bd) // ac - bd
}

// Square sets dst = x^2 using
//
//	(a + b*i)^2 = (a+b)(a-b) + 2ab*i,
//
// two prime-field multiplications.
func (e *Field) Square(dst, x *Element) {
	f := e.Fp
	apb := f.NewElement()
	amb := f.NewElement()
	a2 := f.NewElement()

	f.AddMod(apb, x.A, x.B)
	f.SubMod(amb, x.A, x.B)
	f.AddMod(a2, x.A, x.A)
	f.MulMod(dst.A, apb, amb)
	f.MulMod(dst.B, a2, x.B)
}

// Inv sets dst = 1/x via the norm map:
//
//	1/(a + b*i) = (a - b*i) / (a^2 + b^2),
//
// costing one prime-field inversion. The inversion itself is a fixed
// public-exponent ladder; prefer Inv3Way when several inverses are needed
// at once.
func (e *Field) Inv(dst, x *Element) {
	f := e.Fp
	norm := f.NewElement()
	t := f.NewElement()

	f.SquareMod(norm, x.A)
	f.SquareMod(t, x.B)
	f.AddMod(norm, norm, t) // a^2 + b^2
	f.Inv(norm, norm)

	f.MulMod(dst.A, x.A, norm)
	f.Neg(t, x.B)
	f.MulMod(dst.B, t, norm)
}

// Inv3Way sets (x1, x2, x3) = (1/x1, 1/x2, 1/x3) with a single field
// inversion using Montgomery's batching trick. The three elements must
// be distinct slices and non-zero.
func (e *Field) Inv3Way(x1, x2, x3 *Element) {
	x1x2 := e.NewElement()
	t := e.NewElement()

	e.Mul(&x1x2, x1, x2)
	e.Mul(&t, &x1x2, x3)
	e.Inv(&t, &t) // 1/(x1*x2*x3)

	out1 := e.NewElement()
	out2 := e.NewElement()
	e.Mul(&out1, &t, x2)
	e.Mul(&out1, &out1, x3) // 1/x1
	e.Mul(&out2, &t, x1)
	e.Mul(&out2, &out2, x3) // 1/x2
	e.Mul(x3, &t, &x1x2)    // 1/x3
	e.Set(x1, &out1)
	e.Set(x2, &out2)
}

// Select sets dst = x if bit = 0 and dst = y if bit = 1, in constant
// time.
func (e *Field) Select(dst, x, y *Element, bit uint64) {
	e.Set(dst, x)
	fp.Cmov(dst.A, y.A, bit)
	fp.Cmov(dst.B, y.B, bit)
}

// Swap exchanges x and y if bit = 1, in constant time.
func (e *Field) Swap(x, y *Element, bit uint64) {
	fp.CSwap(x.A, y.A, bit)
	fp.CSwap(x.B, y.B, bit)
}

// IsZero returns 1 if x = 0, else 0, in constant time.
func (e *Field) IsZero(x *Element) uint64 {
	return fp.IsZero(x.A) & fp.IsZero(x.B)
}

// Equal reports whether x == y. Variable time; test and boundary use
// only.
func (e *Field) Equal(x, y *Element) bool {
	return e.Fp.Equal(x.A, y.A) && e.Fp.Equal(x.B, y.B)
}

// ToBytes writes the canonical encoding of x into out: the little-endian
// encoding of the real component followed by that of the imaginary
// component. out must be exactly Size() bytes.
func (e *Field) ToBytes(out []byte, x *Element) error {
	if len(out) != e.Size() {
		return fmt.Errorf("invalid encoding length %d, expected %d", len(out), e.Size())
	}
	half := e.Fp.Size()
	if err := e.Fp.ToBytes(out[:half], x.A); err != nil {
		return err
	}
	return e.Fp.ToBytes(out[half:], x.B)
}

// FromBytes sets x from its canonical encoding. The input length is
// checked before any field arithmetic runs.
func (e *Field) FromBytes(x *Element, in []byte) error {
	if len(in) != e.Size() {
		return fmt.Errorf("invalid encoding length %d, expected %d", len(in), e.Size())
	}
	half := e.Fp.Size()
	if err := e.Fp.FromBytes(x.A, in[:half]); err != nil {
		return err
	}
	return e.Fp.FromBytes(x.B, in[half:])
}
