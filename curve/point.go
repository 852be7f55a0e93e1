// Package curve implements x-only arithmetic on the Kummer line of
// Montgomery curves over GF(p^2), together with the 3- and 4-isogeny
// formulas used by the isogeny walks. Curves are kept as projective
// coefficient pairs (A : C) and points as projective pairs (X : Z), so
// no inversions occur until a result is normalized.
package curve

import (
	"github.com/quantumsafe/isogeny/fp"
	"github.com/quantumsafe/isogeny/fp2"
)

// Point is a point on the projective line P^1(GF(p^2)), representing a
// point on the Kummer line x(P) of a Montgomery curve.
type Point struct {
	X fp2.Element
	Z fp2.Element
}

// PrimeFieldPoint is a point on P^1(GF(p)), used for ladders inside the
// prime-field subgroup of the base curve y^2 = x^3 + x.
type PrimeFieldPoint struct {
	X fp.Element
	Z fp.Element
}

// Curve holds the projective Montgomery coefficient pair (A : C) of the
// curve By^2 = x^3 + (A/C)x^2 + x. B never appears in x-only formulas.
type Curve struct {
	A fp2.Element
	C fp2.Element
}

// CachedParams caches A + 2C and 4C for repeated doublings and triplings
// on a fixed curve.
type CachedParams struct {
	APlus2C fp2.Element
	C4      fp2.Element
}

// Operator performs x-only curve and isogeny arithmetic over a fixed
// quadratic extension field.
type Operator struct {
	E  *fp2.Field
	Fp *fp.Field

	// (a+2)/4 = 1/2 for the base curve a = 0, used by prime-field ladders.
	baseAPlus2Over4 fp.Element
	c256            fp2.Element
}

// NewOperator instantiates an Operator over the given extension field.
func NewOperator(e *fp2.Field) *Operator {
	op := &Operator{E: e, Fp: e.Fp}
	two := e.Fp.NewElement()
	e.Fp.SetUint64(two, 2)
	op.baseAPlus2Over4 = e.Fp.NewElement()
	e.Fp.Inv(op.baseAPlus2Over4, two)
	op.c256 = e.NewElement()
	e.SetUint64(&op.c256, 256)
	return op
}

func (op *Operator) NewPoint() Point {
	return Point{X: op.E.NewElement(), Z: op.E.NewElement()}
}

func (op *Operator) NewPrimeFieldPoint() PrimeFieldPoint {
	return PrimeFieldPoint{X: op.Fp.NewElement(), Z: op.Fp.NewElement()}
}

func (op *Operator) NewCurve() Curve {
	return Curve{A: op.E.NewElement(), C: op.E.NewElement()}
}

func (op *Operator) NewCachedParams() CachedParams {
	return CachedParams{APlus2C: op.E.NewElement(), C4: op.E.NewElement()}
}

func (op *Operator) SetPoint(dst, src *Point) {
	op.E.Set(&dst.X, &src.X)
	op.E.Set(&dst.Z, &src.Z)
}

func (op *Operator) SetCurve(dst, src *Curve) {
	op.E.Set(&dst.A, &src.A)
	op.E.Set(&dst.C, &src.C)
}

// FromAffine sets dst to the projective point (x : 1).
func (op *Operator) FromAffine(dst *Point, x *fp2.Element) {
	op.E.Set(&dst.X, x)
	op.E.One(&dst.Z)
}

// FromAffinePrimeField lifts an affine prime-field x-coordinate to a
// projective point over the extension field.
func (op *Operator) FromAffinePrimeField(dst *Point, x fp.Element) {
	copy(dst.X.A, x)
	op.Fp.Zero(dst.X.B)
	op.E.One(&dst.Z)
}

// ToAffine normalizes p to its affine x-coordinate X/Z.
func (op *Operator) ToAffine(dst *fp2.Element, p *Point) {
	t := op.E.NewElement()
	op.E.Inv(&t, &p.Z)
	op.E.Mul(dst, &p.X, &t)
}

// PointEqual reports whether p and q represent the same projective
// point. Variable time; test and boundary use only.
func (op *Operator) PointEqual(p, q *Point) bool {
	t0, t1 := op.E.NewElement(), op.E.NewElement()
	op.E.Mul(&t0, &p.X, &q.Z)
	op.E.Mul(&t1, &p.Z, &q.X)
	return op.E.Equal(&t0, &t1)
}

// SwapPoints exchanges p and q when bit == 1, in constant time.
func (op *Operator) SwapPoints(p, q *Point, bit uint64) {
	op.E.Swap(&p.X, &q.X, bit)
	op.E.Swap(&p.Z, &q.Z, bit)
}

func (op *Operator) swapPrimeFieldPoints(p, q *PrimeFieldPoint, bit uint64) {
	fp.CSwap(p.X, q.X, bit)
	fp.CSwap(p.Z, q.Z, bit)
}

// Cache computes the cached pair (A + 2C, 4C) of c.
func (op *Operator) Cache(dst *CachedParams, c *Curve) {
	op.E.Add(&dst.APlus2C, &c.C, &c.C)
	op.E.Add(&dst.C4, &dst.APlus2C, &dst.APlus2C)
	op.E.Add(&dst.APlus2C, &dst.APlus2C, &c.A)
}

// RecoverCurve reconstructs the projective coefficients (A : C) of the
// curve through the three affine points x(P), x(Q), x(Q-P).
func (op *Operator) RecoverCurve(dst *Curve, xP, xQ, xQmP *fp2.Element) {
	e := op.E
	t0, t1 := e.NewElement(), e.NewElement()
	e.One(&t0)
	e.Mul(&t1, xP, xQ)
	e.Sub(&t0, &t0, &t1)
	e.Mul(&t1, xP, xQmP)
	e.Sub(&t0, &t0, &t1)
	e.Mul(&t1, xQ, xQmP)
	e.Sub(&t0, &t0, &t1) // 1 - xP*xQ - xP*xQmP - xQ*xQmP
	e.Square(&dst.A, &t0)
	e.Mul(&t1, &t1, xP)
	e.Add(&t1, &t1, &t1)
	e.Add(&dst.C, &t1, &t1) // 4*xP*xQ*xQmP
	e.Add(&t0, xP, xQ)
	e.Add(&t0, &t0, xQmP)
	e.Mul(&t1, &dst.C, &t0)
	e.Sub(&dst.A, &dst.A, &t1)
}

// JInvariant computes the j-invariant 256(A^2-3C^2)^3 / (C^4(A^2-4C^2))
// of c. The curve must not be singular.
func (op *Operator) JInvariant(dst *fp2.Element, c *Curve) {
	e := op.E
	v0, v1, v2, v3 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Square(&v0, &c.C)      // C^2
	e.Square(&v1, &c.A)      // A^2
	e.Add(&v2, &v0, &v0)     // 2C^2
	e.Add(&v3, &v2, &v0)     // 3C^2
	e.Add(&v2, &v2, &v2)     // 4C^2
	e.Sub(&v2, &v1, &v2)     // A^2 - 4C^2
	e.Sub(&v1, &v1, &v3)     // A^2 - 3C^2
	e.Square(&v3, &v1)
	e.Mul(&v3, &v3, &v1)     // (A^2 - 3C^2)^3
	e.Square(&v0, &v0)       // C^4
	e.Mul(&v3, &v3, &op.c256)
	e.Mul(&v2, &v2, &v0)
	e.Inv(&v2, &v2)
	e.Mul(dst, &v3, &v2)
}

// Double sets dst = x([2]P), using Algorithm 2 of Costello-Smith with
// projective curve coefficients. Safe to overlap dst and p.
func (op *Operator) Double(dst, p *Point, cached *CachedParams) {
	e := op.E
	v1, v2, v3, xz4 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Add(&v1, &p.X, &p.Z)
	e.Square(&v1, &v1) // (X+Z)^2
	e.Sub(&v2, &p.X, &p.Z)
	e.Square(&v2, &v2)             // (X-Z)^2
	e.Sub(&xz4, &v1, &v2)          // 4XZ
	e.Mul(&v2, &v2, &cached.C4)    // 4C(X-Z)^2
	e.Mul(&dst.X, &v1, &v2)        // 4C(X+Z)^2(X-Z)^2
	e.Mul(&v3, &xz4, &cached.APlus2C)
	e.Add(&v3, &v3, &v2)
	e.Mul(&dst.Z, &v3, &xz4) // (4XZ(A+2C) + 4C(X-Z)^2)4XZ
}

// Triple sets dst = x([3]P), using the Montgomery tripling formulas of
// Costello-Longa-Naehrig. Safe to overlap dst and p.
func (op *Operator) Triple(dst, p *Point, cached *CachedParams) {
	e := op.E
	v0, v1, v2, v3 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	v4, v5 := e.NewElement(), e.NewElement()
	// (X_2 : Z_2) = x([2]P)
	e.Sub(&v2, &p.X, &p.Z)
	e.Add(&v3, &p.X, &p.Z)
	e.Square(&v0, &v2)
	e.Square(&v1, &v3)
	e.Mul(&v4, &v0, &cached.C4)
	e.Mul(&v5, &v4, &v1) // X_2
	e.Sub(&v1, &v1, &v0) // 4XZ
	e.Mul(&v0, &v1, &cached.APlus2C)
	e.Add(&v4, &v4, &v0)
	e.Mul(&v4, &v4, &v1) // Z_2
	// (X_3 : Z_3) = x(P + [2]P)
	e.Add(&v0, &v5, &v4)
	e.Mul(&v0, &v0, &v2)
	e.Sub(&v1, &v5, &v4)
	e.Mul(&v1, &v1, &v3)
	e.Sub(&v4, &v0, &v1)
	e.Square(&v4, &v4)
	e.Add(&v5, &v0, &v1)
	e.Square(&v5, &v5)
	e.Mul(&v2, &p.Z, &v5)
	e.Mul(&dst.Z, &p.X, &v4)
	e.Set(&dst.X, &v2)
}

// Pow2k sets dst = x([2^k]P). Safe to overlap dst and p.
func (op *Operator) Pow2k(dst *Point, c *Curve, p *Point, k int) {
	cached := op.NewCachedParams()
	op.Cache(&cached, c)
	op.SetPoint(dst, p)
	for i := 0; i < k; i++ {
		op.Double(dst, dst, &cached)
	}
}

// Pow3k sets dst = x([3^k]P). Safe to overlap dst and p.
func (op *Operator) Pow3k(dst *Point, c *Curve, p *Point, k int) {
	cached := op.NewCachedParams()
	op.Cache(&cached, c)
	op.SetPoint(dst, p)
	for i := 0; i < k; i++ {
		op.Triple(dst, dst, &cached)
	}
}

// Add sets dst = x(P+Q) from x(P), x(Q) and the difference x(P-Q),
// by Algorithm 1 of Costello-Smith. Safe to overlap dst with any input.
func (op *Operator) Add(dst, p, q, pMinusQ *Point) {
	e := op.E
	v0, v1, v2, v3, v4 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Add(&v0, &p.X, &p.Z)
	e.Sub(&v1, &q.X, &q.Z)
	e.Mul(&v1, &v1, &v0) // (X_Q - Z_Q)(X_P + Z_P)
	e.Sub(&v0, &p.X, &p.Z)
	e.Add(&v2, &q.X, &q.Z)
	e.Mul(&v2, &v2, &v0) // (X_Q + Z_Q)(X_P - Z_P)
	e.Add(&v3, &v1, &v2)
	e.Square(&v3, &v3) // 4(X_Q X_P - Z_Q Z_P)^2
	e.Sub(&v4, &v1, &v2)
	e.Square(&v4, &v4) // 4(X_Q Z_P - Z_Q X_P)^2
	e.Mul(&v0, &pMinusQ.Z, &v3)
	e.Mul(&dst.Z, &pMinusQ.X, &v4)
	e.Set(&dst.X, &v0)
}

// DoubleAdd sets dstDbl = x([2]P) and dstAdd = x(P+Q) in one pass,
// sharing the X_P +/- Z_P subexpressions between the doubling and the
// differential addition. Safe to overlap outputs with inputs, except
// dstDbl with q or pMinusQ.
func (op *Operator) DoubleAdd(dstDbl, dstAdd, p, q, pMinusQ *Point, cached *CachedParams) {
	e := op.E
	t0, t1 := e.NewElement(), e.NewElement()
	v1, v2, v3, v4 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Add(&t0, &p.X, &p.Z) // X_P + Z_P
	e.Sub(&t1, &p.X, &p.Z) // X_P - Z_P
	// differential addition
	e.Sub(&v1, &q.X, &q.Z)
	e.Mul(&v1, &v1, &t0)
	e.Add(&v2, &q.X, &q.Z)
	e.Mul(&v2, &v2, &t1)
	e.Add(&v3, &v1, &v2)
	e.Square(&v3, &v3)
	e.Sub(&v4, &v1, &v2)
	e.Square(&v4, &v4)
	e.Mul(&v1, &pMinusQ.Z, &v3)
	e.Mul(&v2, &pMinusQ.X, &v4)
	// doubling
	e.Square(&t0, &t0)
	e.Square(&t1, &t1)
	e.Sub(&v3, &t0, &t1) // 4XZ
	e.Mul(&t1, &t1, &cached.C4)
	e.Mul(&dstDbl.X, &t0, &t1)
	e.Mul(&v4, &v3, &cached.APlus2C)
	e.Add(&v4, &v4, &t1)
	e.Mul(&dstDbl.Z, &v4, &v3)
	e.Set(&dstAdd.X, &v1)
	e.Set(&dstAdd.Z, &v2)
}

// primeFieldDouble doubles a point on the base curve's prime-field
// subgroup using the fixed constant (a+2)/4 = 1/2.
func (op *Operator) primeFieldDouble(dst, p *PrimeFieldPoint) {
	f := op.Fp
	v1, v2, v3, xz4 := f.NewElement(), f.NewElement(), f.NewElement(), f.NewElement()
	f.AddMod(v1, p.X, p.Z)
	f.SquareMod(v1, v1)
	f.SubMod(v2, p.X, p.Z)
	f.SquareMod(v2, v2)
	f.SubMod(xz4, v1, v2)
	f.MulMod(dst.X, v1, v2)
	f.MulMod(v3, xz4, op.baseAPlus2Over4)
	f.AddMod(v3, v3, v2)
	f.MulMod(dst.Z, v3, xz4)
}

func (op *Operator) primeFieldAdd(dst, p, q, pMinusQ *PrimeFieldPoint) {
	f := op.Fp
	v0, v1, v2, v3, v4 := f.NewElement(), f.NewElement(), f.NewElement(), f.NewElement(), f.NewElement()
	f.AddMod(v0, p.X, p.Z)
	f.SubMod(v1, q.X, q.Z)
	f.MulMod(v1, v1, v0)
	f.SubMod(v0, p.X, p.Z)
	f.AddMod(v2, q.X, q.Z)
	f.MulMod(v2, v2, v0)
	f.AddMod(v3, v1, v2)
	f.SquareMod(v3, v3)
	f.SubMod(v4, v1, v2)
	f.SquareMod(v4, v4)
	f.MulMod(v0, pMinusQ.Z, v3)
	f.MulMod(dst.Z, pMinusQ.X, v4)
	copy(dst.X, v0)
}
