package curve

import "github.com/quantumsafe/isogeny/fp2"

// ThreeIsogeny holds the kernel data needed to evaluate a 3-isogeny
// phi : E_(A:C) -> E_(A:C)/<P_3>.
type ThreeIsogeny struct {
	x fp2.Element
	z fp2.Element
}

// ComputeThreeIsogeny constructs the 3-isogeny with kernel generated by
// the 3-torsion point x3, writing the codomain curve coefficients into
// codomain and returning the evaluable isogeny.
func (op *Operator) ComputeThreeIsogeny(codomain *Curve, x3 *Point) *ThreeIsogeny {
	e := op.E
	phi := &ThreeIsogeny{x: e.NewElement(), z: e.NewElement()}
	e.Set(&phi.x, &x3.X)
	e.Set(&phi.z, &x3.Z)
	// (A' : C') = (Z^4 + 18X^2Z^2 - 27X^4 : 4XZ^3), with the middle terms
	// folded as 18X^2Z^2 - 27X^4 = 9X^2(2Z^2 - 3X^2).
	v0, v1, v2, v3 := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Square(&v1, &x3.X)
	e.Add(&v0, &v1, &v1)
	e.Add(&v0, &v1, &v0) // 3X^2
	e.Add(&v1, &v0, &v0)
	e.Add(&v1, &v1, &v0) // 9X^2
	e.Square(&v2, &x3.Z)
	e.Square(&v3, &v2)   // Z^4
	e.Add(&v2, &v2, &v2) // 2Z^2
	e.Sub(&v0, &v2, &v0)
	e.Mul(&v1, &v1, &v0) // 9X^2(2Z^2 - 3X^2)
	e.Mul(&v0, &x3.X, &x3.Z)
	e.Add(&v0, &v0, &v0)
	e.Add(&codomain.A, &v3, &v1)
	e.Mul(&codomain.C, &v0, &v2) // 4XZ^3
	return phi
}

// EvalThreeIsogeny sets dst = x(phi(P)) on the codomain curve. Safe to
// overlap dst and xP.
func (op *Operator) EvalThreeIsogeny(dst *Point, phi *ThreeIsogeny, xP *Point) {
	e := op.E
	t0, t1, t2 := e.NewElement(), e.NewElement(), e.NewElement()
	e.Mul(&t0, &phi.x, &xP.X)
	e.Mul(&t1, &phi.z, &xP.Z)
	e.Sub(&t2, &t0, &t1) // X3*XP - Z3*ZP
	e.Mul(&t0, &phi.z, &xP.X)
	e.Mul(&t1, &phi.x, &xP.Z)
	e.Sub(&t0, &t0, &t1) // Z3*XP - X3*ZP
	e.Square(&t2, &t2)
	e.Square(&t0, &t0)
	e.Mul(&t2, &t2, &xP.X)
	e.Mul(&dst.Z, &t0, &xP.Z)
	e.Set(&dst.X, &t2)
}

// FourIsogeny holds the kernel data needed to evaluate a 4-isogeny.
//
// Costello-Longa-Naehrig give two sets of 4-isogeny formulas: this one
// for the case that (1, ...) does not lie in the kernel, and
// FirstFourIsogeny for the case that it does.
type FourIsogeny struct {
	xsqPlusZsq  fp2.Element
	xsqMinusZsq fp2.Element
	xz2         fp2.Element
	xpow4       fp2.Element
	zpow4       fp2.Element
}

// ComputeFourIsogeny constructs the 4-isogeny with kernel generated by
// the 4-torsion point x4, writing the codomain coefficients into
// codomain and returning the evaluable isogeny.
func (op *Operator) ComputeFourIsogeny(codomain *Curve, x4 *Point) *FourIsogeny {
	e := op.E
	phi := &FourIsogeny{
		xsqPlusZsq:  e.NewElement(),
		xsqMinusZsq: e.NewElement(),
		xz2:         e.NewElement(),
		xpow4:       e.NewElement(),
		zpow4:       e.NewElement(),
	}
	v0, v1 := e.NewElement(), e.NewElement()
	e.Square(&v0, &x4.X)
	e.Square(&v1, &x4.Z)
	e.Add(&phi.xsqPlusZsq, &v0, &v1)
	e.Sub(&phi.xsqMinusZsq, &v0, &v1)
	e.Add(&phi.xz2, &x4.X, &x4.Z)
	e.Square(&phi.xz2, &phi.xz2)
	e.Sub(&phi.xz2, &phi.xz2, &phi.xsqPlusZsq) // 2*X4*Z4
	e.Square(&phi.xpow4, &v0)
	e.Square(&phi.zpow4, &v1)
	e.Add(&v0, &phi.xpow4, &phi.xpow4)
	e.Sub(&v0, &v0, &phi.zpow4)
	e.Add(&codomain.A, &v0, &v0) // 2(2X4^4 - Z4^4)
	e.Set(&codomain.C, &phi.zpow4)
	return phi
}

// EvalFourIsogeny sets dst = x(phi(P)) on the codomain curve. Safe to
// overlap dst and xP.
func (op *Operator) EvalFourIsogeny(dst *Point, phi *FourIsogeny, xP *Point) {
	e := op.E
	t0, t1, t2 := e.NewElement(), e.NewElement(), e.NewElement()
	// Formula (7) of Costello-Longa-Naehrig, with the common projective
	// factor 16(X4+Z4)(X4-Z4)X4^2 Z4^4 folded into both coordinates.
	e.Mul(&t0, &xP.X, &phi.xz2)
	e.Mul(&t1, &xP.Z, &phi.xsqPlusZsq)
	e.Sub(&t0, &t0, &t1)
	e.Mul(&t1, &xP.Z, &phi.xsqMinusZsq)
	e.Sub(&t2, &t0, &t1)
	e.Square(&t2, &t2) // 4(X4*Z - X*Z4)^2*X4^2
	e.Mul(&t0, &t0, &t1)
	e.Add(&t0, &t0, &t0)
	e.Add(&t0, &t0, &t0)
	e.Add(&t1, &t0, &t2) // 4(X*X4 - Z*Z4)^2*Z4^2
	e.Mul(&t0, &t0, &t2)
	e.Mul(&dst.Z, &t0, &phi.zpow4)
	e.Mul(&t2, &t2, &phi.zpow4)
	e.Mul(&t0, &t1, &phi.xpow4)
	e.Sub(&t0, &t2, &t0)
	e.Mul(&dst.X, &t1, &t0)
}

// FirstFourIsogeny is the 4-isogeny used for the first step of a
// 2-power walk from the base curve, where (1, ...) lies in the kernel.
type FirstFourIsogeny struct {
	a fp2.Element
	c fp2.Element
}

// ComputeFirstFourIsogeny constructs the first 4-isogeny from the given
// domain curve, writing the codomain coefficients into codomain.
func (op *Operator) ComputeFirstFourIsogeny(codomain *Curve, domain *Curve) *FirstFourIsogeny {
	e := op.E
	phi := &FirstFourIsogeny{a: e.NewElement(), c: e.NewElement()}
	t0, t1 := e.NewElement(), e.NewElement()
	e.Add(&t0, &domain.C, &domain.C)
	e.Sub(&codomain.C, &domain.A, &t0) // A - 2C
	e.Add(&t1, &t0, &t0)
	e.Add(&t1, &t1, &t0)
	e.Add(&t0, &t1, &domain.A)
	e.Add(&codomain.A, &t0, &t0) // 2(A + 6C)
	e.Set(&phi.a, &domain.A)
	e.Set(&phi.c, &domain.C)
	return phi
}

// EvalFirstFourIsogeny sets dst = x(phi(P)) on the codomain curve. Safe
// to overlap dst and xP.
func (op *Operator) EvalFirstFourIsogeny(dst *Point, phi *FirstFourIsogeny, xP *Point) {
	e := op.E
	t0, t1, t2, t3, x := e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement(), e.NewElement()
	e.Add(&t0, &xP.X, &xP.Z)
	e.Square(&t0, &t0) // (X+Z)^2
	e.Mul(&t2, &xP.X, &xP.Z)
	e.Add(&t1, &t2, &t2)
	e.Sub(&t1, &t0, &t1) // X^2 + Z^2
	e.Mul(&x, &phi.a, &t2)
	e.Mul(&t3, &phi.c, &t1)
	e.Add(&x, &x, &t3)
	e.Mul(&x, &x, &t0) // (X+Z)^2 (A*X*Z + C*(X^2+Z^2))
	e.Sub(&t0, &xP.X, &xP.Z)
	e.Square(&t0, &t0)
	e.Mul(&t0, &t0, &t2) // X*Z*(X-Z)^2
	e.Add(&t1, &phi.c, &phi.c)
	e.Sub(&t1, &t1, &phi.a)
	e.Mul(&dst.Z, &t1, &t0) // (2C - A)*X*Z*(X-Z)^2
	e.Set(&dst.X, &x)
}
