package curve

import "github.com/quantumsafe/isogeny/fp"

// ScalarMult sets dst = x([m]P) for a scalar m in little-endian bytes,
// using the Montgomery ladder (Algorithm 8 of Costello-Smith). The
// execution time depends only on the byte length of the scalar; pad
// with zero bytes to hide shorter scalars. Safe to overlap dst and xP.
func (op *Operator) ScalarMult(dst *Point, c *Curve, xP *Point, scalar []byte) {
	cached := op.NewCachedParams()
	op.Cache(&cached, c)

	x0, x1 := op.NewPoint(), op.NewPoint()
	base := op.NewPoint()
	op.SetPoint(&base, xP)

	op.E.One(&x0.X)
	op.E.Zero(&x0.Z)
	op.SetPoint(&x1, &base)

	prevBit := uint64(0)
	for i := len(scalar) - 1; i >= 0; i-- {
		scalarByte := scalar[i]
		for j := 7; j >= 0; j-- {
			bit := uint64(scalarByte>>uint(j)) & 1
			op.SwapPoints(&x0, &x1, bit^prevBit)
			op.DoubleAdd(&x0, &x1, &x0, &x1, &base, &cached)
			prevBit = bit
		}
	}
	// prevBit is now the lowest bit of the scalar
	op.SwapPoints(&x0, &x1, prevBit)
	op.SetPoint(dst, &x0)
}

// ScalarMultPrimeField computes x([m]P) and x([m+1]P) on the
// prime-field subgroup of the base curve, for a scalar m in
// little-endian bytes. The second output allows y-coordinate recovery.
// The execution time depends only on the byte length of the scalar.
func (op *Operator) ScalarMultPrimeField(xP *PrimeFieldPoint, scalar []byte) (PrimeFieldPoint, PrimeFieldPoint) {
	f := op.Fp
	x0, x1, tmp := op.NewPrimeFieldPoint(), op.NewPrimeFieldPoint(), op.NewPrimeFieldPoint()

	f.One(x0.X)
	f.Zero(x0.Z)
	copy(x1.X, xP.X)
	copy(x1.Z, xP.Z)

	prevBit := uint64(0)
	for i := len(scalar) - 1; i >= 0; i-- {
		scalarByte := scalar[i]
		for j := 7; j >= 0; j-- {
			bit := uint64(scalarByte>>uint(j)) & 1
			op.swapPrimeFieldPoints(&x0, &x1, bit^prevBit)
			op.primeFieldDouble(&tmp, &x0)
			op.primeFieldAdd(&x1, &x0, &x1, xP)
			copy(x0.X, tmp.X)
			copy(x0.Z, tmp.Z)
			prevBit = bit
		}
	}
	op.swapPrimeFieldPoints(&x0, &x1, prevBit)
	return x0, x1
}

// ThreePointLadder sets dst = x(P + [m]Q) from x(P), x(Q), x(P-Q) and a
// scalar m in little-endian bytes, using the three-point ladder of
// de Feo-Jao-Plut. The execution time depends only on the byte length
// of the scalar. Safe to overlap dst with any input.
//
// The loop maintains (x0, x1, x2) = (x([t]Q), x([t+1]Q), x(P + [t]Q))
// for t the processed high bits of m; the conditional swaps switch the
// roles of (x0, x1) and of the differences (x(P), x(P-Q)) so that the
// same three operations serve both bit values.
func (op *Operator) ThreePointLadder(dst *Point, c *Curve, xP, xQ, xPmQ *Point, scalar []byte) {
	cached := op.NewCachedParams()
	op.Cache(&cached, c)

	x0, x1, x2 := op.NewPoint(), op.NewPoint(), op.NewPoint()
	y0, y1 := op.NewPoint(), op.NewPoint()
	baseQ := op.NewPoint()

	// (x0, x1, x2) = (x(O), x(Q), x(P)), (y0, y1) = (x(P), x(P-Q))
	op.E.One(&x0.X)
	op.E.Zero(&x0.Z)
	op.SetPoint(&x1, xQ)
	op.SetPoint(&x2, xP)
	op.SetPoint(&y0, xP)
	op.SetPoint(&y1, xPmQ)
	op.SetPoint(&baseQ, xQ)

	prevBit := uint64(0)
	for i := len(scalar) - 1; i >= 0; i-- {
		scalarByte := scalar[i]
		for j := 7; j >= 0; j-- {
			bit := uint64(scalarByte>>uint(j)) & 1
			op.SwapPoints(&x0, &x1, bit^prevBit)
			op.SwapPoints(&y0, &y1, bit^prevBit)
			op.Add(&x2, &x2, &x0, &y0)
			op.DoubleAdd(&x0, &x1, &x0, &x1, &baseQ, &cached)
			prevBit = bit
		}
	}
	op.SetPoint(dst, &x2)
}

// OkeyaSakuraiRecovery recovers the projective point Q = (X : Y : Z)
// from an affine point P = (xP, yP) in the prime-field subgroup of the
// base curve together with x(Q) and x(R) = x(P+Q). This is Algorithm 5
// of Costello-Smith with the base curve constants a = 0, b = 1.
func (op *Operator) OkeyaSakuraiRecovery(affineXP, affineYP fp.Element, xQ, xR *PrimeFieldPoint) (X, Y, Z fp.Element) {
	f := op.Fp
	v1, v2, v3, v4 := f.NewElement(), f.NewElement(), f.NewElement(), f.NewElement()
	X, Y, Z = f.NewElement(), f.NewElement(), f.NewElement()
	f.MulMod(v1, affineXP, xQ.Z)
	f.AddMod(v2, xQ.X, v1)
	f.SubMod(v3, xQ.X, v1)
	f.SquareMod(v3, v3)
	f.MulMod(v3, v3, xR.X) // X_R*(X_Q - xP*Z_Q)^2
	// steps 6, 7, 11, 12 drop out with a = 0
	f.MulMod(v4, affineXP, xQ.X)
	f.AddMod(v4, v4, xQ.Z)
	f.MulMod(v2, v2, v4) // (xP*X_Q + Z_Q)(X_Q + xP*Z_Q)
	f.MulMod(v2, v2, xR.Z)
	f.SubMod(Y, v2, v3)
	f.AddMod(v1, affineYP, affineYP) // 2b*yP
	f.MulMod(v1, v1, xQ.Z)
	f.MulMod(v1, v1, xR.Z)
	f.MulMod(X, v1, xQ.X)
	f.MulMod(Z, v1, xQ.Z)
	return
}

// DistortAndDifference computes x(tau(P) - P) for an affine prime-field
// x-coordinate xP, where tau(x, y) = (-x, iy) is the distortion map of
// the base curve. The result has X purely imaginary and Z in GF(p).
func (op *Operator) DistortAndDifference(dst *Point, affineXP fp.Element) {
	f := op.Fp
	t0, t1 := f.NewElement(), f.NewElement()
	f.SquareMod(t0, affineXP)
	f.One(t1)
	f.AddMod(t1, t1, t0) // xP^2 + 1
	op.E.Zero(&dst.X)
	copy(dst.X.B, t1)
	op.E.Zero(&dst.Z)
	f.AddMod(t0, affineXP, affineXP)
	copy(dst.Z.A, t0)
}

// SecretKernelPoint computes x(P + [m]tau(P)) for an affine point
// P = (xP, yP) in the prime-field subgroup of the base curve, where
// tau is the distortion map. The scalar is in little-endian bytes and
// only its length leaks.
//
// Since x(tau(P)) = -xP lies in the prime field and the ladder only
// touches x-coordinates, the scalar multiplication runs entirely over
// GF(p); the final point addition reintroduces the imaginary part via
// the recovered y-coordinate, which is i times a prime-field value for
// every point in the trace-zero subgroup.
func (op *Operator) SecretKernelPoint(dst *Point, affineXP, affineYP fp.Element, scalar []byte) {
	f := op.Fp
	xQ := op.NewPrimeFieldPoint()
	copy(xQ.X, affineXP)
	f.Neg(xQ.X, xQ.X)
	f.One(xQ.Z)

	xmQ, xm1Q := op.ScalarMultPrimeField(&xQ, scalar)

	// recover [m]Q = (XmQ : YmQ*i : ZmQ)
	XmQ, YmQ, ZmQ := f.NewElement(), f.NewElement(), f.NewElement()
	t0, t1 := f.NewElement(), f.NewElement()

	// YmQ = (ZmQ - xP*XmQ)(XmQ - xP*ZmQ)*Zm1Q - Xm1Q*(XmQ + xP*ZmQ)^2
	f.MulMod(t0, affineXP, xmQ.X)
	f.SubMod(YmQ, xmQ.Z, t0)
	f.MulMod(t1, affineXP, xmQ.Z)
	f.SubMod(t0, xmQ.X, t1)
	f.MulMod(YmQ, YmQ, t0)
	f.MulMod(YmQ, YmQ, xm1Q.Z)
	f.AddMod(t1, t1, xmQ.X)
	f.SquareMod(t1, t1)
	f.MulMod(t1, t1, xm1Q.X)
	f.SubMod(YmQ, YmQ, t1)

	// ZmQ = -2*(ZmQ^2 * Zm1Q * yP), and fold the same factor into XmQ
	f.MulMod(t0, xmQ.Z, xm1Q.Z)
	f.MulMod(t0, t0, affineYP)
	f.Neg(t0, t0)
	f.AddMod(t0, t0, t0)
	f.MulMod(ZmQ, xmQ.Z, t0)
	f.MulMod(XmQ, xmQ.X, t0)

	// x(P + [m]Q) = (XRa + i*XRb : ZR)
	XRa, XRb, ZR := f.NewElement(), f.NewElement(), f.NewElement()

	f.SquareMod(XRb, ZmQ)
	f.MulMod(XRb, XRb, YmQ)
	f.MulMod(XRb, XRb, affineYP)
	f.AddMod(XRb, XRb, XRb)
	f.Neg(XRb, XRb) // -2*YmQ*yP*ZmQ^2

	f.MulMod(t0, affineYP, ZmQ)
	f.SquareMod(t0, t0)
	f.SquareMod(t1, YmQ)
	f.SubMod(XRa, t0, t1)
	f.MulMod(XRa, XRa, ZmQ) // ZmQ*((yP*ZmQ)^2 - YmQ^2)
	f.MulMod(t0, affineXP, ZmQ)
	f.AddMod(t1, XmQ, t0)
	f.SubMod(t0, XmQ, t0)
	f.SquareMod(t0, t0)
	f.MulMod(t1, t1, t0)
	f.SubMod(XRa, XRa, t1)

	f.MulMod(ZR, ZmQ, t0) // ZmQ*(XmQ - xP*ZmQ)^2

	copy(dst.X.A, XRa)
	copy(dst.X.B, XRb)
	copy(dst.Z.A, ZR)
	f.Zero(dst.Z.B)
}
