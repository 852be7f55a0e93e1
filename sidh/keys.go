package sidh

import (
	"fmt"

	"github.com/quantumsafe/isogeny/curve"
	"github.com/quantumsafe/isogeny/fp2"
	"github.com/quantumsafe/isogeny/utils/sampling"
	"github.com/zeebo/blake3"
)

// Party identifies which side of the exchange a key belongs to.
type Party uint8

const (
	// PartyA walks 4-isogenies; its scalars are even and below 2^e2.
	PartyA Party = iota
	// PartyB walks 3-isogenies; its scalars are multiples of 3 below 3^e3.
	PartyB
)

func (p Party) String() string {
	if p == PartyA {
		return "A"
	}
	return "B"
}

// PrivateKey is a party's secret walk scalar.
type PrivateKey struct {
	params *Parameters
	party  Party
	scalar []byte
}

// PublicKey is the image of the peer's torsion basis under the secret
// isogeny: the affine x-coordinates of phi(P), phi(Q) and phi(Q-P).
type PublicKey struct {
	params *Parameters
	party  Party

	affineXP   fp2.Element
	affineXQ   fp2.Element
	affineXQmP fp2.Element
}

// NewPrivateKey returns a zero private key for the given party, ready
// for SetBytes.
func NewPrivateKey(params *Parameters, party Party) *PrivateKey {
	return &PrivateKey{
		params: params,
		party:  party,
		scalar: make([]byte, params.ScalarSize(party)),
	}
}

// NewPublicKey returns a zero public key for the given party, ready for
// SetBytes.
func NewPublicKey(params *Parameters, party Party) *PublicKey {
	return &PublicKey{
		params:     params,
		party:      party,
		affineXP:   params.fp2.NewElement(),
		affineXQ:   params.fp2.NewElement(),
		affineXQmP: params.fp2.NewElement(),
	}
}

// GeneratePrivateKey samples a fresh private key for the given party
// from prng.
func GeneratePrivateKey(params *Parameters, prng sampling.PRNG, party Party) (*PrivateKey, error) {
	sk := NewPrivateKey(params, party)
	var err error
	if party == PartyA {
		err = params.sampleScalarA(prng, sk.scalar)
	} else {
		err = params.sampleScalarB(prng, sk.scalar)
	}
	if err != nil {
		return nil, err
	}
	return sk, nil
}

// NewPrivateKeyFromSeed deterministically derives a private key from
// seed by expanding it with the BLAKE3 XOF. The same seed always yields
// the same key.
func NewPrivateKeyFromSeed(params *Parameters, seed []byte, party Party) (*PrivateKey, error) {
	h := blake3.New()
	if _, err := h.Write(seed); err != nil {
		return nil, fmt.Errorf("sidh: expanding seed: %w", err)
	}
	return GeneratePrivateKey(params, h.Digest(), party)
}

// Party returns the party the key belongs to.
func (sk *PrivateKey) Party() Party { return sk.party }

// Party returns the party the key belongs to.
func (pk *PublicKey) Party() Party { return pk.party }

// Params returns the key's parameter set.
func (sk *PrivateKey) Params() *Parameters { return sk.params }

// Params returns the key's parameter set.
func (pk *PublicKey) Params() *Parameters { return pk.params }

// Public computes the public key matching sk: the secret kernel point
// is pushed down the full isogeny walk together with the peer's basis.
func (sk *PrivateKey) Public() *PublicKey {
	if sk.party == PartyA {
		return sk.params.publicKeyA(sk.scalar)
	}
	return sk.params.publicKeyB(sk.scalar)
}

// SharedSecret computes this side's view of the shared secret, the
// j-invariant of the final curve of the walk over the peer's public
// key. The peer must be the opposite party.
func (sk *PrivateKey) SharedSecret(peer *PublicKey) ([]byte, error) {
	if peer.party == sk.party {
		return nil, fmt.Errorf("sidh: both keys belong to party %v", sk.party)
	}
	if !sk.params.Equal(peer.params) {
		return nil, fmt.Errorf("sidh: parameter sets differ (%s vs %s)", sk.params.Name(), peer.params.Name())
	}
	if sk.party == PartyA {
		return sk.params.sharedSecretA(sk.scalar, peer), nil
	}
	return sk.params.sharedSecretB(sk.scalar, peer), nil
}

// walkState carries the point stack of a strategy-driven walk.
type walkState struct {
	op      *curve.Operator
	points  []curve.Point
	indices []int
}

func (w *walkState) push(p *curve.Point, i int) {
	np := w.op.NewPoint()
	w.op.SetPoint(&np, p)
	w.points = append(w.points, np)
	w.indices = append(w.indices, i)
}

func (w *walkState) pop(dst *curve.Point) int {
	last := len(w.points) - 1
	w.op.SetPoint(dst, &w.points[last])
	w.points = w.points[:last]
	i := w.indices[last]
	w.indices = w.indices[:last]
	return i
}

func newWalkState(op *curve.Operator) walkState {
	return walkState{
		op:      op,
		points:  make([]curve.Point, 0, 8),
		indices: make([]int, 0, 8),
	}
}

// publicKeyA computes an A-side public key: the kernel P_A + [m]tau(P_A)
// drives a 2^e2-isogeny, through which B's basis is evaluated.
func (par *Parameters) publicKeyA(scalar []byte) *PublicKey {
	op := par.op
	e := par.fp2

	xP, xQ, xQmP, xR := op.NewPoint(), op.NewPoint(), op.NewPoint(), op.NewPoint()
	op.FromAffinePrimeField(&xP, par.xPB)
	op.FromAffinePrimeField(&xQ, par.xPB)
	e.Neg(&xQ.X, &xQ.X) // x(tau(P_B)) = -x(P_B)
	op.DistortAndDifference(&xQmP, par.xPB)
	op.SecretKernelPoint(&xR, par.xPA, par.yPA, scalar)

	cur, next := op.NewCurve(), op.NewCurve()
	e.Zero(&cur.A)
	e.One(&cur.C)

	first := op.ComputeFirstFourIsogeny(&next, &cur)
	op.EvalFirstFourIsogeny(&xP, first, &xP)
	op.EvalFirstFourIsogeny(&xQ, first, &xQ)
	op.EvalFirstFourIsogeny(&xQmP, first, &xQmP)
	op.EvalFirstFourIsogeny(&xR, first, &xR)
	op.SetCurve(&cur, &next)

	w := newWalkState(op)
	i := 0
	for j := 1; j < par.maxA; j++ {
		for i < par.maxA-j {
			w.push(&xR, i)
			k := par.stratA[par.maxA-i-j]
			op.Pow2k(&xR, &cur, &xR, 2*k)
			i += k
		}
		phi := op.ComputeFourIsogeny(&cur, &xR)
		for k := range w.points {
			op.EvalFourIsogeny(&w.points[k], phi, &w.points[k])
		}
		op.EvalFourIsogeny(&xP, phi, &xP)
		op.EvalFourIsogeny(&xQ, phi, &xQ)
		op.EvalFourIsogeny(&xQmP, phi, &xQmP)
		i = w.pop(&xR)
	}
	phi := op.ComputeFourIsogeny(&cur, &xR)
	op.EvalFourIsogeny(&xP, phi, &xP)
	op.EvalFourIsogeny(&xQ, phi, &xQ)
	op.EvalFourIsogeny(&xQmP, phi, &xQmP)

	return par.normalize(PartyA, &xP, &xQ, &xQmP)
}

// publicKeyB computes a B-side public key with a 3^e3-isogeny walk.
func (par *Parameters) publicKeyB(scalar []byte) *PublicKey {
	op := par.op
	e := par.fp2

	xP, xQ, xQmP, xR := op.NewPoint(), op.NewPoint(), op.NewPoint(), op.NewPoint()
	op.FromAffinePrimeField(&xP, par.xPA)
	op.FromAffinePrimeField(&xQ, par.xPA)
	e.Neg(&xQ.X, &xQ.X)
	op.DistortAndDifference(&xQmP, par.xPA)
	op.SecretKernelPoint(&xR, par.xPB, par.yPB, scalar)

	cur := op.NewCurve()
	e.Zero(&cur.A)
	e.One(&cur.C)

	w := newWalkState(op)
	i := 0
	for j := 1; j < par.maxB; j++ {
		for i < par.maxB-j {
			w.push(&xR, i)
			k := par.stratB[par.maxB-i-j]
			op.Pow3k(&xR, &cur, &xR, k)
			i += k
		}
		phi := op.ComputeThreeIsogeny(&cur, &xR)
		for k := range w.points {
			op.EvalThreeIsogeny(&w.points[k], phi, &w.points[k])
		}
		op.EvalThreeIsogeny(&xP, phi, &xP)
		op.EvalThreeIsogeny(&xQ, phi, &xQ)
		op.EvalThreeIsogeny(&xQmP, phi, &xQmP)
		i = w.pop(&xR)
	}
	phi := op.ComputeThreeIsogeny(&cur, &xR)
	op.EvalThreeIsogeny(&xP, phi, &xP)
	op.EvalThreeIsogeny(&xQ, phi, &xQ)
	op.EvalThreeIsogeny(&xQmP, phi, &xQmP)

	return par.normalize(PartyB, &xP, &xQ, &xQmP)
}

// normalize batch-inverts the three Z coordinates and packs the affine
// triple into a public key.
func (par *Parameters) normalize(party Party, xP, xQ, xQmP *curve.Point) *PublicKey {
	e := par.fp2
	zP, zQ, zQmP := e.NewElement(), e.NewElement(), e.NewElement()
	e.Set(&zP, &xP.Z)
	e.Set(&zQ, &xQ.Z)
	e.Set(&zQmP, &xQmP.Z)
	e.Inv3Way(&zP, &zQ, &zQmP)

	pk := NewPublicKey(par, party)
	e.Mul(&pk.affineXP, &xP.X, &zP)
	e.Mul(&pk.affineXQ, &xQ.X, &zQ)
	e.Mul(&pk.affineXQmP, &xQmP.X, &zQmP)
	return pk
}

// sharedSecretA computes A's view of the shared secret: the secret
// kernel x(P + [m]Q) is built on B's curve with the three-point ladder,
// then the 2-power walk runs with no basis to push, ending in the
// j-invariant of the final curve.
func (par *Parameters) sharedSecretA(scalar []byte, peer *PublicKey) []byte {
	op := par.op

	cur, next := op.NewCurve(), op.NewCurve()
	op.RecoverCurve(&cur, &peer.affineXP, &peer.affineXQ, &peer.affineXQmP)

	xP, xQ, xQmP, xR := op.NewPoint(), op.NewPoint(), op.NewPoint(), op.NewPoint()
	op.FromAffine(&xP, &peer.affineXP)
	op.FromAffine(&xQ, &peer.affineXQ)
	op.FromAffine(&xQmP, &peer.affineXQmP)
	op.ThreePointLadder(&xR, &cur, &xP, &xQ, &xQmP, scalar)

	first := op.ComputeFirstFourIsogeny(&next, &cur)
	op.EvalFirstFourIsogeny(&xR, first, &xR)
	op.SetCurve(&cur, &next)

	w := newWalkState(op)
	i := 0
	for j := 1; j < par.maxA; j++ {
		for i < par.maxA-j {
			w.push(&xR, i)
			k := par.stratA[par.maxA-i-j]
			op.Pow2k(&xR, &cur, &xR, 2*k)
			i += k
		}
		phi := op.ComputeFourIsogeny(&cur, &xR)
		for k := range w.points {
			op.EvalFourIsogeny(&w.points[k], phi, &w.points[k])
		}
		i = w.pop(&xR)
	}
	op.ComputeFourIsogeny(&cur, &xR)

	return par.jInvariantBytes(&cur)
}

// sharedSecretB computes B's view of the shared secret with the
// 3-power walk over A's public key.
func (par *Parameters) sharedSecretB(scalar []byte, peer *PublicKey) []byte {
	op := par.op

	cur := op.NewCurve()
	op.RecoverCurve(&cur, &peer.affineXP, &peer.affineXQ, &peer.affineXQmP)

	xP, xQ, xQmP, xR := op.NewPoint(), op.NewPoint(), op.NewPoint(), op.NewPoint()
	op.FromAffine(&xP, &peer.affineXP)
	op.FromAffine(&xQ, &peer.affineXQ)
	op.FromAffine(&xQmP, &peer.affineXQmP)
	op.ThreePointLadder(&xR, &cur, &xP, &xQ, &xQmP, scalar)

	w := newWalkState(op)
	i := 0
	for j := 1; j < par.maxB; j++ {
		for i < par.maxB-j {
			w.push(&xR, i)
			k := par.stratB[par.maxB-i-j]
			op.Pow3k(&xR, &cur, &xR, k)
			i += k
		}
		phi := op.ComputeThreeIsogeny(&cur, &xR)
		for k := range w.points {
			op.EvalThreeIsogeny(&w.points[k], phi, &w.points[k])
		}
		i = w.pop(&xR)
	}
	op.ComputeThreeIsogeny(&cur, &xR)

	return par.jInvariantBytes(&cur)
}

func (par *Parameters) jInvariantBytes(cur *curve.Curve) []byte {
	j := par.fp2.NewElement()
	par.op.JInvariant(&j, cur)
	out := make([]byte, par.fp2.Size())
	if err := par.fp2.ToBytes(out, &j); err != nil {
		// the buffer is sized above, this cannot fail
		panic(err)
	}
	return out
}
