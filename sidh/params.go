// Package sidh implements ephemeral supersingular-isogeny Diffie-Hellman
// over primes of the form p = 2^e2 * 3^e3 - 1, following the projective
// x-only design of Costello-Longa-Naehrig. The party using 2-power
// isogenies is "party A" and the party using 3-power isogenies "party B".
//
// The package performs no public-key validation, so keypairs must be
// ephemeral: each one may enter at most one shared-secret computation
// against an untrusted peer. The sike package wraps this exchange into
// an IND-CCA KEM that lifts that restriction for the static side.
package sidh

import (
	"fmt"
	"math/big"

	"github.com/google/go-cmp/cmp"
	"github.com/quantumsafe/isogeny/curve"
	"github.com/quantumsafe/isogeny/fp"
	"github.com/quantumsafe/isogeny/fp2"
)

// ParametersLiteral is a toolbox-free description of a parameter set.
// P must be the hexadecimal encoding of 2^E2 * 3^E3 - 1.
//
// Users are expected to use the prebuilt literals P434 and P503; custom
// literals are checked for consistency by NewParametersFromLiteral.
type ParametersLiteral struct {
	Name string
	P    string
	E2   int
	E3   int
}

// P434 provides 128-bit classical security (NIST level 1).
var P434 = ParametersLiteral{
	Name: "P434",
	P:    "2341f271773446cfc5fd681c520567bc65c783158aea3fdc1767ae2ffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	E2:   216,
	E3:   137,
}

// P503 provides 128-bit classical security with a wider margin (NIST
// level 2).
var P503 = ParametersLiteral{
	Name: "P503",
	P:    "4066f541811e1e6045c6bdda77a4d01b9bf6c87b7e7daf13085bda2211e7a0abffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	E2:   250,
	E3:   159,
}

// Parameters holds the precomputed state of a parameter set: the field
// contexts, the curve operator, the torsion basis of the base curve,
// the walk strategy tables and the scalar sampling bounds. Parameters
// are immutable once constructed and safe for concurrent use.
type Parameters struct {
	lit ParametersLiteral

	fp  *fp.Field
	fp2 *fp2.Field
	op  *curve.Operator

	e2, e3 int

	// affine torsion generators of the base curve E_0(GF(p)),
	// PA of order 2^e2 and PB of order 3^e3
	xPA, yPA fp.Element
	xPB, yPB fp.Element

	// strategy tables for the two walks; stratA[n] (resp. stratB[n]) is
	// the number of multiplication steps taken at a subtree of n
	// remaining levels
	maxA, maxB     int
	stratA, stratB []int

	// scalar sampling state
	scalarSizeA int  // bytes of an A-side scalar, even and < 2^e2
	scalarSizeB int  // bytes of a B-side scalar 3m, m < 3^(e3-1)
	maskA       byte // top-byte mask bringing an A sample under 2^e2
	sampleSizeB int  // bytes drawn per B rejection-sampling attempt
	maskB       byte // top-byte mask for a B sample
	boundB      []byte // 3^(e3-1), little-endian, sampleSizeB bytes
}

// NewParametersFromLiteral builds the precomputed Parameters for the
// given literal. The construction derives the torsion basis and the
// strategy tables, which involves a few full-length ladders; callers
// should build each parameter set once and share it.
func NewParametersFromLiteral(lit ParametersLiteral) (*Parameters, error) {
	if lit.E2 < 2 || lit.E2%2 != 0 {
		return nil, fmt.Errorf("sidh: E2 must be even and positive, got %d", lit.E2)
	}
	if lit.E3 < 1 {
		return nil, fmt.Errorf("sidh: E3 must be positive, got %d", lit.E3)
	}

	p, ok := new(big.Int).SetString(lit.P, 16)
	if !ok {
		return nil, fmt.Errorf("sidh: invalid modulus %q", lit.P)
	}
	want := new(big.Int).Lsh(big.NewInt(1), uint(lit.E2))
	want.Mul(want, new(big.Int).Exp(big.NewInt(3), big.NewInt(int64(lit.E3)), nil))
	want.Sub(want, big.NewInt(1))
	if p.Cmp(want) != 0 {
		return nil, fmt.Errorf("sidh: modulus is not 2^%d * 3^%d - 1", lit.E2, lit.E3)
	}

	base, err := fp.NewField(lit.P)
	if err != nil {
		return nil, fmt.Errorf("sidh: %w", err)
	}
	ext := fp2.NewField(base)

	par := &Parameters{
		lit: lit,
		fp:  base,
		fp2: ext,
		op:  curve.NewOperator(ext),
		e2:  lit.E2,
		e3:  lit.E3,
	}

	par.maxA = lit.E2/2 - 1
	par.maxB = lit.E3
	// a multiplication step is two doublings against one 4-isogeny
	// evaluation on the A side, and one tripling against one 3-isogeny
	// evaluation on the B side
	par.stratA = computeStrategy(par.maxA, 12, 8)
	par.stratB = computeStrategy(par.maxB, 12, 6)

	par.initScalarBounds()
	if err := par.deriveBasis(); err != nil {
		return nil, err
	}
	return par, nil
}

func (par *Parameters) initScalarBounds() {
	par.scalarSizeA = (par.e2 + 7) / 8
	par.maskA = 0xff >> uint(8*par.scalarSizeA-par.e2)

	three := big.NewInt(3)
	bound := new(big.Int).Exp(three, big.NewInt(int64(par.e3-1)), nil)
	top := new(big.Int).Mul(bound, three) // 3^e3
	par.scalarSizeB = (top.BitLen() + 7) / 8
	bits := bound.BitLen()
	par.sampleSizeB = (bits + 7) / 8
	par.maskB = 0xff >> uint(8*par.sampleSizeB-bits)
	par.boundB = bigToLE(bound, par.sampleSizeB)
}

// deriveBasis finds affine generators PA, PB of the 2^e2- and
// 3^e3-torsion of E_0(GF(p)) : y^2 = x^3 + x. The 2-Sylow subgroup of
// E_0(GF(p)) is cyclic (x^2 + 1 has no root mod p), so such generators
// exist; a small x-coordinate times the complementary cofactor hits one
// with probability about 1/2 per candidate. All data here is public.
func (par *Parameters) deriveBasis() error {
	cofA := bigToLE(new(big.Int).Exp(big.NewInt(3), big.NewInt(int64(par.e3)), nil), 0)
	cofB := bigToLE(new(big.Int).Lsh(big.NewInt(1), uint(par.e2)), 0)
	orderB := bigToLE(new(big.Int).Exp(big.NewInt(3), big.NewInt(int64(par.e3-1)), nil), 0)

	var err error
	par.xPA, par.yPA, err = par.findTorsionGenerator(cofA, par.hasFullOrderA)
	if err != nil {
		return fmt.Errorf("sidh: 2-power basis: %w", err)
	}
	par.xPB, par.yPB, err = par.findTorsionGenerator(cofB, func(x fp.Element) bool {
		pt := par.op.NewPrimeFieldPoint()
		copy(pt.X, x)
		par.fp.One(pt.Z)
		xm, _ := par.op.ScalarMultPrimeField(&pt, orderB)
		return fp.IsZero(xm.Z) == 0
	})
	if err != nil {
		return fmt.Errorf("sidh: 3-power basis: %w", err)
	}
	return nil
}

func (par *Parameters) hasFullOrderA(x fp.Element) bool {
	pt := par.op.NewPrimeFieldPoint()
	copy(pt.X, x)
	par.fp.One(pt.Z)
	two := []byte{2}
	for i := 0; i < par.e2-1; i++ {
		xm, _ := par.op.ScalarMultPrimeField(&pt, two)
		copy(pt.X, xm.X)
		copy(pt.Z, xm.Z)
	}
	if fp.IsZero(pt.Z) == 1 {
		return false
	}
	// one more doubling must reach the identity
	xm, _ := par.op.ScalarMultPrimeField(&pt, two)
	return fp.IsZero(xm.Z) == 1
}

// findTorsionGenerator scans small affine x-coordinates on the base
// curve, multiplies by the cofactor with y-recovery, and returns the
// first result passing the order check.
func (par *Parameters) findTorsionGenerator(cofactor []byte, hasFullOrder func(x fp.Element) bool) (fp.Element, fp.Element, error) {
	f := par.fp
	op := par.op
	x, rhs, y := f.NewElement(), f.NewElement(), f.NewElement()
	for cand := uint64(2); cand < 1000; cand++ {
		f.SetUint64(x, cand)
		f.SquareMod(rhs, x)
		f.One(y)
		f.AddMod(rhs, rhs, y)
		f.MulMod(rhs, rhs, x) // x^3 + x
		if fp.IsZero(rhs) == 1 || !f.IsSquare(rhs) {
			continue
		}
		f.Sqrt(y, rhs)

		pt := op.NewPrimeFieldPoint()
		copy(pt.X, x)
		f.One(pt.Z)
		xm, xm1 := op.ScalarMultPrimeField(&pt, cofactor)
		X, Y, Z := op.OkeyaSakuraiRecovery(x, y, &xm, &xm1)
		if fp.IsZero(Z) == 1 {
			continue
		}
		zinv := f.NewElement()
		f.Inv(zinv, Z)
		ax, ay := f.NewElement(), f.NewElement()
		f.MulMod(ax, X, zinv)
		f.MulMod(ay, Y, zinv)
		if !onBaseCurve(f, ax, ay) || !hasFullOrder(ax) {
			continue
		}
		return ax, ay, nil
	}
	return nil, nil, fmt.Errorf("no generator among small x-coordinates")
}

func onBaseCurve(f *fp.Field, x, y fp.Element) bool {
	lhs, rhs := f.NewElement(), f.NewElement()
	f.SquareMod(lhs, y)
	f.SquareMod(rhs, x)
	f.MulMod(rhs, rhs, x)
	f.AddMod(rhs, rhs, x)
	return f.Equal(lhs, rhs)
}

// bigToLE encodes v as little-endian bytes. If size is 0, the minimal
// length is used; otherwise the output is zero-padded to size bytes.
func bigToLE(v *big.Int, size int) []byte {
	be := v.Bytes()
	if size == 0 {
		size = len(be)
	}
	le := make([]byte, size)
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	return le
}

// Name returns the name of the parameter set.
func (par *Parameters) Name() string { return par.lit.Name }

// PublicKeySize returns the byte size of an encoded public key, three
// GF(p^2) elements.
func (par *Parameters) PublicKeySize() int { return 3 * par.fp2.Size() }

// SharedSecretSize returns the byte size of the shared secret, one
// encoded j-invariant.
func (par *Parameters) SharedSecretSize() int { return par.fp2.Size() }

// ScalarSize returns the byte size of a private-key scalar for the
// given party.
func (par *Parameters) ScalarSize(party Party) int {
	if party == PartyA {
		return par.scalarSizeA
	}
	return par.scalarSizeB
}

// Equal reports whether the two Parameters were built from the same
// literal.
func (par *Parameters) Equal(other *Parameters) bool {
	return other != nil && cmp.Equal(par.lit, other.lit)
}

// GetLiteral returns the literal this parameter set was built from.
func (par *Parameters) GetLiteral() ParametersLiteral { return par.lit }
