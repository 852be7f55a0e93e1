package fp

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/quantumsafe/isogeny/utils/sampling"
	"github.com/stretchr/testify/require"
)

var testPrimes = []struct {
	name string
	hex  string
}{
	// 2^216 * 3^137 - 1
	{"P434", "2341f271773446cfc5fd681c520567bc65c783158aea3fdc1767ae2ffffffffffffffffffffffffffffffffffffffffffffffffffffff"},
	// 2^250 * 3^159 - 1
	{"P503", "4066f541811e1e6045c6bdda77a4d01b9bf6c87b7e7daf13085bda2211e7a0abffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"},
}

type testContext struct {
	f    *Field
	p    *big.Int
	prng sampling.PRNG
}

func testString(opname string, f *Field) string {
	return fmt.Sprintf("%s/bits=%d/nwords=%d", opname, f.BitLen(), f.NWords())
}

func genTestContext(pHex string) (*testContext, error) {
	tc := new(testContext)
	var err error
	if tc.f, err = NewField(pHex); err != nil {
		return nil, err
	}
	var ok bool
	if tc.p, ok = new(big.Int).SetString(pHex, 16); !ok {
		return nil, fmt.Errorf("cannot parse test prime")
	}
	if tc.prng, err = sampling.NewKeyedPRNG([]byte{'f', 'p'}); err != nil {
		return nil, err
	}
	return tc, nil
}

// randBig samples a uniform integer below bound.
func (tc *testContext) randBig(bound *big.Int) *big.Int {
	buf := make([]byte, len(bound.Bytes())+8)
	if _, err := tc.prng.Read(buf); err != nil {
		panic(err)
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(buf), bound)
}

// randElement samples a uniform reduced element in Montgomery form and
// returns it along with its standard-representation value.
func (tc *testContext) randElement() (Element, *big.Int) {
	v := tc.randBig(tc.p)
	e := tc.f.NewElement()
	copy(e, elementFromBig(v, tc.f.NWords()))
	tc.f.MForm(e, e)
	return e, v
}

func (tc *testContext) toBig(a Element) *big.Int {
	std := tc.f.NewElement()
	tc.f.IMForm(std, a)
	x := new(big.Int)
	for i := len(std) - 1; i >= 0; i-- {
		x.Lsh(x, 64)
		x.Or(x, new(big.Int).SetUint64(std[i]))
	}
	return x
}

func TestFp(t *testing.T) {
	for _, tp := range testPrimes {
		tc, err := genTestContext(tp.hex)
		require.NoError(t, err)

		testMultiprecision(tc, t)
		testMontgomeryRoundTrip(tc, t)
		testModularArithmetic(tc, t)
		testInvSqrt(tc, t)
		testSerialization(tc, t)
	}
}

func testMultiprecision(tc *testContext, t *testing.T) {
	n := tc.f.NWords()
	wide := new(big.Int).Lsh(big.NewInt(1), uint(64*n))

	t.Run(testString("mp/AddSub", tc.f), func(t *testing.T) {
		for trial := 0; trial < 50; trial++ {
			x, y := tc.randBig(wide), tc.randBig(wide)
			a := elementFromBig(x, n)
			b := elementFromBig(y, n)
			c := make(Element, n)

			carry := Add(c, a, b)
			sum := new(big.Int).Add(x, y)
			require.Equal(t, sum.Bit(64*n), uint(carry))
			require.Equal(t, 0, Cmp(c, elementFromBig(new(big.Int).Mod(sum, wide), n)))

			borrow := Sub(c, a, b)
			if x.Cmp(y) < 0 {
				require.Equal(t, uint64(1), borrow)
			} else {
				require.Equal(t, uint64(0), borrow)
				require.Equal(t, 0, Cmp(c, elementFromBig(new(big.Int).Sub(x, y), n)))
			}
		}
	})

	t.Run(testString("mp/Shift", tc.f), func(t *testing.T) {
		for trial := 0; trial < 50; trial++ {
			x := tc.randBig(wide)
			a := elementFromBig(x, n)
			c := make(Element, n)

			ShiftRight1(c, a)
			require.Equal(t, 0, Cmp(c, elementFromBig(new(big.Int).Rsh(x, 1), n)))

			out := ShiftLeft1(c, a)
			require.Equal(t, x.Bit(64*n-1), uint(out))
			require.Equal(t, 0, Cmp(c, elementFromBig(new(big.Int).Mod(new(big.Int).Lsh(x, 1), wide), n)))

			k := uint(trial % 64)
			ShiftLeft(c, a, k)
			require.Equal(t, 0, Cmp(c, elementFromBig(new(big.Int).Mod(new(big.Int).Lsh(x, k), wide), n)))
		}
	})

	t.Run(testString("mp/Mul", tc.f), func(t *testing.T) {
		for trial := 0; trial < 50; trial++ {
			x, y := tc.randBig(wide), tc.randBig(wide)
			a := elementFromBig(x, n)
			b := elementFromBig(y, n)
			c := make(ElementX2, 2*n)

			Mul(c, a, b)
			prod := new(big.Int).Mul(x, y)
			require.Equal(t, 0, Cmp(Element(c), elementFromBig(prod, 2*n)))
		}
	})

	t.Run(testString("mp/CmpCmovCSwap", tc.f), func(t *testing.T) {
		a := elementFromBig(tc.randBig(wide), n)
		b := elementFromBig(tc.randBig(wide), n)

		require.Equal(t, 0, Cmp(a, a))
		aa := make(Element, n)
		copy(aa, a)
		aa[0] ^= 1
		if aa[0] > a[0] {
			require.Equal(t, 1, Cmp(aa, a))
		} else {
			require.Equal(t, -1, Cmp(aa, a))
		}

		c := make(Element, n)
		copy(c, a)
		Cmov(c, b, 0)
		require.Equal(t, a, c)
		Cmov(c, b, 1)
		require.Equal(t, b, c)

		x, y := make(Element, n), make(Element, n)
		copy(x, a)
		copy(y, b)
		CSwap(x, y, 0)
		require.Equal(t, a, x)
		CSwap(x, y, 1)
		require.Equal(t, b, x)
		require.Equal(t, a, y)

		require.Equal(t, uint64(1), IsZero(make(Element, n)))
		require.Equal(t, uint64(0), IsZero(b))
	})
}

func testMontgomeryRoundTrip(tc *testContext, t *testing.T) {
	t.Run(testString("MFormRoundTrip", tc.f), func(t *testing.T) {
		n := tc.f.NWords()
		for trial := 0; trial < 50; trial++ {
			v := tc.randBig(tc.p)
			a := elementFromBig(v, n)
			m := tc.f.NewElement()
			back := tc.f.NewElement()
			tc.f.MForm(m, a)
			tc.f.IMForm(back, m)
			require.Equal(t, a, back)
		}
	})
}

func testModularArithmetic(tc *testContext, t *testing.T) {
	t.Run(testString("AddSubMulMod", tc.f), func(t *testing.T) {
		c := tc.f.NewElement()
		for trial := 0; trial < 50; trial++ {
			a, x := tc.randElement()
			b, y := tc.randElement()

			tc.f.AddMod(c, a, b)
			require.Equal(t, new(big.Int).Mod(new(big.Int).Add(x, y), tc.p), tc.toBig(c))

			tc.f.SubMod(c, a, b)
			require.Equal(t, new(big.Int).Mod(new(big.Int).Sub(x, y), tc.p), tc.toBig(c))

			tc.f.MulMod(c, a, b)
			require.Equal(t, new(big.Int).Mod(new(big.Int).Mul(x, y), tc.p), tc.toBig(c))

			tc.f.SquareMod(c, a)
			require.Equal(t, new(big.Int).Mod(new(big.Int).Mul(x, x), tc.p), tc.toBig(c))

			tc.f.Neg(c, a)
			require.Equal(t, new(big.Int).Mod(new(big.Int).Neg(x), tc.p), tc.toBig(c))
		}
	})
}

func testInvSqrt(tc *testContext, t *testing.T) {
	t.Run(testString("Inv", tc.f), func(t *testing.T) {
		c := tc.f.NewElement()
		prod := tc.f.NewElement()
		for trial := 0; trial < 10; trial++ {
			a, x := tc.randElement()
			if x.Sign() == 0 {
				continue
			}
			tc.f.Inv(c, a)
			tc.f.MulMod(prod, a, c)
			require.Equal(t, big.NewInt(1), tc.toBig(prod))
		}
	})

	t.Run(testString("Sqrt", tc.f), func(t *testing.T) {
		sq := tc.f.NewElement()
		root := tc.f.NewElement()
		check := tc.f.NewElement()
		for trial := 0; trial < 10; trial++ {
			a, _ := tc.randElement()
			tc.f.SquareMod(sq, a)
			require.True(t, tc.f.IsSquare(sq))
			tc.f.Sqrt(root, sq)
			tc.f.SquareMod(check, root)
			require.Equal(t, tc.toBig(sq), tc.toBig(check))
		}
	})
}

func testSerialization(tc *testContext, t *testing.T) {
	t.Run(testString("Bytes", tc.f), func(t *testing.T) {
		a, _ := tc.randElement()
		buf := make([]byte, tc.f.Size())
		require.NoError(t, tc.f.ToBytes(buf, a))

		b := tc.f.NewElement()
		require.NoError(t, tc.f.FromBytes(b, buf))
		require.Equal(t, a, b)

		require.Error(t, tc.f.ToBytes(buf[:len(buf)-1], a))
		require.Error(t, tc.f.FromBytes(b, append(buf, 0)))
	})
}

func BenchmarkMulMod(b *testing.B) {
	for _, tp := range testPrimes {
		tc, err := genTestContext(tp.hex)
		require.NoError(b, err)
		x, _ := tc.randElement()
		y, _ := tc.randElement()
		c := tc.f.NewElement()
		b.Run(testString("MulMod", tc.f), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				tc.f.MulMod(c, x, y)
			}
		})
	}
}
