package sidh

import (
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/quantumsafe/isogeny/utils/sampling"
	"github.com/stretchr/testify/require"
)

var testLiterals = []ParametersLiteral{P434, P503}

// parameter derivation is shared across tests, it involves a few
// hundred ladder steps
var (
	paramsCache   = map[string]*Parameters{}
	paramsCacheMu sync.Mutex
)

func testParams(t *testing.T, lit ParametersLiteral) *Parameters {
	paramsCacheMu.Lock()
	defer paramsCacheMu.Unlock()
	if par, ok := paramsCache[lit.Name]; ok {
		return par
	}
	par, err := NewParametersFromLiteral(lit)
	require.NoError(t, err)
	paramsCache[lit.Name] = par
	return par
}

func testString(opname string, par *Parameters) string {
	return fmt.Sprintf("%s/%s", opname, par.Name())
}

func TestSIDH(t *testing.T) {
	for _, lit := range testLiterals {
		par := testParams(t, lit)

		testParameterValidation(par, t)
		testScalarSampling(par, t)
		testKeyExchange(par, t)
		testDeterministicKeys(par, t)
		testKeyEncoding(par, t)
	}
}

func TestParametersLiteralErrors(t *testing.T) {
	_, err := NewParametersFromLiteral(ParametersLiteral{Name: "bad", P: "zz", E2: 4, E3: 3})
	require.Error(t, err)

	_, err = NewParametersFromLiteral(ParametersLiteral{Name: "odd", P: P434.P, E2: 215, E3: 137})
	require.Error(t, err)

	// modulus inconsistent with the exponents
	_, err = NewParametersFromLiteral(ParametersLiteral{Name: "mix", P: P434.P, E2: P503.E2, E3: P503.E3})
	require.Error(t, err)
}

func testParameterValidation(par *Parameters, t *testing.T) {
	t.Run(testString("Parameters", par), func(t *testing.T) {
		require.Equal(t, 3*par.fp2.Size(), par.PublicKeySize())
		require.Equal(t, par.fp2.Size(), par.SharedSecretSize())
		require.True(t, par.Equal(par))

		other := testParams(t, P434)
		if par.Name() != "P434" {
			require.False(t, par.Equal(other))
		}

		// the torsion generators lie on the base curve
		require.True(t, onBaseCurve(par.fp, par.xPA, par.yPA))
		require.True(t, onBaseCurve(par.fp, par.xPB, par.yPB))

		// strategy tables are well formed
		for n := 1; n < par.maxA; n++ {
			require.GreaterOrEqual(t, par.stratA[n], 1)
			require.Less(t, par.stratA[n], max(n, 2))
		}
		for n := 1; n < par.maxB; n++ {
			require.GreaterOrEqual(t, par.stratB[n], 1)
			require.Less(t, par.stratB[n], max(n, 2))
		}
	})
}

func testScalarSampling(par *Parameters, t *testing.T) {
	t.Run(testString("Scalars", par), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("scalars"))
		require.NoError(t, err)

		for trial := 0; trial < 10; trial++ {
			skA, err := GeneratePrivateKey(par, prng, PartyA)
			require.NoError(t, err)
			a := skA.Bytes()
			require.Len(t, a, par.ScalarSize(PartyA))
			require.Zero(t, a[0]&1) // even

			aInt := leToBig(a)
			require.Less(t, aInt.BitLen(), par.e2+1)

			skB, err := GeneratePrivateKey(par, prng, PartyB)
			require.NoError(t, err)
			b := leToBig(skB.Bytes())
			require.Zero(t, new(big.Int).Mod(b, big.NewInt(3)).Sign()) // multiple of 3
			bound := new(big.Int).Exp(big.NewInt(3), big.NewInt(int64(par.e3)), nil)
			require.Negative(t, b.Cmp(bound))
		}
	})
}

func testKeyExchange(par *Parameters, t *testing.T) {
	t.Run(testString("KeyExchange", par), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("exchange"))
		require.NoError(t, err)

		skA, err := GeneratePrivateKey(par, prng, PartyA)
		require.NoError(t, err)
		skB, err := GeneratePrivateKey(par, prng, PartyB)
		require.NoError(t, err)

		pkA := skA.Public()
		pkB := skB.Public()
		require.Equal(t, PartyA, pkA.Party())
		require.Equal(t, PartyB, pkB.Party())

		ssA, err := skA.SharedSecret(pkB)
		require.NoError(t, err)
		ssB, err := skB.SharedSecret(pkA)
		require.NoError(t, err)
		require.Len(t, ssA, par.SharedSecretSize())
		require.Equal(t, ssA, ssB)

		// an unrelated key disagrees
		skA2, err := GeneratePrivateKey(par, prng, PartyA)
		require.NoError(t, err)
		ssA2, err := skA2.SharedSecret(pkB)
		require.NoError(t, err)
		require.NotEqual(t, ssA, ssA2)

		// same-party inputs are rejected
		_, err = skA.SharedSecret(pkA)
		require.Error(t, err)
	})
}

func testDeterministicKeys(par *Parameters, t *testing.T) {
	t.Run(testString("Deterministic", par), func(t *testing.T) {
		seed := []byte("deterministic key seed")
		for _, party := range []Party{PartyA, PartyB} {
			sk1, err := NewPrivateKeyFromSeed(par, seed, party)
			require.NoError(t, err)
			sk2, err := NewPrivateKeyFromSeed(par, seed, party)
			require.NoError(t, err)
			require.Equal(t, sk1.Bytes(), sk2.Bytes())
			require.Equal(t, sk1.Public().Bytes(), sk2.Public().Bytes())

			sk3, err := NewPrivateKeyFromSeed(par, []byte("another seed"), party)
			require.NoError(t, err)
			require.NotEqual(t, sk1.Bytes(), sk3.Bytes())
		}
	})
}

func testKeyEncoding(par *Parameters, t *testing.T) {
	t.Run(testString("Encoding", par), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("encoding"))
		require.NoError(t, err)

		for _, party := range []Party{PartyA, PartyB} {
			sk, err := GeneratePrivateKey(par, prng, party)
			require.NoError(t, err)
			pk := sk.Public()

			data, err := pk.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, data, par.PublicKeySize())

			pk2 := NewPublicKey(par, party)
			require.NoError(t, pk2.UnmarshalBinary(data))
			require.Equal(t, data, pk2.Bytes())

			require.Error(t, pk2.SetBytes(data[:len(data)-1]))

			skData := sk.Bytes()
			sk2 := NewPrivateKey(par, party)
			require.NoError(t, sk2.SetBytes(skData))
			require.Equal(t, skData, sk2.Bytes())
			require.Error(t, sk2.SetBytes(skData[1:]))

			// a reloaded public key still completes the exchange
			other := PartyB
			if party == PartyB {
				other = PartyA
			}
			skOther, err := GeneratePrivateKey(par, prng, other)
			require.NoError(t, err)
			ss1, err := skOther.SharedSecret(pk)
			require.NoError(t, err)
			ss2, err := skOther.SharedSecret(pk2)
			require.NoError(t, err)
			require.Equal(t, ss1, ss2)
		}
	})
}

func leToBig(le []byte) *big.Int {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	return new(big.Int).SetBytes(be)
}

func BenchmarkSIDH(b *testing.B) {
	par, err := NewParametersFromLiteral(P434)
	require.NoError(b, err)
	prng, err := sampling.NewKeyedPRNG([]byte("bench"))
	require.NoError(b, err)

	skA, _ := GeneratePrivateKey(par, prng, PartyA)
	skB, _ := GeneratePrivateKey(par, prng, PartyB)
	pkB := skB.Public()

	b.Run("PublicKeyA/P434", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = skA.Public()
		}
	})
	b.Run("SharedSecretA/P434", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = skA.SharedSecret(pkB)
		}
	})
}
