package sike

import (
	"fmt"
	"sync"
	"testing"

	"github.com/quantumsafe/isogeny/sidh"
	"github.com/quantumsafe/isogeny/utils/sampling"
	"github.com/stretchr/testify/require"
)

var (
	paramsCache   = map[string]*sidh.Parameters{}
	paramsCacheMu sync.Mutex
)

func testKEM(t *testing.T, lit sidh.ParametersLiteral) *KEM {
	paramsCacheMu.Lock()
	defer paramsCacheMu.Unlock()
	par, ok := paramsCache[lit.Name]
	if !ok {
		var err error
		par, err = sidh.NewParametersFromLiteral(lit)
		require.NoError(t, err)
		paramsCache[lit.Name] = par
	}
	kem, err := NewKEM(par)
	require.NoError(t, err)
	return kem
}

func testString(opname string, k *KEM) string {
	return fmt.Sprintf("%s/%s", opname, k.Params().Name())
}

func TestKEM(t *testing.T) {
	for _, lit := range []sidh.ParametersLiteral{sidh.P434, sidh.P503} {
		kem := testKEM(t, lit)

		testEncapsDecaps(kem, t)
		testImplicitRejection(kem, t)
		testPrivateKeyEncoding(kem, t)
	}
}

func TestUnknownParameterSet(t *testing.T) {
	lit := sidh.P434
	lit.Name = "P434-custom"
	par, err := sidh.NewParametersFromLiteral(lit)
	require.NoError(t, err)
	_, err = NewKEM(par)
	require.Error(t, err)
}

func testEncapsDecaps(kem *KEM, t *testing.T) {
	t.Run(testString("EncapsDecaps", kem), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("kem"))
		require.NoError(t, err)

		sk, pk, err := kem.GenerateKeyPair(prng)
		require.NoError(t, err)

		ct, ss, err := kem.Encapsulate(prng, pk)
		require.NoError(t, err)
		require.Len(t, ct, kem.CiphertextSize())
		require.Len(t, ss, kem.SharedSecretSize())

		ss2, err := kem.Decapsulate(sk, ct)
		require.NoError(t, err)
		require.Equal(t, ss, ss2)

		// distinct encapsulations yield distinct keys
		ct3, ss3, err := kem.Encapsulate(prng, pk)
		require.NoError(t, err)
		require.NotEqual(t, ct, ct3)
		require.NotEqual(t, ss, ss3)

		// encapsulating against an A-side key is rejected
		skA, err := sidh.GeneratePrivateKey(kem.Params(), prng, sidh.PartyA)
		require.NoError(t, err)
		_, _, err = kem.Encapsulate(prng, skA.Public())
		require.Error(t, err)
	})
}

func testImplicitRejection(kem *KEM, t *testing.T) {
	t.Run(testString("ImplicitRejection", kem), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("reject"))
		require.NoError(t, err)

		sk, pk, err := kem.GenerateKeyPair(prng)
		require.NoError(t, err)
		ct, ss, err := kem.Encapsulate(prng, pk)
		require.NoError(t, err)

		// flipping a bit of the masked message diverges silently
		tampered := append([]byte(nil), ct...)
		tampered[len(tampered)-1] ^= 1
		ssT, err := kem.Decapsulate(sk, tampered)
		require.NoError(t, err)
		require.NotEqual(t, ss, ssT)

		// the rejection key is deterministic for a fixed ciphertext
		ssT2, err := kem.Decapsulate(sk, tampered)
		require.NoError(t, err)
		require.Equal(t, ssT, ssT2)

		// wrong length is a format error, not a rejection
		_, err = kem.Decapsulate(sk, ct[:len(ct)-1])
		require.Error(t, err)
	})
}

func testPrivateKeyEncoding(kem *KEM, t *testing.T) {
	t.Run(testString("Encoding", kem), func(t *testing.T) {
		prng, err := sampling.NewKeyedPRNG([]byte("kem-encoding"))
		require.NoError(t, err)

		sk, pk, err := kem.GenerateKeyPair(prng)
		require.NoError(t, err)

		data := sk.Bytes()
		require.Len(t, data, kem.PrivateKeySize())

		sk2 := NewPrivateKey(kem)
		require.NoError(t, sk2.SetBytes(data))
		require.Equal(t, data, sk2.Bytes())
		require.Error(t, sk2.SetBytes(data[1:]))

		// the restored key decapsulates ciphertexts for the original
		ct, ss, err := kem.Encapsulate(prng, pk)
		require.NoError(t, err)
		ss2, err := kem.Decapsulate(sk2, ct)
		require.NoError(t, err)
		require.Equal(t, ss, ss2)
	})
}
