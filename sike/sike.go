// Package sike wraps the sidh exchange into an IND-CCA key
// encapsulation mechanism with the standard Fujisaki-Okamoto style
// transform: encapsulation keys are static B-side SIDH keys, the
// encapsulating party derives an ephemeral A-side key from the message
// by an XOF, and decapsulation re-encrypts and falls back to an
// implicit-rejection key on mismatch.
package sike

import (
	"crypto/subtle"
	"fmt"

	"github.com/quantumsafe/isogeny/sidh"
	"github.com/quantumsafe/isogeny/utils/sampling"
	"golang.org/x/crypto/sha3"
)

// messageSizes maps the named parameter sets to their message and
// session-key length n.
var messageSizes = map[string]int{
	"P434": 16,
	"P503": 24,
}

// KEM is a key encapsulation mechanism over a fixed parameter set.
// It is stateless and safe for concurrent use.
type KEM struct {
	params *sidh.Parameters
	n      int
}

// NewKEM builds a KEM over the given parameter set, which must be one
// of the named sets with a registered message size.
func NewKEM(params *sidh.Parameters) (*KEM, error) {
	n, ok := messageSizes[params.Name()]
	if !ok {
		return nil, fmt.Errorf("sike: no message size registered for parameter set %q", params.Name())
	}
	return &KEM{params: params, n: n}, nil
}

// Params returns the underlying parameter set.
func (k *KEM) Params() *sidh.Parameters { return k.params }

// SharedSecretSize returns the byte size of the session key.
func (k *KEM) SharedSecretSize() int { return k.n }

// CiphertextSize returns the byte size of a ciphertext, an A-side
// public key followed by a masked message.
func (k *KEM) CiphertextSize() int { return k.params.PublicKeySize() + k.n }

// PrivateKeySize returns the byte size of an encoded private key,
// s ‖ scalar_B ‖ pk_B.
func (k *KEM) PrivateKeySize() int {
	return k.n + k.params.ScalarSize(sidh.PartyB) + k.params.PublicKeySize()
}

// PrivateKey is a decapsulation key: the implicit-rejection secret s,
// the static B-side key, and its cached public key.
type PrivateKey struct {
	kem *KEM
	s   []byte
	sk  *sidh.PrivateKey
	pk  *sidh.PublicKey
}

// NewPrivateKey returns a zero private key ready for SetBytes.
func NewPrivateKey(k *KEM) *PrivateKey {
	return &PrivateKey{
		kem: k,
		s:   make([]byte, k.n),
		sk:  sidh.NewPrivateKey(k.params, sidh.PartyB),
		pk:  sidh.NewPublicKey(k.params, sidh.PartyB),
	}
}

// Public returns the encapsulation key.
func (sk *PrivateKey) Public() *sidh.PublicKey { return sk.pk }

// Bytes returns the fixed-width encoding s ‖ scalar_B ‖ pk_B.
func (sk *PrivateKey) Bytes() []byte {
	out := append([]byte(nil), sk.s...)
	out = append(out, sk.sk.Bytes()...)
	return append(out, sk.pk.Bytes()...)
}

// SetBytes loads a private key previously produced by Bytes.
func (sk *PrivateKey) SetBytes(data []byte) error {
	k := sk.kem
	if len(data) != k.PrivateKeySize() {
		return fmt.Errorf("sike: private key must be %d bytes, got %d", k.PrivateKeySize(), len(data))
	}
	scalarSize := k.params.ScalarSize(sidh.PartyB)
	copy(sk.s, data[:k.n])
	if err := sk.sk.SetBytes(data[k.n : k.n+scalarSize]); err != nil {
		return err
	}
	return sk.pk.SetBytes(data[k.n+scalarSize:])
}

// GenerateKeyPair generates a decapsulation key and its encapsulation
// key from prng.
func (k *KEM) GenerateKeyPair(prng sampling.PRNG) (*PrivateKey, *sidh.PublicKey, error) {
	sk := NewPrivateKey(k)
	if _, err := prng.Read(sk.s); err != nil {
		return nil, nil, fmt.Errorf("sike: sampling rejection secret: %w", err)
	}
	var err error
	sk.sk, err = sidh.GeneratePrivateKey(k.params, prng, sidh.PartyB)
	if err != nil {
		return nil, nil, err
	}
	sk.pk = sk.sk.Public()
	return sk, sk.pk, nil
}

// Encapsulate derives a fresh session key for the holder of pk,
// returning the ciphertext and the key.
func (k *KEM) Encapsulate(prng sampling.PRNG, pk *sidh.PublicKey) (ct, ss []byte, err error) {
	if pk.Party() != sidh.PartyB {
		return nil, nil, fmt.Errorf("sike: encapsulation key must belong to party B")
	}
	m := make([]byte, k.n)
	if _, err := prng.Read(m); err != nil {
		return nil, nil, fmt.Errorf("sike: sampling message: %w", err)
	}
	ct, err = k.encrypt(m, pk)
	if err != nil {
		return nil, nil, err
	}
	return ct, k.hash(m, ct), nil
}

// Decapsulate recovers the session key from ct. For malformed or
// substituted ciphertexts it returns the implicit-rejection key derived
// from s instead of an error, so a caller cannot be used as a
// re-encryption oracle.
func (k *KEM) Decapsulate(sk *PrivateKey, ct []byte) ([]byte, error) {
	if len(ct) != k.CiphertextSize() {
		return nil, fmt.Errorf("sike: ciphertext must be %d bytes, got %d", k.CiphertextSize(), len(ct))
	}
	pkSize := k.params.PublicKeySize()
	c0, c1 := ct[:pkSize], ct[pkSize:]

	ephemeral := sidh.NewPublicKey(k.params, sidh.PartyA)
	if err := ephemeral.SetBytes(c0); err != nil {
		return nil, err
	}
	j, err := sk.sk.SharedSecret(ephemeral)
	if err != nil {
		return nil, err
	}

	m := make([]byte, k.n)
	k.xof(m, j)
	for i := range m {
		m[i] ^= c1[i]
	}

	// re-encrypt and compare in constant time
	ct2, err := k.encrypt(m, sk.pk)
	if err != nil {
		return nil, err
	}
	ok := subtle.ConstantTimeCompare(ct, ct2)
	subtle.ConstantTimeCopy(1-ok, m, sk.s)
	return k.hash(m, ct), nil
}

// encrypt deterministically encrypts m under pk: the ephemeral A-side
// key is expanded from SHAKE256(m ‖ pk), and m is masked with the XOF
// of the resulting j-invariant.
func (k *KEM) encrypt(m []byte, pk *sidh.PublicKey) ([]byte, error) {
	shake := sha3.NewShake256()
	shake.Write(m)
	shake.Write(pk.Bytes())
	skE, err := sidh.GeneratePrivateKey(k.params, shake, sidh.PartyA)
	if err != nil {
		return nil, err
	}

	j, err := skE.SharedSecret(pk)
	if err != nil {
		return nil, err
	}
	mask := make([]byte, k.n)
	k.xof(mask, j)

	ct := skE.Public().Bytes()
	for i := range m {
		ct = append(ct, m[i]^mask[i])
	}
	return ct, nil
}

// hash derives the session key SHAKE256(m ‖ ct, n).
func (k *KEM) hash(m, ct []byte) []byte {
	shake := sha3.NewShake256()
	shake.Write(m)
	shake.Write(ct)
	out := make([]byte, k.n)
	shake.Read(out)
	return out
}

// xof fills dst with SHAKE256(src).
func (k *KEM) xof(dst, src []byte) {
	shake := sha3.NewShake256()
	shake.Write(src)
	shake.Read(dst)
}
