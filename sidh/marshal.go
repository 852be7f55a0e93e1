package sidh

import "fmt"

// Bytes returns the scalar of sk in little-endian form.
func (sk *PrivateKey) Bytes() []byte {
	return append([]byte(nil), sk.scalar...)
}

// SetBytes loads a scalar previously produced by Bytes. The input must
// be exactly ScalarSize(party) bytes; no range check is performed
// beyond the length, so only trusted encodings should be loaded.
func (sk *PrivateKey) SetBytes(data []byte) error {
	if len(data) != len(sk.scalar) {
		return fmt.Errorf("sidh: private key must be %d bytes, got %d", len(sk.scalar), len(data))
	}
	copy(sk.scalar, data)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sk *PrivateKey) UnmarshalBinary(data []byte) error {
	return sk.SetBytes(data)
}

// Bytes returns the fixed-width encoding of pk: the three affine
// x-coordinates phi(P), phi(Q), phi(Q-P) in little-endian form.
func (pk *PublicKey) Bytes() []byte {
	n := pk.params.fp2.Size()
	out := make([]byte, 3*n)
	e := pk.params.fp2
	// the buffers are sized here, encoding cannot fail
	if err := e.ToBytes(out[0:n], &pk.affineXP); err != nil {
		panic(err)
	}
	if err := e.ToBytes(out[n:2*n], &pk.affineXQ); err != nil {
		panic(err)
	}
	if err := e.ToBytes(out[2*n:3*n], &pk.affineXQmP); err != nil {
		panic(err)
	}
	return out
}

// SetBytes loads a public key previously produced by Bytes. The input
// must be exactly PublicKeySize() bytes.
func (pk *PublicKey) SetBytes(data []byte) error {
	n := pk.params.fp2.Size()
	if len(data) != 3*n {
		return fmt.Errorf("sidh: public key must be %d bytes, got %d", 3*n, len(data))
	}
	e := pk.params.fp2
	if err := e.FromBytes(&pk.affineXP, data[0:n]); err != nil {
		return err
	}
	if err := e.FromBytes(&pk.affineXQ, data[n:2*n]); err != nil {
		return err
	}
	return e.FromBytes(&pk.affineXQmP, data[2*n:3*n])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return pk.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	return pk.SetBytes(data)
}
