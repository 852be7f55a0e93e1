// Package sampling implements secure and deterministic sampling of random
// bytes.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for the secure generation of random bytes.
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG is a PRNG backed by the operating system entropy source.
// It is safe for concurrent use.
type ThreadSafePRNG struct{}

// NewPRNG returns a new thread-safe PRNG.
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read fills sum with random bytes.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	return rand.Read(sum)
}

// KeyedPRNG deterministically generates a sequence of pseudo-random bytes
// from a key, using the blake2b XOF. Two KeyedPRNG instantiated with the
// same key produce the same stream.
//
// A KeyedPRNG must not be shared between goroutines: concurrent reads
// would make the produced sequence nondeterministic for a given key.
type KeyedPRNG struct {
	key []byte
	xof blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG from the given key. A nil key is
// accepted and treated as an empty key; the resulting stream is then
// predictable by anyone and only suitable for tests.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := new(KeyedPRNG)
	prng.key = append([]byte(nil), key...)
	prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	return prng, err
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *KeyedPRNG) Key() (key []byte) {
	return append([]byte(nil), prng.key...)
}

// Read fills sum with bytes from the PRNG stream.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	return io.ReadFull(prng.xof, sum)
}

// Reset resets the stream to its initial position.
func (prng *KeyedPRNG) Reset() {
	prng.xof.Reset()
}

// RandUint64 returns a uniform random uint64 from the system entropy
// source.
func RandUint64() uint64 {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b)
}
