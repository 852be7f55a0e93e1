/*
Package isogeny provides a pure Go implementation of supersingular-isogeny
key exchange (SIDH-style ephemeral Diffie-Hellman) and the derived key
encapsulation mechanism, built on constant-time fixed-width field arithmetic
over primes of the form 2^e2*3^e3 - 1.

The arithmetic stack is layered bottom-up: package fp implements the
multiprecision digits and Montgomery modular arithmetic, package fp2 the
quadratic extension GF(p^2), package curve the x-only Montgomery-curve point
operations and the 3- and 4-isogeny construction/evaluation routines, and
package sidh the strategy-driven isogeny walks producing ephemeral public
keys and shared secrets. Package sike wraps the key exchange into an
IND-CCA key encapsulation mechanism.

All layers above fp are generic over the digit count, so the supported
parameter sets (P434, P503) share a single code path.
*/
package isogeny
