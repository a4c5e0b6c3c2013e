package thor

import "math/big"

// Seed is the 128-bit election seed carried in a block header
// (block_seed/next_block_seed, §3). Go has no native uint128, so it is
// represented as a big.Int constrained to 128 bits, the way the teacher
// represents VeChain's 256-bit score fields with a wrapped big.Int where a
// fixed-width integer type isn't available.
type Seed struct {
	v big.Int
}

// NewSeed builds a Seed from a uint64, as used for fixed seeds such as the
// genesis seed.
func NewSeed(v uint64) Seed {
	var s Seed
	s.v.SetUint64(v)
	return s
}

// SeedFromBytes interprets b as a big-endian 128-bit unsigned integer. When b
// is longer than 16 bytes only its last 16 bytes are used.
func SeedFromBytes(b []byte) Seed {
	var s Seed
	if len(b) > 16 {
		b = b[len(b)-16:]
	}
	s.v.SetBytes(b)
	return s
}

// IsZero reports whether the seed is unset. The spec requires the election
// seed to be non-zero ("Missing or zero seeds are rejected", §6).
func (s Seed) IsZero() bool { return s.v.Sign() == 0 }

// Bytes returns the big-endian byte representation of the seed.
func (s Seed) Bytes() []byte { return s.v.Bytes() }

// String returns the seed as a base-10 string.
func (s Seed) String() string { return s.v.String() }

// BigInt exposes the underlying big.Int for arithmetic.
func (s Seed) BigInt() *big.Int { return new(big.Int).Set(&s.v) }
