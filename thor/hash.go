package thor

import (
	"crypto/sha256"
	"hash"
)

// NewSHA256 returns a fresh SHA-256 hasher. Every content hash in the wire
// format (§6 of the spec) is a 32-byte SHA-256 digest; callers Write the
// canonical payload then Sum into a Bytes32, the same shape the teacher uses
// for its own block-summary hashing.
func NewSHA256() hash.Hash { return sha256.New() }

// Sum256 hashes b directly and returns the digest.
func Sum256(b []byte) Bytes32 { return sha256.Sum256(b) }
