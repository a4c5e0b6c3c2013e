// Package thor holds the value types shared by every package in this module:
// content-addressed hashes, addresses, and the hash/seed primitives the wire
// format and the election protocol are built on.
package thor

import (
	"encoding/hex"
	"errors"
)

// Bytes32 is a 32-byte content hash (SHA-256 digest, block id, txn id, ...).
type Bytes32 [32]byte

// BytesToBytes32 converts a byte slice to a Bytes32, left-zero-padding short
// input and truncating long input, mirroring the teacher's thor.Bytes32 helpers.
func BytesToBytes32(b []byte) (h Bytes32) {
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(h[32-len(b):], b)
	return
}

// Bytes returns the digest as a byte slice.
func (h Bytes32) Bytes() []byte { return h[:] }

// IsZero tells whether the hash is the zero value.
func (h Bytes32) IsZero() bool { return h == Bytes32{} }

func (h Bytes32) String() string { return "0x" + hex.EncodeToString(h[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h Bytes32) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Bytes32) UnmarshalText(text []byte) error {
	s := string(text)
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != 32 {
		return errors.New("thor: invalid length for Bytes32")
	}
	copy(h[:], b)
	return nil
}

// Address is a 20-byte account/claim address, derived from a public key as
// the low 20 bytes of its SHA-256 digest (every content hash in this module
// is SHA-256, spec.md §6).
type Address [20]byte

// AddressFromPublicKey derives the address bound to a serialized public key.
func AddressFromPublicKey(pub []byte) Address {
	h := Sum256(pub)
	return BytesToAddress(h[12:])
}

// BytesToAddress converts b to an Address, left-zero-padding/truncating as needed.
func BytesToAddress(b []byte) (a Address) {
	if len(b) > 20 {
		b = b[len(b)-20:]
	}
	copy(a[20-len(b):], b)
	return
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }
