// Package claim implements the participant identity record described in
// spec.md §3 ("Claim") and the deterministic election primitive
// (get_pointer) used by the miner's conflict resolver (§4.2).
package claim

import (
	"math/big"
	"net"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/thor"
)

// Claim is a participant's signed identity record (spec.md §3).
type Claim struct {
	PublicKey   []byte       // compressed secp256k1 public key
	Address     thor.Address // derived account address
	Endpoint    string       // network endpoint, host:port
	NodeID      string       // opaque node identifier
	Signature   []byte       // self-signature over (public_key, endpoint)
	Hash        thor.Bytes32 // 256-bit hash derived from the public key
	hashDecimal string       // cached base-10 digit string of Hash, for get_pointer
}

// New builds and self-signs a Claim for the given key pair.
func New(priv *secp256k1.PrivateKey, address thor.Address, endpoint, nodeID string) (*Claim, error) {
	if _, _, err := net.SplitHostPort(endpoint); err != nil {
		return nil, errors.Wrap(err, "claim: invalid endpoint")
	}
	pub := priv.PubKey().SerializeCompressed()
	c := &Claim{
		PublicKey: pub,
		Address:   address,
		Endpoint:  endpoint,
		NodeID:    nodeID,
		Hash:      deriveHash(pub),
	}
	sig, err := signSelf(priv, pub, endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "claim: self-signature failed")
	}
	c.Signature = sig
	return c, nil
}

// deriveHash computes the claim's 256-bit hash from its public key. Two
// distinct public keys never collide (spec.md §3 invariant) because this is
// a plain cryptographic hash of the key bytes.
func deriveHash(pubKey []byte) thor.Bytes32 {
	return thor.Sum256(pubKey)
}

func signPayload(pubKey []byte, endpoint string) thor.Bytes32 {
	hw := thor.NewSHA256()
	hw.Write(pubKey)
	hw.Write([]byte(endpoint))
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}

func signSelf(priv *secp256k1.PrivateKey, pubKey []byte, endpoint string) ([]byte, error) {
	digest := signPayload(pubKey, endpoint)
	sig := ecdsa.Sign(priv, digest[:])
	return sig.Serialize(), nil
}

// Verify checks the claim's self-signature over (public_key, endpoint).
func (c *Claim) Verify() bool {
	pub, err := secp256k1.ParsePubKey(c.PublicKey)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(c.Signature)
	if err != nil {
		return false
	}
	digest := signPayload(c.PublicKey, c.Endpoint)
	return sig.Verify(digest[:], pub)
}

// hashDigits returns the decimal digit string of the claim's hash, the base
// used by get_pointer to locate seed digits within it.
func (c *Claim) hashDigits() string {
	if c.hashDecimal == "" {
		c.hashDecimal = new(big.Int).SetBytes(c.Hash[:]).String()
	}
	return c.hashDecimal
}

// GetPointer is the deterministic election primitive from spec.md §3: treat
// Hash as a base-10 digit string; for every digit of seed, find its leftmost
// occurrence in that digit string and sum the positions. If any digit of
// seed is absent from Hash, there is no pointer for this claim under this
// seed.
func (c *Claim) GetPointer(seed uint64) *big.Int {
	digits := c.hashDigits()
	seedDigits := strconv.FormatUint(seed, 10)

	sum := new(big.Int)
	for _, d := range seedDigits {
		pos := indexOfDigit(digits, d)
		if pos < 0 {
			return nil
		}
		sum.Add(sum, big.NewInt(int64(pos)))
	}
	return sum
}

func indexOfDigit(digits string, d rune) int {
	for i, c := range digits {
		if c == d {
			return i
		}
	}
	return -1
}

// ComparePointers implements the tie-break ordering from spec.md §3 and §8
// (scenario 3): Some < None by presence, then by numeric value. It returns a
// negative number if a sorts before b (a wins), positive if b wins, 0 if tied.
func ComparePointers(a, b *big.Int) int {
	switch {
	case a != nil && b != nil:
		return a.Cmp(b)
	case a == nil && b != nil:
		return 1
	case a != nil && b == nil:
		return -1
	default:
		return 0
	}
}
