// Package account implements the account store: per-address balances,
// nonces, and storage/code pointers, backed by a Merkle-Patricia trie the
// way the teacher's state package backs account state (spec.md §1 treats
// the trie as an external collaborator, "a keyed map with a root hash").
package account

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dagchain/corenode/thor"
)

// maxDigestSetSize bounds the per-account sent/recv/stake digest lists
// (spec.md §4.5 "union the per-transaction digest sets"); unbounded growth
// would make every account update cost proportional to its full lifetime
// history.
const maxDigestSetSize = 1024

// Account is the per-address record stored in the trie.
type Account struct {
	Credits     uint64
	Debits      uint64
	Nonce       uint64
	StorageRoot thor.Bytes32
	CodeHash    thor.Bytes32
	Sent        []thor.Bytes32
	Recv        []thor.Bytes32
	Stake       []thor.Bytes32
}

// Empty reports whether the account has no recorded activity, the state a
// trie lookup returns for an address never written to.
func (a *Account) Empty() bool {
	return a.Credits == 0 && a.Debits == 0 && a.Nonce == 0 &&
		len(a.Sent) == 0 && len(a.Recv) == 0 && len(a.Stake) == 0
}

func encodeAccount(a *Account) ([]byte, error) { return rlp.EncodeToBytes(a) }

func decodeAccount(data []byte) (*Account, error) {
	a := &Account{}
	if err := rlp.DecodeBytes(data, a); err != nil {
		return nil, err
	}
	return a, nil
}

// addDigest appends d to set if absent, trimming from the front once the
// bound is exceeded so the most recent activity is always retained.
func addDigest(set []thor.Bytes32, d thor.Bytes32) []thor.Bytes32 {
	for _, existing := range set {
		if existing == d {
			return set
		}
	}
	set = append(set, d)
	if len(set) > maxDigestSetSize {
		set = set[len(set)-maxDigestSetSize:]
	}
	return set
}

func mergeDigests(a, b []thor.Bytes32) []thor.Bytes32 {
	for _, d := range b {
		a = addDigest(a, d)
	}
	return a
}
