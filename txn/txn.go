// Package txn implements the Transaction data model from spec.md §3: a
// content-addressed transfer between accounts carrying fee shares and a
// validator vote map, plus optional storage/code pointers for contract
// deployment.
package txn

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dagchain/corenode/thor"
)

// Token identifies the asset a transaction moves.
type Token struct {
	Name string
}

// FeeShares splits a transaction's fee between the proposer that included it
// and the validators that affirmed it (spec.md §3, consumed by statemanager).
type FeeShares struct {
	ProposerShare  uint64
	ValidatorShare uint64
}

// Txn is a single transfer, content-addressed by Digest().
type Txn struct {
	Timestamp        int64
	SenderAddress    thor.Address
	SenderPublicKey  []byte
	ReceiverAddress  thor.Address
	Token            Token
	Amount           uint64
	Nonce            uint64
	Signature        []byte
	ValidatorVotes   map[thor.Address]bool // affirming validators
	Fees             FeeShares
	StoragePointer   *thor.Bytes32 // optional, for contract storage roots
	CodePointer      *thor.Bytes32 // optional, for deployed code
}

type digestBody struct {
	Timestamp       uint64 // rlp has no signed-integer encoding
	SenderAddress   thor.Address
	SenderPublicKey []byte
	ReceiverAddress thor.Address
	Token           string
	Amount          uint64
	Nonce           uint64
}

// Digest computes the content-addressed id from
// (timestamp, sender_address, sender_public_key, receiver_address, token,
// amount, nonce), per spec.md §3.
func (t *Txn) Digest() thor.Bytes32 {
	hw := thor.NewSHA256()
	rlp.Encode(hw, digestBody{
		Timestamp:       uint64(t.Timestamp),
		SenderAddress:   t.SenderAddress,
		SenderPublicKey: t.SenderPublicKey,
		ReceiverAddress: t.ReceiverAddress,
		Token:           t.Token.Name,
		Amount:          t.Amount,
		Nonce:           t.Nonce,
	})
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}

// ID is the hex-rendered digest, used as a map key across blocks.
func (t *Txn) ID() string {
	d := t.Digest()
	return d.String()
}

// AffirmingValidators returns the addresses that voted true, the set the
// state manager credits a validator-fee share to.
func (t *Txn) AffirmingValidators() []thor.Address {
	out := make([]thor.Address, 0, len(t.ValidatorVotes))
	for addr, vote := range t.ValidatorVotes {
		if vote {
			out = append(out, addr)
		}
	}
	return out
}

// IsStakeUpdate reports whether a txn carries a claim-staking side effect.
// Claim-staking is out of scope for the state manager (spec.md §4.5 step 3,
// "flagged for later"); this only exists so callers can detect and skip it.
func (t *Txn) IsStakeUpdate() bool {
	return false
}
