// Package genesis builds the root block of the DAG: the initial claim set
// and any pre-funded transactions, the way the teacher's genesis package
// builds a devnet chain config.
package genesis

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// DevAccount is a deterministic key pair used by devnet fixtures.
type DevAccount struct {
	PrivateKey *secp256k1.PrivateKey
	Address    thor.Address
	Claim      *claim.Claim
}

// devSeeds are fixed one-byte seeds, each placed in the last byte of a
// 32-byte private key, used to derive reproducible devnet keys; indices, not
// secrecy, matter here.
var devSeeds = [10]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

// DevAccounts returns ten deterministic accounts with self-signed claims
// over 127.0.0.1:<1000+i>, for use in tests and local devnets.
func DevAccounts() []DevAccount {
	accounts := make([]DevAccount, 0, len(devSeeds))
	for i, seed := range devSeeds {
		var buf [32]byte
		buf[31] = seed
		priv := secp256k1.PrivKeyFromBytes(buf[:])
		addr := thor.AddressFromPublicKey(priv.PubKey().SerializeCompressed())
		endpoint := fmt.Sprintf("127.0.0.1:%d", 1000+i)
		c, err := claim.New(priv, addr, endpoint, fmt.Sprintf("dev-node-%d", i))
		if err != nil {
			panic(err) // devnet fixtures are fixed inputs; a failure here is a programming error
		}
		accounts = append(accounts, DevAccount{PrivateKey: priv, Address: addr, Claim: c})
	}
	return accounts
}

// NewDevnet builds a genesis block claiming every dev account, with no
// pre-funded transactions, carrying the given timestamp.
func NewDevnet(timestamp uint64) *block.Genesis {
	accounts := DevAccounts()
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()
	for _, a := range accounts {
		claims.Set(a.Claim.Hash, a.Claim)
	}

	emptyTxns := ordered.NewMap[string, *txn.Txn]()
	g := &block.Genesis{
		Header: block.Header{
			Round:         0,
			Epoch:         0,
			BlockHeight:   0,
			Timestamp:     timestamp,
			BlockSeed:     thor.NewSeed(1),
			NextBlockSeed: thor.NewSeed(1),
			ClaimListHash: block.HashClaims(singleProposalClaims(claims)),
			TxHash:        block.HashTxns(ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()),
		},
		Claims: claims,
		Txns:   emptyTxns,
	}
	return g
}

// singleProposalClaims wraps a flat claim map under a synthetic proposal
// hash so it can reuse HashClaims, the same hashing rule a convergence block
// uses over its consolidated claim map.
func singleProposalClaims(claims *ordered.Map[thor.Bytes32, *claim.Claim]) *block.ClaimsByProposal {
	out := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()
	set := ordered.NewSet[thor.Bytes32]()
	claims.Each(func(h thor.Bytes32, _ *claim.Claim) { set.Add(h) })
	out.Set(thor.Bytes32{}, set)
	return out
}
