package block

import (
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// Genesis is the root block of the DAG: a header plus the initial claim set
// and any pre-funded transactions (spec.md §3 "Genesis").
type Genesis struct {
	Header      Header
	Claims      *ordered.Map[thor.Bytes32, *claim.Claim]
	Txns        *ordered.Map[string, *txn.Txn]
	Certificate *Certificate
}

// Hash is the genesis block's content hash over its header payload.
func (g *Genesis) Hash() thor.Bytes32 { return g.Header.SigningHash() }

// References returns nil: the genesis block references nothing.
func (g *Genesis) References() []thor.Bytes32 { return nil }

// IsCertified reports whether a quorum certificate has been attached.
func (g *Genesis) IsCertified() bool { return g.Certificate.Valid() }
