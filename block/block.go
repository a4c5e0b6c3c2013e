// Package block implements the three-shape Block data model of spec.md §3:
// Genesis, Proposal, and Convergence blocks, their headers, certificates,
// and the hashing/signing rules that bind them together into the DAG.
package block

import "github.com/dagchain/corenode/thor"

// Kind tags which of the three block shapes a Block is.
type Kind int

const (
	KindGenesis Kind = iota
	KindProposal
	KindConvergence
)

func (k Kind) String() string {
	switch k {
	case KindGenesis:
		return "genesis"
	case KindProposal:
		return "proposal"
	case KindConvergence:
		return "convergence"
	default:
		return "unknown"
	}
}

// Block is the common surface the DAG Store needs regardless of shape: a
// content hash and the set of blocks it references.
type Block interface {
	Hash() thor.Bytes32
	References() []thor.Bytes32
	Kind() Kind
}

func (g *Genesis) Kind() Kind     { return KindGenesis }
func (p *Proposal) Kind() Kind    { return KindProposal }
func (c *Convergence) Kind() Kind { return KindConvergence }

var (
	_ Block = (*Genesis)(nil)
	_ Block = (*Proposal)(nil)
	_ Block = (*Convergence)(nil)
)
