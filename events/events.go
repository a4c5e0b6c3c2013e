// Package events defines the inbound/outbound event envelopes that cross the
// network-layer boundary (spec.md §6) and the actor mailbox contract each
// core component runs behind (spec.md §5).
package events

import (
	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/dkg"
	"github.com/dagchain/corenode/thor"
)

// Inbound events, consumed from the network layer.

// BlockReceived carries a block gossiped by a peer, of any of the three
// shapes.
type BlockReceived struct {
	Block block.Block
}

// BlockCertificateCreated carries a quorum certificate ready to attach to a
// pending convergence block.
type BlockCertificateCreated struct {
	Certificate *block.Certificate
}

// PartCommitmentCreated carries one peer's DKG Part broadcast.
type PartCommitmentCreated struct {
	NodeID string
	Part   *dkg.Part
}

// PartCommitmentAcknowledged carries one peer's Ack of another's Part.
type PartCommitmentAcknowledged struct {
	NodeID   string
	SenderID string
	Ack      *dkg.Ack
}

// ConvergenceBlockPartialSignComplete carries one node's partial signature
// over a convergence block's header hash.
type ConvergenceBlockPartialSignComplete struct {
	BlockHash        thor.Bytes32
	NodeIdx          uint16
	PartialSignature []byte
}

// ConvergenceBlockPrecheckRequested asks the miner to validate a candidate
// convergence block before signing it.
type ConvergenceBlockPrecheckRequested struct {
	ConvergenceBlock *block.Convergence
	BlockHeader      block.Header
}

// AssignmentToQuorumCreated carries a committee assignment for the next DKG
// round.
type AssignmentToQuorumCreated struct {
	Committee []*claim.Claim
	Threshold int
}

// QuorumPublicKey carries the combined quorum public key, serialized.
type QuorumPublicKey struct {
	PublicKey []byte
}

// Outbound events, published to the network layer.

// MineProposalBlock asks the Block Builder to produce and sign a proposal
// over ref at the given round/epoch on behalf of claim.
type MineProposalBlock struct {
	RefHash thor.Bytes32
	Round   uint64
	Epoch   uint64
	Claim   *claim.Claim
}

// BroadcastBlock asks the network layer to gossip a newly built block.
type BroadcastBlock struct {
	Block block.Block
}

// BroadcastCertificate asks the network layer to gossip a completed
// certificate.
type BroadcastCertificate struct {
	BlockHash   thor.Bytes32
	Certificate *block.Certificate
}

// BroadcastPartCommitment asks the network layer to gossip this node's Part.
type BroadcastPartCommitment struct {
	NodeID string
	Part   *dkg.Part
}

// BroadcastPartAcknowledgement asks the network layer to gossip this node's
// Ack of a peer's Part.
type BroadcastPartAcknowledgement struct {
	NodeID   string
	SenderID string
	Ack      *dkg.Ack
}
