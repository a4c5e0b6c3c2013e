// Package dkg runs the synchronous distributed key generation session
// described in spec.md §4.3: a fixed committee of harvesters jointly derives
// a BLS12-381 quorum key and a secret share per member, using kyber's
// Pedersen DKG over the group backing 96-byte (G2) threshold signatures.
package dkg

import (
	"github.com/drand/kyber"
	"github.com/drand/kyber/pairing"
	"github.com/drand/kyber/share"
	pedersen "github.com/drand/kyber/share/dkg/pedersen"
	"github.com/pkg/errors"

	"sync"
)

// Suite is the pairing suite the session runs over. Its G1 group carries the
// committee's long-term and distributed keys; its G2 group carries the
// 96-byte signatures produced once keys are derived (spec.md §4.4), matching
// drand's "pedersen-bls-chained" scheme convention.
type Suite = pairing.Suite

// NodeType gates who may initiate a keygen session (spec.md §4.3
// "node_type == Harvester").
type NodeType int

const (
	NodeHarvester NodeType = iota
	NodeOther
)

// State is a node's position in the synchronous DKG state machine.
type State int

const (
	StateInit State = iota
	StatePartBroadcast
	StateAckBroadcast
	StateReady
	StateKeysDerived
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StatePartBroadcast:
		return "PartBroadcast"
	case StateAckBroadcast:
		return "AckBroadcast"
	case StateReady:
		return "Ready"
	case StateKeysDerived:
		return "KeysDerived"
	default:
		return "Unknown"
	}
}

// Part is the commitment a node broadcasts after starting a session: one
// Pedersen deal per recipient in the committee, keyed by recipient index.
// Real transports still deliver each entry point-to-point since a deal is
// only decipherable by its addressee, but the protocol step that produces
// them is the single "Part" emission of spec.md §4.3's table.
type Part struct {
	SenderIndex uint32
	Deals       map[uint32]*pedersen.Deal
}

// Ack is the acknowledgement a node broadcasts after validating a peer's
// deal, or relays onward after receiving one from another handler.
type Ack struct {
	HandlerIndex uint32
	SenderIndex  uint32
	Response     *pedersen.Response
}

type ackKey struct{ handler, sender uint32 }

// Engine runs one DKG session for a single committee member.
type Engine struct {
	mu sync.Mutex

	state      State
	nodeType   NodeType
	nodeIdx    uint32
	upperBound int

	suite          Suite
	priv           kyber.Scalar
	peerPublicKeys []kyber.Point
	threshold      int

	gen *pedersen.DistKeyGenerator

	partStore map[uint32]*pedersen.Deal
	ackStore  map[ackKey]*pedersen.Response

	publicKeySet   *share.PubPoly
	secretKeyShare *share.PriShare
}

// NewEngine constructs a session for one committee member. upperBound is the
// expected committee size; generate_sync_keygen rejects a peer set of any
// other length (spec.md §4.3). The session carries no clock or wall-time
// state, but its secret polynomial is drawn from a random stream, so
// replaying the same (priv, peerPublicKeys, threshold) inputs does not
// reproduce the same keys.
func NewEngine(suite Suite, priv kyber.Scalar, peerPublicKeys []kyber.Point, nodeIdx uint32, nodeType NodeType, upperBound int) *Engine {
	return &Engine{
		state:          StateInit,
		nodeType:       nodeType,
		nodeIdx:        nodeIdx,
		upperBound:     upperBound,
		suite:          suite,
		priv:           priv,
		peerPublicKeys: peerPublicKeys,
		partStore:      make(map[uint32]*pedersen.Deal),
		ackStore:       make(map[ackKey]*pedersen.Response),
	}
}

// State reports the engine's current position in the state machine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// GenerateSyncKeygen transitions Init -> PartBroadcast, constructing the
// underlying DKG session and returning this node's Part commitment.
func (e *Engine) GenerateSyncKeygen(threshold int) (*Part, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInit {
		return nil, errors.Wrapf(ErrInvalidStateTransition, "generate_sync_keygen from %s", e.state)
	}
	if len(e.peerPublicKeys) != e.upperBound {
		return nil, ErrNotEnoughPeerPublicKeys
	}
	if e.nodeType != NodeHarvester {
		return nil, ErrInvalidNode
	}

	gen, err := pedersen.NewDistKeyGenerator(e.suite.G1(), e.priv, e.peerPublicKeys, threshold)
	if err != nil {
		return nil, errors.Wrap(err, "dkg: constructing session")
	}
	deals, err := gen.Deals()
	if err != nil {
		return nil, errors.Wrap(err, "dkg: generating deals")
	}

	e.gen = gen
	e.threshold = threshold
	e.state = StatePartBroadcast

	out := make(map[uint32]*pedersen.Deal, len(deals))
	for idx, d := range deals {
		out[uint32(idx)] = d
	}
	return &Part{SenderIndex: e.nodeIdx, Deals: out}, nil
}

// ReceivePart stores the slice of an incoming Part addressed to this node.
func (e *Engine) ReceivePart(part *Part) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePartBroadcast {
		return errors.Wrapf(ErrInvalidStateTransition, "receive part from %s", e.state)
	}
	deal, ok := part.Deals[e.nodeIdx]
	if !ok {
		return errors.New("dkg: part carries no deal for this node")
	}
	e.partStore[part.SenderIndex] = deal
	return nil
}

// AckPartialCommitment processes the stored deal from senderIdx and
// transitions PartBroadcast -> AckBroadcast, returning the Ack to broadcast.
func (e *Engine) AckPartialCommitment(senderIdx uint32) (*Ack, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePartBroadcast && e.state != StateAckBroadcast {
		return nil, errors.Wrapf(ErrInvalidStateTransition, "ack_partial_commitment from %s", e.state)
	}
	deal, ok := e.partStore[senderIdx]
	if !ok {
		return nil, ErrPartMsgMissingForNode
	}
	key := ackKey{handler: e.nodeIdx, sender: senderIdx}
	if _, exists := e.ackStore[key]; exists {
		return nil, ErrPartMsgAlreadyAcknowledge
	}

	resp, err := e.gen.ProcessDeal(deal)
	if err != nil {
		// Invalid Part outcomes surface the fault reason verbatim.
		return nil, err
	}
	if resp == nil {
		return nil, ErrObserverNotAllowed
	}

	e.ackStore[key] = resp
	e.state = StateAckBroadcast
	return &Ack{HandlerIndex: e.nodeIdx, SenderIndex: senderIdx, Response: resp}, nil
}

// ReceiveAck folds an incoming Ack into the session's response tally.
func (e *Engine) ReceiveAck(ack *Ack) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAckBroadcast {
		return errors.Wrapf(ErrInvalidStateTransition, "receive ack from %s", e.state)
	}
	key := ackKey{handler: ack.HandlerIndex, sender: ack.SenderIndex}
	if _, exists := e.ackStore[key]; exists {
		return nil
	}
	e.ackStore[key] = ack.Response
	if ack.HandlerIndex == e.nodeIdx {
		return nil
	}
	if _, err := e.gen.ProcessResponse(ack.Response); err != nil {
		return err
	}
	return nil
}

// HandleAckMessages transitions AckBroadcast -> Ready once every stored ack
// has been folded into the session.
func (e *Engine) HandleAckMessages() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateAckBroadcast {
		return errors.Wrapf(ErrInvalidStateTransition, "handle_ack_messages from %s", e.state)
	}
	e.state = StateReady
	return nil
}

// GenerateKeySets transitions Ready -> KeysDerived, deriving this node's
// secret key share and the group's public key set.
func (e *Engine) GenerateKeySets() (*share.PubPoly, *share.PriShare, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateReady {
		return nil, nil, errors.Wrapf(ErrInvalidStateTransition, "generate_key_sets from %s", e.state)
	}
	if !e.gen.Certified() && !e.gen.ThresholdCertified() {
		return nil, nil, ErrNotEnoughPartsCompleted
	}
	dks, err := e.gen.DistKeyShare()
	if err != nil {
		return nil, nil, errors.Wrap(err, "dkg: deriving distributed key share")
	}

	e.secretKeyShare = dks.Share
	e.publicKeySet = share.NewPubPoly(e.suite.G1(), nil, dks.Commits)
	e.state = StateKeysDerived
	return e.publicKeySet, e.secretKeyShare, nil
}

// PublicKeySet returns the derived group public key polynomial, once
// available.
func (e *Engine) PublicKeySet() *share.PubPoly {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.publicKeySet
}

// SecretKeyShare returns this node's derived secret key share, once
// available.
func (e *Engine) SecretKeyShare() *share.PriShare {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.secretKeyShare
}

// GroupPublicKey returns the combined quorum public key, once derived.
func (e *Engine) GroupPublicKey() kyber.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.publicKeySet == nil {
		return nil
	}
	return e.publicKeySet.Commit()
}
