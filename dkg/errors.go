package dkg

import "github.com/pkg/errors"

// Sentinel errors for the DKG state machine's preconditions (spec.md §4.3
// "Preconditions and errors").
var (
	ErrNotEnoughPeerPublicKeys   = errors.New("dkg: peer public key set does not match the expected committee size")
	ErrInvalidNode               = errors.New("dkg: only harvester nodes may run a keygen session")
	ErrPartMsgMissingForNode     = errors.New("dkg: no part stored for sender")
	ErrPartMsgAlreadyAcknowledge = errors.New("dkg: part already acknowledged for this sender")
	ErrObserverNotAllowed        = errors.New("dkg: observer-only outcome is not allowed")
	ErrNotEnoughPartsCompleted   = errors.New("dkg: session is not certified")
	ErrInvalidStateTransition    = errors.New("dkg: operation not valid from the current state")
)
