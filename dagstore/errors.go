// Package dagstore implements the append-only block DAG: referential
// integrity on insert, signature gating, pending-certificate tracking and
// traversal primitives.
package dagstore

import "github.com/pkg/errors"

// Sentinel errors returned by Store operations, matching the DAG error
// kinds enumerated alongside the component design.
var (
	ErrNonExistentReference = errors.New("dagstore: referenced block does not exist")
	ErrNonExistentSource    = errors.New("dagstore: source block does not exist")
	ErrInvalidSignature     = errors.New("dagstore: invalid block signature")
	ErrInvariantViolation   = errors.New("dagstore: DAG invariant violation")
	ErrDuplicateInsertion   = errors.New("dagstore: block already present")
	ErrRootAlreadyExists    = errors.New("dagstore: genesis already appended")
	ErrUnknownBlock         = errors.New("dagstore: unknown block hash")
	ErrThresholdNotReached  = errors.New("dagstore: signature threshold not reached")
)
