package sigprovider

import "github.com/pkg/errors"

// Sentinel errors for signing and verification failures (spec.md §4.4).
var (
	ErrMissingSecretKeyShare = errors.New("sigprovider: secret key share is absent")
	ErrThresholdSignature    = errors.New("sigprovider: not enough shares to reach threshold")
	ErrCorruptSignatureShare = errors.New("sigprovider: signature share has the wrong size")
	ErrGroupPublicKeyMissing = errors.New("sigprovider: quorum public key has not been derived")
	ErrInvalidSignatureSize  = errors.New("sigprovider: signature is not 96 bytes")
)
