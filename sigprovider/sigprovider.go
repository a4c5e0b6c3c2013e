// Package sigprovider is the pure signing/verification surface sitting on
// top of a derived DKG key set: partial signatures, their threshold
// reconstruction into a quorum signature, and verification of all three
// signature kinds named in spec.md §4.4.
package sigprovider

import (
	"encoding/binary"

	"github.com/drand/kyber/pairing"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/sign/bls"
	"github.com/drand/kyber/sign/tbls"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/ordered"
)

// Kind selects which signature role is being verified (spec.md §4.4).
type Kind int

const (
	Partial Kind = iota
	Threshold
	ChainLock
)

// Provider wraps the quorum key material a DKG session derived and exposes
// the three pure signing/verification operations of spec.md §4.4. A Provider
// with a nil SecretKeyShare can still verify; it cannot sign.
type Provider struct {
	suite          pairing.Suite
	groupPublicKey *share.PubPoly
	secretKeyShare *share.PriShare
	threshold      int
	committeeSize  int
}

// NewProvider builds a Provider from a completed (or partially completed)
// DKG session's outputs.
func NewProvider(suite pairing.Suite, groupPublicKey *share.PubPoly, secretKeyShare *share.PriShare, threshold, committeeSize int) *Provider {
	return &Provider{
		suite:          suite,
		groupPublicKey: groupPublicKey,
		secretKeyShare: secretKeyShare,
		threshold:      threshold,
		committeeSize:  committeeSize,
	}
}

// GeneratePartialSignature signs payloadHash with this node's secret key
// share, producing a 96-byte BLS signature on G2.
func (p *Provider) GeneratePartialSignature(payloadHash []byte) ([]byte, error) {
	if p.secretKeyShare == nil {
		return nil, ErrMissingSecretKeyShare
	}
	scheme := bls.NewSchemeOnG2(p.suite)
	sig, err := scheme.Sign(p.secretKeyShare.V, payloadHash)
	if err != nil {
		return nil, errors.Wrap(err, "sigprovider: partial signature")
	}
	return sig, nil
}

// GenerateQuorumSignature reconstructs the full BLS signature over
// payloadHash from at least threshold partial shares, keyed by node index.
func (p *Provider) GenerateQuorumSignature(payloadHash []byte, shares *ordered.Map[uint16, []byte]) ([]byte, error) {
	if p.groupPublicKey == nil {
		return nil, ErrGroupPublicKeyMissing
	}
	if shares.Len() < p.threshold {
		return nil, ErrThresholdSignature
	}

	scheme := tbls.NewThresholdSchemeOnG2(p.suite)
	var tblsShares [][]byte
	for _, idx := range shares.Keys() {
		v, _ := shares.Get(idx)
		if len(v) != block.SignatureSize {
			return nil, ErrCorruptSignatureShare
		}
		buf := make([]byte, 2+len(v))
		binary.BigEndian.PutUint16(buf, idx)
		copy(buf[2:], v)
		tblsShares = append(tblsShares, buf)
	}

	sig, err := scheme.Recover(p.groupPublicKey, payloadHash, tblsShares, p.threshold, p.committeeSize)
	if err != nil {
		return nil, errors.Wrap(err, "sigprovider: recovering quorum signature")
	}
	return sig, nil
}

// VerifySignature checks a signature of the given kind over payloadHash.
// Partial verification uses the public key share at nodeIdx; Threshold and
// ChainLock verify against the combined quorum public key.
func (p *Provider) VerifySignature(nodeIdx uint16, payloadHash, signature []byte, kind Kind) error {
	if len(signature) != block.SignatureSize {
		return ErrInvalidSignatureSize
	}
	if p.groupPublicKey == nil {
		return ErrGroupPublicKeyMissing
	}
	scheme := bls.NewSchemeOnG2(p.suite)

	switch kind {
	case Partial:
		pub := p.groupPublicKey.Eval(int(nodeIdx)).V
		return scheme.Verify(pub, payloadHash, signature)
	case Threshold, ChainLock:
		return scheme.Verify(p.groupPublicKey.Commit(), payloadHash, signature)
	default:
		return errors.Errorf("sigprovider: unknown signature kind %d", kind)
	}
}
