package dkg

import (
	"testing"

	bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"
)

func testSuite() Suite {
	return bls12381.NewBLS12381SuiteWithDST(
		[]byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"),
		[]byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"),
	)
}

func newCommittee(t *testing.T, n int) ([]kyber.Scalar, []kyber.Point) {
	t.Helper()
	suite := testSuite()
	privs := make([]kyber.Scalar, n)
	pubs := make([]kyber.Point, n)
	for i := 0; i < n; i++ {
		priv := suite.G1().Scalar().Pick(random.New())
		privs[i] = priv
		pubs[i] = suite.G1().Point().Mul(priv, nil)
	}
	return privs, pubs
}

// runSession drives n engines through the full Init -> KeysDerived flow and
// returns them, asserting every step succeeds.
func runSession(t *testing.T, n, threshold int) []*Engine {
	t.Helper()
	suite := testSuite()
	privs, pubs := newCommittee(t, n)

	engines := make([]*Engine, n)
	for i := 0; i < n; i++ {
		engines[i] = NewEngine(suite, privs[i], pubs, uint32(i), NodeHarvester, n)
	}

	parts := make([]*Part, n)
	for i, e := range engines {
		p, err := e.GenerateSyncKeygen(threshold)
		require.NoError(t, err)
		parts[i] = p
	}

	for _, e := range engines {
		for _, p := range parts {
			if p.SenderIndex == e.nodeIdx {
				continue
			}
			require.NoError(t, e.ReceivePart(p))
		}
	}

	var acks []*Ack
	for _, e := range engines {
		for _, p := range parts {
			if p.SenderIndex == e.nodeIdx {
				continue
			}
			ack, err := e.AckPartialCommitment(p.SenderIndex)
			require.NoError(t, err)
			acks = append(acks, ack)
		}
	}

	for _, e := range engines {
		for _, ack := range acks {
			if ack.HandlerIndex == e.nodeIdx {
				continue
			}
			require.NoError(t, e.ReceiveAck(ack))
		}
	}

	for _, e := range engines {
		require.NoError(t, e.HandleAckMessages())
	}

	return engines
}

func TestFullSessionDerivesMatchingGroupKey(t *testing.T) {
	engines := runSession(t, 4, 3)

	var groupKey kyber.Point
	for _, e := range engines {
		_, share, err := e.GenerateKeySets()
		require.NoError(t, err)
		require.NotNil(t, share)
		require.Equal(t, StateKeysDerived, e.State())

		gk := e.GroupPublicKey()
		require.NotNil(t, gk)
		if groupKey == nil {
			groupKey = gk
		} else {
			require.True(t, groupKey.Equal(gk))
		}
	}
}

func TestGenerateSyncKeygenRejectsWrongCommitteeSize(t *testing.T) {
	suite := testSuite()
	_, pubs := newCommittee(t, 3)
	e := NewEngine(suite, suite.G1().Scalar().Pick(random.New()), pubs, 0, NodeHarvester, 4)
	_, err := e.GenerateSyncKeygen(3)
	require.ErrorIs(t, err, ErrNotEnoughPeerPublicKeys)
}

func TestGenerateSyncKeygenRejectsNonHarvester(t *testing.T) {
	suite := testSuite()
	_, pubs := newCommittee(t, 3)
	e := NewEngine(suite, suite.G1().Scalar().Pick(random.New()), pubs, 0, NodeOther, 3)
	_, err := e.GenerateSyncKeygen(2)
	require.ErrorIs(t, err, ErrInvalidNode)
}

func TestAckPartialCommitmentFailsWithoutStoredPart(t *testing.T) {
	suite := testSuite()
	_, pubs := newCommittee(t, 3)
	e := NewEngine(suite, suite.G1().Scalar().Pick(random.New()), pubs, 0, NodeHarvester, 3)
	_, err := e.GenerateSyncKeygen(2)
	require.NoError(t, err)
	_, err = e.AckPartialCommitment(1)
	require.ErrorIs(t, err, ErrPartMsgMissingForNode)
}

func TestGenerateKeySetsFailsBeforeReady(t *testing.T) {
	suite := testSuite()
	_, pubs := newCommittee(t, 3)
	e := NewEngine(suite, suite.G1().Scalar().Pick(random.New()), pubs, 0, NodeHarvester, 3)
	_, _, err := e.GenerateKeySets()
	require.ErrorIs(t, err, ErrInvalidStateTransition)
}
