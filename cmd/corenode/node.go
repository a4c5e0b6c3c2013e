package main

import (
	"context"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	bls12381 "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber"
	"github.com/drand/kyber/share"
	"github.com/drand/kyber/util/random"

	"github.com/dagchain/corenode/account"
	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/co"
	"github.com/dagchain/corenode/dagstore"
	"github.com/dagchain/corenode/dkg"
	"github.com/dagchain/corenode/events"
	"github.com/dagchain/corenode/genesis"
	"github.com/dagchain/corenode/mempool"
	"github.com/dagchain/corenode/miner"
	"github.com/dagchain/corenode/muxdb"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/sigprovider"
	"github.com/dagchain/corenode/statemanager"
	"github.com/dagchain/corenode/telemetry"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

var log = log15.New("pkg", "corenode")

// dkgSuite fixes the pairing used across the whole committee, matching
// sigprovider's "pedersen-bls-chained" convention.
func dkgSuite() dkg.Suite {
	return bls12381.NewBLS12381SuiteWithDST(
		[]byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_"),
		[]byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_"),
	)
}

// Node wires the five spec components into one process: a devnet committee
// running its own DKG session in-process (no p2p transport is retrieved
// alongside this spec, so the committee's messages are exchanged as direct
// function calls instead of over the wire), a dagstore-backed DAG, an
// account store, a mempool, and a ticker-driven mining loop grounded on the
// teacher's cmd/thor/solo packer loop.
type Node struct {
	cfg Config

	mux    *muxdb.MuxDB
	dag    *dagstore.Store
	accts  *account.Store
	mem    *mempool.Pool
	sm     *statemanager.Manager

	committee []genesis.DevAccount
	providers []*sigprovider.Provider // indexed the same as committee

	mailbox *events.WorkerPool

	mu          sync.Mutex
	rewardState miner.RewardState
	round       uint64
}

// NewNode assembles every component but does not start the mining loop.
func NewNode(cfg Config) (*Node, error) {
	mux, err := openMuxDB(cfg)
	if err != nil {
		return nil, err
	}

	dagDB := mux.NewStore("dag")
	dag, err := dagstore.New(dagDB)
	if err != nil {
		return nil, errors.Wrap(err, "corenode: open dag store")
	}

	acctDB := mux.NewStore("state")
	accts, err := account.New(acctDB, thor.Bytes32{})
	if err != nil {
		return nil, errors.Wrap(err, "corenode: open account store")
	}

	committee := genesis.DevAccounts()[:cfg.CommitteeSize]
	providers, err := deriveCommitteeQuorum(committee, cfg.Threshold)
	if err != nil {
		return nil, errors.Wrap(err, "corenode: derive committee quorum")
	}

	g := genesis.NewDevnet(uint64(time.Now().Unix()))
	verifyGenesis := func(*block.Certificate, thor.Bytes32) error { return nil }
	if err := dag.AppendGenesis(g, verifyGenesis); err != nil {
		return nil, errors.Wrap(err, "corenode: append genesis")
	}

	n := &Node{
		cfg:         cfg,
		mux:         mux,
		dag:         dag,
		accts:       accts,
		mem:         mempool.New(),
		sm:          statemanager.New(dag, accts, statemanager.NewTxnStore(), statemanager.NewClaimStore()),
		committee:   committee,
		providers:   providers,
		mailbox:     events.NewWorkerPool(cfg.WorkerCount, cfg.MailboxSize),
		rewardState: miner.NewRewardState(),
	}
	return n, nil
}

// deriveCommitteeQuorum runs a full n-of-n Pedersen DKG session across the
// devnet committee in-process and returns one sigprovider.Provider per
// member, all sharing the same derived quorum public key (grounded on
// sigprovider_test.go's deriveQuorum helper).
func deriveCommitteeQuorum(committee []genesis.DevAccount, threshold int) ([]*sigprovider.Provider, error) {
	n := len(committee)
	s := dkgSuite()

	privs := make([]kyber.Scalar, n)
	pubs := make([]kyber.Point, n)
	for i := range committee {
		priv := s.G1().Scalar().Pick(random.New())
		privs[i] = priv
		pubs[i] = s.G1().Point().Mul(priv, nil)
	}

	engines := make([]*dkg.Engine, n)
	for i := range engines {
		engines[i] = dkg.NewEngine(s, privs[i], pubs, uint32(i), dkg.NodeHarvester, n)
	}

	parts := make([]*dkg.Part, n)
	for i, e := range engines {
		p, err := e.GenerateSyncKeygen(threshold)
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}
	for i, e := range engines {
		for j, p := range parts {
			if j == i {
				continue
			}
			if err := e.ReceivePart(p); err != nil {
				return nil, err
			}
		}
	}
	var acks []*dkg.Ack
	for i, e := range engines {
		for j, p := range parts {
			if j == i {
				continue
			}
			ack, err := e.AckPartialCommitment(p.SenderIndex)
			if err != nil {
				return nil, err
			}
			acks = append(acks, ack)
		}
	}
	for i, e := range engines {
		for _, ack := range acks {
			if int(ack.HandlerIndex) == i {
				continue
			}
			if err := e.ReceiveAck(ack); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range engines {
		if err := e.HandleAckMessages(); err != nil {
			return nil, err
		}
	}

	providers := make([]*sigprovider.Provider, n)
	var groupKey *share.PubPoly
	for i, e := range engines {
		pub, sec, err := e.GenerateKeySets()
		if err != nil {
			return nil, err
		}
		if groupKey == nil {
			groupKey = pub
		}
		providers[i] = sigprovider.NewProvider(s, groupKey, sec, threshold, n)
	}
	return providers, nil
}

// Run drives the ticker-based mining loop until ctx is cancelled, then drains
// and stops every actor within cfg.DrainDeadline (spec.md §5 "Shutdown is
// cooperative").
func (n *Node) Run(ctx context.Context) {
	goes := &co.Goes{}
	ticker := time.NewTicker(n.cfg.BlockInterval)
	defer ticker.Stop()

	goes.Go(func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.mineRound()
			}
		}
	})

	<-ctx.Done()
	drained := make(chan struct{})
	go func() {
		n.mailbox.Close()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(n.cfg.DrainDeadline):
		log.Warn("corenode: drain deadline elapsed before certification work finished", "deadline", n.cfg.DrainDeadline)
	}
	goes.Wait()
	log.Info("corenode: shut down")
}

// mineRound advances the chain by one round: a proposer claims the current
// tip with whatever the mempool is carrying (possibly nothing, producing an
// empty proposal the way a teacher's packer keeps liveness between
// transactions), then every unreferenced proposal under the tip converges
// into one certified block, exactly as miner.BuildConvergence and
// statemanager.Manager.Apply describe.
func (n *Node) mineRound() {
	n.mu.Lock()
	round := n.round
	n.round++
	n.mu.Unlock()

	proposer := n.committee[int(round)%len(n.committee)]
	ref := n.dag.LastConfirmed()

	last, err := n.lastBlockView(ref)
	if err != nil {
		log.Warn("corenode: resolve last block", "err", err)
		return
	}

	txns := n.mem.FetchTxns(n.cfg.MempoolBatch)
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()

	p, err := miner.BuildProposal(proposer.PrivateKey, ref, last.Round+1, last.Epoch, txns, claims, proposer.Claim)
	if err != nil {
		log.Warn("corenode: build proposal", "err", err)
		return
	}
	if err := n.dag.AppendProposal(p); err != nil {
		log.Warn("corenode: append proposal", "err", err)
		return
	}

	children := n.dag.Children(ref)
	var proposals []*block.Proposal
	for _, h := range children {
		blk, err := n.dag.Get(h)
		if err != nil {
			continue
		}
		if cand, ok := blk.(*block.Proposal); ok {
			proposals = append(proposals, cand)
		}
	}
	if len(proposals) == 0 {
		return
	}

	harvester := n.committee[int(round+1)%len(n.committee)]
	n.mailbox.Submit(func() {
		n.buildAndCertifyConvergence(last, proposals, harvester)
	})
}

// lastBlockView loads the block at hash and reduces it to the subset of
// fields miner.BuildConvergence needs.
func (n *Node) lastBlockView(hash thor.Bytes32) (miner.LastBlock, error) {
	blk, err := n.dag.Get(hash)
	if err != nil {
		return miner.LastBlock{}, err
	}
	n.mu.Lock()
	rs := n.rewardState
	n.mu.Unlock()

	switch v := blk.(type) {
	case *block.Genesis:
		return miner.LastBlock{
			Hash:          hash,
			Kind:          block.KindGenesis,
			Height:        v.Header.BlockHeight,
			Round:         v.Header.Round,
			Epoch:         v.Header.Epoch,
			NextBlockSeed: v.Header.NextBlockSeed,
			BlockReward:   v.Header.NextBlockReward,
			RewardState:   rs,
		}, nil
	case *block.Convergence:
		return miner.LastBlock{
			Hash:          hash,
			Kind:          block.KindConvergence,
			Height:        v.Header.BlockHeight,
			Round:         v.Header.Round,
			Epoch:         v.Header.Epoch,
			NextBlockSeed: v.Header.NextBlockSeed,
			BlockReward:   v.Header.NextBlockReward,
			RewardState:   rs,
		}, nil
	default:
		return miner.LastBlock{}, errors.Errorf("corenode: block %s is not a valid chain tip", hash)
	}
}

// buildAndCertifyConvergence runs on the worker pool: it is CPU-bound
// (threshold signature combination, trie update) and must not block the
// mining loop's ticker goroutine (spec.md §5 "Backpressure").
func (n *Node) buildAndCertifyConvergence(last miner.LastBlock, proposals []*block.Proposal, harvester genesis.DevAccount) {
	c, nextRewardState, err := miner.BuildConvergence(harvester.PrivateKey, n.dag, last, proposals, harvester.Claim)
	if err != nil {
		log.Warn("corenode: build convergence", "err", err)
		return
	}
	if _, err := n.dag.AppendConvergence(c); err != nil {
		log.Warn("corenode: append convergence", "err", err)
		return
	}

	hash := c.Hash()
	shares := ordered.NewMap[uint16, []byte]()
	for i, p := range n.providers[:n.cfg.Threshold] {
		sig, err := p.GeneratePartialSignature(hash[:])
		if err != nil {
			log.Warn("corenode: partial signature", "node", i, "err", err)
			return
		}
		shares.Set(uint16(i), sig)
	}

	quorumSig, err := n.providers[0].GenerateQuorumSignature(hash[:], shares)
	if err != nil {
		log.Warn("corenode: recover quorum signature", "err", err)
		return
	}

	verifyCert := func(cert *block.Certificate, h thor.Bytes32) error {
		return n.providers[0].VerifySignature(0, h[:], cert.Signature, sigprovider.ChainLock)
	}

	cert := &block.Certificate{Signature: quorumSig, CurrentRoot: n.accts.Root()}
	if err := n.dag.AttachCertificate(hash, cert, verifyCert); err != nil {
		log.Warn("corenode: attach certificate", "err", err)
		return
	}

	root, applyErrs, err := n.sm.Apply(c)
	if err != nil {
		log.Warn("corenode: apply convergence", "err", err)
		return
	}
	for _, e := range applyErrs {
		if e != nil {
			log.Warn("corenode: per-account apply error", "err", e)
		}
	}

	// cert is the same pointer AttachCertificate stored on the vertex, so
	// this folds the post-apply root in without a second attach (which
	// would double-count the block in the confirmed chain).
	cert.NextRoot = root

	n.mu.Lock()
	n.rewardState = nextRewardState
	n.mu.Unlock()

	log.Info("corenode: converged", "height", c.Header.BlockHeight, "root", root.String())
}

// SubmitTransaction hands t to the mempool for inclusion in a future
// proposal. The network layer that would normally validate and forward a
// transaction before this call is out of scope (spec.md §1 Non-goals).
func (n *Node) SubmitTransaction(t *txn.Txn) {
	n.mem.Add(t)
}

func (n *Node) Close() error {
	return n.mux.Close()
}

func initTelemetry(cfg Config) {
	telemetry.InitializePrometheus()
	if cfg.MetricsAddr == "" {
		return
	}
	mux := newMetricsServeMux()
	go func() {
		if err := serveMetrics(cfg.MetricsAddr, mux); err != nil {
			log.Warn("corenode: metrics server stopped", "err", err)
		}
	}()
}
