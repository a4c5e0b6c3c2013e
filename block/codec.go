package block

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// wire structs flatten the ordered maps used in memory into insertion-order
// slices, since the logical map's insertion order (not any sorted order) is
// part of the content hash and must round-trip through the codec unchanged.

type wireTxnEntry struct {
	ID  string
	Txn *txn.Txn
}

type wireClaimEntry struct {
	Hash  thor.Bytes32
	Claim *claim.Claim
}

type wireProposal struct {
	RefBlock  thor.Bytes32
	Round     uint64
	Epoch     uint64
	Txns      []wireTxnEntry
	Claims    []wireClaimEntry
	From      *claim.Claim
	Signature []byte
}

// EncodeProposal serializes a Proposal preserving field insertion order.
func EncodeProposal(p *Proposal) ([]byte, error) {
	w := wireProposal{RefBlock: p.RefBlock, Round: p.Round, Epoch: p.Epoch, From: p.From, Signature: p.Signature}
	p.Txns.Each(func(id string, t *txn.Txn) { w.Txns = append(w.Txns, wireTxnEntry{id, t}) })
	p.Claims.Each(func(h thor.Bytes32, c *claim.Claim) { w.Claims = append(w.Claims, wireClaimEntry{h, c}) })
	return rlp.EncodeToBytes(&w)
}

// DecodeProposal reconstructs a Proposal from its wire form.
func DecodeProposal(data []byte) (*Proposal, error) {
	var w wireProposal
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, errors.Wrap(err, "block: decode proposal")
	}
	p := &Proposal{
		RefBlock:  w.RefBlock,
		Round:     w.Round,
		Epoch:     w.Epoch,
		Txns:      ordered.NewMap[string, *txn.Txn](),
		Claims:    ordered.NewMap[thor.Bytes32, *claim.Claim](),
		From:      w.From,
		Signature: w.Signature,
	}
	for _, e := range w.Txns {
		p.Txns.Set(e.ID, e.Txn)
	}
	for _, e := range w.Claims {
		p.Claims.Set(e.Hash, e.Claim)
	}
	return p, nil
}

type wireTxnSetEntry struct {
	ProposalHash thor.Bytes32
	TxnIDs       []string
}

type wireClaimSetEntry struct {
	ProposalHash thor.Bytes32
	ClaimHashes  []thor.Bytes32
}

type wireConvergence struct {
	Header      Header
	Txns        []wireTxnSetEntry
	Claims      []wireClaimSetEntry
	Certificate *Certificate
}

// EncodeConvergence serializes a Convergence block.
func EncodeConvergence(c *Convergence) ([]byte, error) {
	w := wireConvergence{Header: c.Header, Certificate: c.Certificate}
	c.Txns.Each(func(ph thor.Bytes32, ids *ordered.Set[string]) {
		w.Txns = append(w.Txns, wireTxnSetEntry{ph, ids.Items()})
	})
	c.Claims.Each(func(ph thor.Bytes32, hashes *ordered.Set[thor.Bytes32]) {
		w.Claims = append(w.Claims, wireClaimSetEntry{ph, hashes.Items()})
	})
	return rlp.EncodeToBytes(&w)
}

// DecodeConvergence reconstructs a Convergence block from its wire form.
func DecodeConvergence(data []byte) (*Convergence, error) {
	var w wireConvergence
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, errors.Wrap(err, "block: decode convergence")
	}
	c := &Convergence{
		Header:      w.Header,
		Txns:        ordered.NewMap[thor.Bytes32, *ordered.Set[string]](),
		Claims:      ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]](),
		Certificate: w.Certificate,
	}
	for _, e := range w.Txns {
		s := ordered.NewSet[string]()
		for _, id := range e.TxnIDs {
			s.Add(id)
		}
		c.Txns.Set(e.ProposalHash, s)
	}
	for _, e := range w.Claims {
		s := ordered.NewSet[thor.Bytes32]()
		for _, h := range e.ClaimHashes {
			s.Add(h)
		}
		c.Claims.Set(e.ProposalHash, s)
	}
	return c, nil
}

type wireGenesis struct {
	Header      Header
	Claims      []wireClaimEntry
	Txns        []wireTxnEntry
	Certificate *Certificate
}

// EncodeGenesis serializes a Genesis block.
func EncodeGenesis(g *Genesis) ([]byte, error) {
	w := wireGenesis{Header: g.Header, Certificate: g.Certificate}
	g.Claims.Each(func(h thor.Bytes32, c *claim.Claim) { w.Claims = append(w.Claims, wireClaimEntry{h, c}) })
	g.Txns.Each(func(id string, t *txn.Txn) { w.Txns = append(w.Txns, wireTxnEntry{id, t}) })
	return rlp.EncodeToBytes(&w)
}

// DecodeGenesis reconstructs a Genesis block from its wire form.
func DecodeGenesis(data []byte) (*Genesis, error) {
	var w wireGenesis
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, errors.Wrap(err, "block: decode genesis")
	}
	g := &Genesis{
		Header:      w.Header,
		Claims:      ordered.NewMap[thor.Bytes32, *claim.Claim](),
		Txns:        ordered.NewMap[string, *txn.Txn](),
		Certificate: w.Certificate,
	}
	for _, e := range w.Claims {
		g.Claims.Set(e.Hash, e.Claim)
	}
	for _, e := range w.Txns {
		g.Txns.Set(e.ID, e.Txn)
	}
	return g, nil
}

// Encode serializes any Block shape, prefixing one byte identifying its Kind
// so Decode can dispatch without external type information.
func Encode(b Block) ([]byte, error) {
	var (
		payload []byte
		err     error
	)
	switch v := b.(type) {
	case *Genesis:
		payload, err = EncodeGenesis(v)
	case *Proposal:
		payload, err = EncodeProposal(v)
	case *Convergence:
		payload, err = EncodeConvergence(v)
	default:
		return nil, errors.Errorf("block: unknown block type %T", b)
	}
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(b.Kind())}, payload...), nil
}

// Decode reconstructs a Block from its tagged wire form.
func Decode(data []byte) (Block, error) {
	if len(data) == 0 {
		return nil, errors.New("block: empty encoding")
	}
	kind, payload := Kind(data[0]), data[1:]
	switch kind {
	case KindGenesis:
		return DecodeGenesis(payload)
	case KindProposal:
		return DecodeProposal(payload)
	case KindConvergence:
		return DecodeConvergence(payload)
	default:
		return nil, errors.Errorf("block: unknown kind tag %d", kind)
	}
}
