package block

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/thor"
)

// Header is the convergence/genesis block header of spec.md §3.
type Header struct {
	Round           uint64
	Epoch           uint64
	BlockHeight     uint64
	Timestamp       uint64
	BlockSeed       thor.Seed
	NextBlockSeed   thor.Seed
	RefHashes       []thor.Bytes32
	TxHash          thor.Bytes32
	ClaimListHash   thor.Bytes32
	MinerClaim      *claim.Claim
	BlockReward     uint64
	NextBlockReward uint64
	Signature       []byte
}

type headerPayload struct {
	Round           uint64
	Epoch           uint64
	BlockHeight     uint64
	Timestamp       uint64
	BlockSeed       []byte
	NextBlockSeed   []byte
	RefHashes       []thor.Bytes32
	TxHash          thor.Bytes32
	ClaimListHash   thor.Bytes32
	MinerClaimHash  thor.Bytes32
	BlockReward     uint64
	NextBlockReward uint64
}

// SigningHash computes the hash the miner signs over: the header payload
// excluding the signature itself, in field-declaration order.
func (h *Header) SigningHash() thor.Bytes32 {
	hw := thor.NewSHA256()
	var minerHash thor.Bytes32
	if h.MinerClaim != nil {
		minerHash = h.MinerClaim.Hash
	}
	rlp.Encode(hw, headerPayload{
		Round:           h.Round,
		Epoch:           h.Epoch,
		BlockHeight:     h.BlockHeight,
		Timestamp:       h.Timestamp,
		BlockSeed:       h.BlockSeed.Bytes(),
		NextBlockSeed:   h.NextBlockSeed.Bytes(),
		RefHashes:       h.RefHashes,
		TxHash:          h.TxHash,
		ClaimListHash:   h.ClaimListHash,
		MinerClaimHash:  minerHash,
		BlockReward:     h.BlockReward,
		NextBlockReward: h.NextBlockReward,
	})
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}
