package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/merkle"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/signature"
)

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	PrevBlockHash Hash   `json:"prev_block_hash"` // Zero for the genesis block.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was assembled.
	TransRoot     Hash   `json:"trans_root"`      // Merkle root of the coinbase and the transactions.
}

// Block represents a group of transactions batched together with the reward
// paid to the block's creator.
type Block struct {
	Header   BlockHeader `json:"header"`
	Coinbase Tx          `json:"coinbase"`
	Trans    []Tx        `json:"trans"`
}

// NewBlock constructs a block on top of the specified previous block. Use the
// ZeroHash to construct a genesis block.
func NewBlock(prevBlockHash Hash, coinbase Tx, trans []Tx) (Block, error) {
	root, err := transRoot(coinbase, trans)
	if err != nil {
		return Block{}, err
	}

	b := Block{
		Header: BlockHeader{
			PrevBlockHash: prevBlockHash,
			TimeStamp:     uint64(time.Now().UTC().UnixNano()),
			TransRoot:     root,
		},
		Coinbase: coinbase,
		Trans:    trans,
	}

	return b, nil
}

// Hash returns the unique hash for the Block. Only the header is hashed, the
// transactions are committed to through the merkle root.
func (b Block) Hash() Hash {
	return Hash(signature.Hash(b.Header))
}

// IsGenesis reports whether the block declares no previous block.
func (b Block) IsGenesis() bool {
	return b.Header.PrevBlockHash.IsZero()
}

// ValidateTransRoot checks the merkle root in the header commits to the
// coinbase and transactions carried by the block.
func (b Block) ValidateTransRoot() error {
	root, err := transRoot(b.Coinbase, b.Trans)
	if err != nil {
		return err
	}

	if root != b.Header.TransRoot {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", root, b.Header.TransRoot)
	}

	return nil
}

// =============================================================================

func transRoot(coinbase Tx, trans []Tx) (Hash, error) {
	leaves := make([][32]byte, 0, len(trans)+1)
	leaves = append(leaves, coinbase.Hash())
	for _, tx := range trans {
		leaves = append(leaves, tx.Hash())
	}

	root, err := merkle.Root(leaves)
	if err != nil {
		return ZeroHash, err
	}

	return Hash(root), nil
}
