// Package chain maintains a bounded index of recently accepted blocks, each
// paired with the unspent output pool that results from applying it, and
// tracks the tip of the longest chain.
package chain

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/txhandler"
)

// CutOffAge is how far below the current maximum height a new block may sit
// and still be accepted.
const CutOffAge = 10

// Set of reasons a block is rejected by AddBlock.
var (
	ErrGenesisBlock        = errors.New("block declares no previous block")
	ErrUnknownParent       = errors.New("previous block is not in the index")
	ErrTooOld              = errors.New("block height is below the cut off age")
	ErrInvalidTransactions = errors.New("block contains invalid transactions")
	ErrDuplicateBlock      = errors.New("block is already in the index")
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the chain index.
type Config struct {
	Genesis   database.Block
	TxHandler txhandler.Handler
	EvHandler EventHandler
}

// node is one accepted block's position in the index. Nodes are never
// changed once inserted and the pool is never handed out directly.
type node struct {
	block  database.Block
	height uint64
	utxos  *database.UTXOPool
}

// Chain is the block index. It is not safe for concurrent use; callers that
// share a Chain must serialize access.
type Chain struct {
	nodes     map[database.Hash]*node
	tip       *node
	mempool   *mempool.Mempool
	txHandler txhandler.Handler
	evHandler EventHandler
}

// New constructs a chain index holding only the trusted genesis block.
func New(cfg Config) (*Chain, error) {
	if !cfg.Genesis.IsGenesis() {
		return nil, fmt.Errorf("genesis block declares previous block %s", cfg.Genesis.Header.PrevBlockHash)
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	txh := cfg.TxHandler
	if txh == nil {
		txh = txhandler.New(txhandler.EventHandler(ev))
	}

	utxos := database.NewUTXOPool()
	utxos.ApplyCoinbase(cfg.Genesis)

	root := node{
		block:  cfg.Genesis,
		height: 0,
		utxos:  utxos,
	}

	c := Chain{
		nodes:     map[database.Hash]*node{cfg.Genesis.Hash(): &root},
		tip:       &root,
		mempool:   mempool.New(),
		txHandler: txh,
		evHandler: ev,
	}

	initMetrics()
	observeTip(&c)

	ev("chain: New: genesis[%s]", cfg.Genesis.Hash())

	return &c, nil
}

// AddBlock validates the block against the pool of its parent and, when
// valid, adds it to the index. A block that extends the index beyond the
// current maximum height becomes the new tip; at equal height the block seen
// first stays the tip. A rejected block leaves the index unchanged.
func (c *Chain) AddBlock(block database.Block) error {
	hash := block.Hash()

	if err := c.addBlock(hash, block); err != nil {
		c.evHandler("chain: AddBlock: rejected: blk[%s]: %s", hash, err)
		rejected(err)
		return err
	}

	accepted()
	observeTip(c)

	return nil
}

func (c *Chain) addBlock(hash database.Hash, block database.Block) error {
	if block.IsGenesis() {
		return ErrGenesisBlock
	}

	parent, exists := c.nodes[block.Header.PrevBlockHash]
	if !exists {
		return fmt.Errorf("parent[%s]: %w", block.Header.PrevBlockHash, ErrUnknownParent)
	}

	if _, exists := c.nodes[hash]; exists {
		return ErrDuplicateBlock
	}

	height := parent.height + 1
	if height+CutOffAge <= c.tip.height {
		return fmt.Errorf("height %d, max height %d: %w", height, c.tip.height, ErrTooOld)
	}

	c.evHandler("chain: AddBlock: validate: blk[%s]: height[%d]: numTrans[%d]", hash, height, len(block.Trans))

	// The handler takes ownership of the copy it is given so the parent's
	// pool is never touched.
	valid, utxos := c.txHandler.HandleTxs(parent.utxos.Copy(), block.Trans)
	if len(valid) != len(block.Trans) {
		return fmt.Errorf("valid %d of %d: %w", len(valid), len(block.Trans), ErrInvalidTransactions)
	}

	utxos.ApplyCoinbase(block)

	n := node{
		block:  block,
		height: height,
		utxos:  utxos,
	}
	c.nodes[hash] = &n

	if height > c.tip.height {
		c.evHandler("chain: AddBlock: new tip: blk[%s]: height[%d]", hash, height)
		c.tip = &n
	}

	return nil
}

// AddTransaction adds the transaction to the pool. Transactions are only
// validated when a block carrying them is added.
func (c *Chain) AddTransaction(tx database.Tx) {
	c.mempool.Add(tx)
}

// MaxHeightBlock returns the block at the tip of the longest chain.
func (c *Chain) MaxHeightBlock() database.Block {
	return c.tip.block
}

// MaxHeight returns the height of the tip.
func (c *Chain) MaxHeight() uint64 {
	return c.tip.height
}

// MaxHeightUTXOPool returns a copy of the pool at the tip. Changes to the
// copy do not affect the index.
func (c *Chain) MaxHeightUTXOPool() *database.UTXOPool {
	return c.tip.utxos.Copy()
}

// TransactionPool returns the shared transaction pool.
func (c *Chain) TransactionPool() *mempool.Mempool {
	return c.mempool
}

// Block looks up an indexed block by hash along with its height.
func (c *Chain) Block(hash database.Hash) (database.Block, uint64, bool) {
	n, exists := c.nodes[hash]
	if !exists {
		return database.Block{}, 0, false
	}

	return n.block, n.height, true
}

// Len returns the number of blocks held by the index.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Prune evicts every block that can no longer be the parent of an acceptable
// block and returns how many were evicted. Blocks that reference an evicted
// block are rejected as having an unknown parent.
func (c *Chain) Prune() int {
	if c.tip.height < CutOffAge {
		return 0
	}
	floor := c.tip.height - CutOffAge

	var evicted int
	for hash, n := range c.nodes {
		if n.height < floor {
			delete(c.nodes, hash)
			evicted++
		}
	}

	if evicted > 0 {
		c.evHandler("chain: Prune: evicted[%d]: floor[%d]: remaining[%d]", evicted, floor, len(c.nodes))
		observeTip(c)
	}

	return evicted
}
