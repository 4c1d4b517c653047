package state

import (
	"fmt"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// ProposeBlock validates the block's merkle root and adds it to the index.
// When the block is accepted the transactions it carries leave the pool and
// blocks that can no longer parent a new block are evicted.
func (s *State) ProposeBlock(block database.Block) error {
	if err := block.ValidateTransRoot(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addBlock(block)
}

// CreateBlock assembles a block on top of the tip from the valid
// transactions in the pool, paying the reward to the beneficiary, and adds
// it to the index.
func (s *State) CreateBlock() (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.chain.TransactionPool()
	if pool.Count() == 0 {
		return database.Block{}, ErrEmptyPool
	}

	valid, _ := s.txHandler.HandleTxs(s.chain.MaxHeightUTXOPool(), pool.Copy())
	if len(valid) == 0 {
		return database.Block{}, ErrEmptyPool
	}

	coinbase := database.NewCoinbaseTx(s.reward, s.beneficiary)

	block, err := database.NewBlock(s.chain.MaxHeightBlock().Hash(), coinbase, valid)
	if err != nil {
		return database.Block{}, fmt.Errorf("assembling block: %w", err)
	}

	if err := s.addBlock(block); err != nil {
		return database.Block{}, fmt.Errorf("adding assembled block: %w", err)
	}

	return block, nil
}

// addBlock performs the add, the caller must hold the lock. The pool only
// changes when the block becomes the tip. A block on a side branch leaves
// its transactions pooled since they are still unspent on the tip.
func (s *State) addBlock(block database.Block) error {
	if err := s.chain.AddBlock(block); err != nil {
		return err
	}

	var removed, stale int
	if s.chain.MaxHeightBlock().Hash() == block.Hash() {
		removed = s.chain.TransactionPool().DeleteIncluded(block)
		stale = s.evictSpent()
	}
	evicted := s.chain.Prune()

	s.evHandler("state: addBlock: blk[%s]: pool removed[%d]: stale[%d]: evicted[%d]", block.Hash(), removed, stale, evicted)

	return nil
}

// evictSpent removes pooled transactions that claim an output no longer
// unspent on the tip. The caller must hold the lock.
func (s *State) evictSpent() int {
	utxos := s.chain.MaxHeightUTXOPool()
	pool := s.chain.TransactionPool()

	var stale int
	for _, tx := range pool.Copy() {
		for _, in := range tx.Inputs {
			if !utxos.Contains(in.UTXO()) {
				s.evHandler("state: evictSpent: tx[%s]: utxo[%s] spent on tip", tx, in.UTXO())
				pool.Delete(tx.Hash())
				stale++
				break
			}
		}
	}

	return stale
}
