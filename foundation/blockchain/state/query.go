package state

import (
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// Tip returns the block at the tip of the longest chain and its height.
func (s *State) Tip() (database.Block, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.MaxHeightBlock(), s.chain.MaxHeight()
}

// UTXOs returns a copy of the unspent outputs at the tip.
func (s *State) UTXOs() *database.UTXOPool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.MaxHeightUTXOPool()
}

// Block looks up an indexed block and its height.
func (s *State) Block(hash database.Hash) (database.Block, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Block(hash)
}

// IndexSize returns the number of blocks held by the index.
func (s *State) IndexSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.Len()
}
