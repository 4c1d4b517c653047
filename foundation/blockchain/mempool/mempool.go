// Package mempool maintains the pool of transactions that have not been
// included in a block yet.
package mempool

import (
	"bytes"
	"slices"
	"sync"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// Mempool represents a cache of transactions keyed by transaction hash.
type Mempool struct {
	pool map[database.Hash]database.Tx
	mu   sync.RWMutex
}

// New constructs a new, empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[database.Hash]database.Tx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add adds a transaction to the pool. Adding the same transaction twice
// leaves a single entry. The new size of the pool is returned.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.Hash()] = tx

	return len(mp.pool)
}

// Get returns the transaction for the specified hash.
func (mp *Mempool) Get(hash database.Hash) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	tx, exists := mp.pool[hash]
	return tx, exists
}

// Delete removes a transaction from the pool.
func (mp *Mempool) Delete(hash database.Hash) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, hash)
}

// DeleteIncluded removes every transaction carried by the block and returns
// how many were removed.
func (mp *Mempool) DeleteIncluded(block database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for _, tx := range block.Trans {
		hash := tx.Hash()
		if _, exists := mp.pool[hash]; exists {
			delete(mp.pool, hash)
			removed++
		}
	}

	return removed
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[database.Hash]database.Tx)
}

// Copy returns the transactions in the pool ordered by hash.
func (mp *Mempool) Copy() []database.Tx {
	type keyed struct {
		hash database.Hash
		tx   database.Tx
	}

	mp.mu.RLock()
	list := make([]keyed, 0, len(mp.pool))
	for hash, tx := range mp.pool {
		list = append(list, keyed{hash: hash, tx: tx})
	}
	mp.mu.RUnlock()

	slices.SortFunc(list, func(a, b keyed) int {
		return bytes.Compare(a.hash[:], b.hash[:])
	})

	trans := make([]database.Tx, len(list))
	for i, k := range list {
		trans[i] = k.tx
	}

	return trans
}
