package state

import (
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// SubmitTransaction checks the transaction against the tip and adds it to
// the pool. Transactions that depend on other pooled transactions are
// rejected until their inputs are on chain.
func (s *State) SubmitTransaction(tx database.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.txHandler.ValidateTx(s.chain.MaxHeightUTXOPool(), tx); err != nil {
		return err
	}

	s.chain.AddTransaction(tx)
	s.evHandler("state: SubmitTransaction: tx[%s]: pool[%d]", tx, s.chain.TransactionPool().Count())

	if s.worker != nil {
		s.worker.signalAssemble()
	}

	return nil
}

// Mempool returns a copy of the transactions waiting in the pool.
func (s *State) Mempool() []database.Tx {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.chain.TransactionPool().Copy()
}
