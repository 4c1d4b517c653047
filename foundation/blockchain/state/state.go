// Package state is the core API for a node. It serializes access to one
// chain index and implements the node level rules around it: which
// transactions enter the pool, how blocks are assembled and when the index
// is pruned.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/chain"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/txhandler"
)

// ErrEmptyPool is returned when a block is requested but the transaction
// pool holds nothing that is valid on the tip.
var ErrEmptyPool = errors.New("no valid transactions to assemble")

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Genesis       database.Block
	Beneficiary   database.AccountID
	MiningReward  uint64
	BlockInterval time.Duration
	EvHandler     EventHandler
}

// State manages the chain index for a node.
type State struct {
	mu sync.Mutex

	beneficiary database.AccountID
	reward      uint64
	evHandler   EventHandler

	txHandler *txhandler.TxHandler
	chain     *chain.Chain

	worker *worker
}

// New constructs the node state over a new chain index and starts the block
// assembly worker when a block interval is configured.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	txh := txhandler.New(txhandler.EventHandler(ev))

	ch, err := chain.New(chain.Config{
		Genesis:   cfg.Genesis,
		TxHandler: txh,
		EvHandler: chain.EventHandler(ev),
	})
	if err != nil {
		return nil, err
	}

	s := State{
		beneficiary: cfg.Beneficiary,
		reward:      cfg.MiningReward,
		evHandler:   ev,
		txHandler:   txh,
		chain:       ch,
	}

	if cfg.BlockInterval > 0 {
		runWorker(&s, cfg.BlockInterval)
	}

	return &s, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	if s.worker != nil {
		s.worker.shutdown()
	}

	return nil
}
