// Package txhandler validates batches of transactions against a pool of
// unspent outputs and applies the ones that are valid.
package txhandler

import (
	"errors"
	"fmt"
	"math"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// Set of validation failures reported by ValidateTx.
var (
	ErrMissingUTXO = errors.New("input claims an output that is not unspent")
	ErrDoubleClaim = errors.New("input claims an output already claimed by this transaction")
	ErrSignature   = errors.New("input signature does not match the output owner")
	ErrOverspend   = errors.New("outputs exceed inputs")
	ErrNoOutputs   = errors.New("transaction has no outputs")
)

// Handler represents the behavior the chain index needs to validate the
// transactions of a block. HandleTxs applies every acceptable transaction to
// the pool it is given and returns the accepted transactions along with the
// resulting pool. The pool passed in is owned by the handler from then on.
type Handler interface {
	HandleTxs(pool *database.UTXOPool, txs []database.Tx) ([]database.Tx, *database.UTXOPool)
}

// EventHandler defines a function that is called when events occur while
// validating transactions.
type EventHandler func(v string, args ...any)

// =============================================================================

// TxHandler is the default Handler implementation.
type TxHandler struct {
	evHandler EventHandler
}

// New constructs a transaction handler. The event handler may be nil.
func New(evHandler EventHandler) *TxHandler {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &TxHandler{
		evHandler: ev,
	}
}

// ValidateTx checks the transaction against the pool. A transaction is valid
// when every output it claims is unspent, every input is signed by the owner
// of the output it claims, no output is claimed twice and the value of the
// inputs covers the value of the outputs.
func (h *TxHandler) ValidateTx(pool *database.UTXOPool, tx database.Tx) error {
	if len(tx.Outputs) == 0 {
		return ErrNoOutputs
	}

	claimed := make(map[database.UTXO]struct{}, len(tx.Inputs))

	var totalIn uint64
	for i, in := range tx.Inputs {
		utxo := in.UTXO()

		out, exists := pool.Get(utxo)
		if !exists {
			return fmt.Errorf("input %d, utxo %s: %w", i, utxo, ErrMissingUTXO)
		}

		if _, exists := claimed[utxo]; exists {
			return fmt.Errorf("input %d, utxo %s: %w", i, utxo, ErrDoubleClaim)
		}
		claimed[utxo] = struct{}{}

		signer, err := tx.InputSigner(i)
		if err != nil {
			return fmt.Errorf("input %d: %w: %s", i, ErrSignature, err)
		}
		if signer != out.Owner {
			return fmt.Errorf("input %d, signer %s, owner %s: %w", i, signer, out.Owner, ErrSignature)
		}

		if totalIn > math.MaxUint64-out.Value {
			return fmt.Errorf("input %d: value overflow", i)
		}
		totalIn += out.Value
	}

	var totalOut uint64
	for i, out := range tx.Outputs {
		if totalOut > math.MaxUint64-out.Value {
			return fmt.Errorf("output %d: value overflow", i)
		}
		totalOut += out.Value
	}

	if totalOut > totalIn {
		return fmt.Errorf("in %d, out %d: %w", totalIn, totalOut, ErrOverspend)
	}

	return nil
}

// HandleTxs implements the Handler interface. Transactions may spend outputs
// created by other transactions in the same batch regardless of their order,
// so passes are repeated until a pass accepts nothing new. Two transactions
// claiming the same output can never both be accepted.
func (h *TxHandler) HandleTxs(pool *database.UTXOPool, txs []database.Tx) ([]database.Tx, *database.UTXOPool) {
	accepted := make([]database.Tx, 0, len(txs))
	done := make([]bool, len(txs))

	for {
		var progress bool

		for i, tx := range txs {
			if done[i] {
				continue
			}

			if err := h.ValidateTx(pool, tx); err != nil {
				h.evHandler("txhandler: HandleTxs: pending: tx[%s]: %s", tx, err)
				continue
			}

			apply(pool, tx)
			accepted = append(accepted, tx)
			done[i] = true
			progress = true
		}

		if !progress {
			break
		}
	}

	h.evHandler("txhandler: HandleTxs: accepted[%d] of [%d]", len(accepted), len(txs))

	return accepted, pool
}

// =============================================================================

// apply claims every input of the transaction and stores every output.
func apply(pool *database.UTXOPool, tx database.Tx) {
	for _, in := range tx.Inputs {
		pool.Remove(in.UTXO())
	}

	hash := tx.Hash()
	for i, out := range tx.Outputs {
		pool.Add(database.UTXO{TxHash: hash, Index: uint32(i)}, out)
	}
}
