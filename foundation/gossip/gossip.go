// Package gossip implements round based transaction gossip among nodes that
// may be Byzantine. Honest nodes forward what they learn to their followers
// and stop trusting followees that go silent or forward transactions no
// honest node ever introduced.
package gossip

import (
	"bytes"
	"maps"
	"slices"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/peer"
	"github.com/google/uuid"
)

// EventHandler defines a function that is called when events
// occur in the processing of rounds.
type EventHandler func(v string, args ...any)

// Transaction is the unit of gossip. Only its identity matters.
type Transaction struct {
	ID uuid.UUID `json:"id"`
}

// String implements the fmt.Stringer interface for logging.
func (tx Transaction) String() string {
	return tx.ID.String()
}

// Candidate is a transaction received in a round with the followee that
// sent it.
type Candidate struct {
	Tx     Transaction
	Sender peer.ID
}

// Node is the behavior the simulator drives each round. Honest and
// adversarial nodes are dispatched through it uniformly.
type Node interface {
	SetFollowees(followees *peer.Set)
	SetPendingTransactions(txs []Transaction)
	SendToFollowers() []Transaction
	ReceiveFromFollowees(candidates []Candidate)
}

// =============================================================================

// Registry holds every transaction introduced by an honest node during one
// simulation run. It is shared by reference with every honest node of that
// run and is not safe for concurrent use.
type Registry struct {
	txs txSet
}

// NewRegistry constructs an empty registry for a new run.
func NewRegistry() *Registry {
	return &Registry{
		txs: make(txSet),
	}
}

// Register records the transactions as honestly introduced.
func (r *Registry) Register(txs ...Transaction) {
	r.txs.add(txs...)
}

// Contains reports whether the transaction was introduced by an honest node.
func (r *Registry) Contains(tx Transaction) bool {
	_, exists := r.txs[tx]
	return exists
}

// Len returns the number of registered transactions.
func (r *Registry) Len() int {
	return len(r.txs)
}

// Transactions returns the registered transactions in id order.
func (r *Registry) Transactions() []Transaction {
	return r.txs.sorted()
}

// =============================================================================

type txSet map[Transaction]struct{}

func newTxSet(txs ...Transaction) txSet {
	s := make(txSet, len(txs))
	s.add(txs...)
	return s
}

func (s txSet) add(txs ...Transaction) {
	for _, tx := range txs {
		s[tx] = struct{}{}
	}
}

func (s txSet) has(tx Transaction) bool {
	_, exists := s[tx]
	return exists
}

// sorted returns the members in id order so runs are reproducible.
func (s txSet) sorted() []Transaction {
	return slices.SortedFunc(maps.Keys(s), compareTx)
}

func compareTx(a, b Transaction) int {
	return bytes.Compare(a.ID[:], b.ID[:])
}
