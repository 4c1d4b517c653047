package gossip

import (
	"io"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/peer"
	"github.com/google/uuid"
)

// SilentNode never sends anything.
type SilentNode struct{}

// SetFollowees implements the Node interface.
func (SilentNode) SetFollowees(*peer.Set) {}

// SetPendingTransactions implements the Node interface.
func (SilentNode) SetPendingTransactions([]Transaction) {}

// SendToFollowers implements the Node interface.
func (SilentNode) SendToFollowers() []Transaction { return nil }

// ReceiveFromFollowees implements the Node interface.
func (SilentNode) ReceiveFromFollowees([]Candidate) {}

// =============================================================================

// ForgerNode sends transactions that no honest node introduced, alongside
// its own initial transactions.
type ForgerNode struct {
	random   io.Reader
	perRound int
	initial  []Transaction
}

// NewForgerNode constructs a node that fabricates perRound transactions
// every round using ids read from random.
func NewForgerNode(random io.Reader, perRound int) *ForgerNode {
	return &ForgerNode{
		random:   random,
		perRound: max(perRound, 1),
	}
}

// SetFollowees implements the Node interface.
func (f *ForgerNode) SetFollowees(*peer.Set) {}

// SetPendingTransactions implements the Node interface.
func (f *ForgerNode) SetPendingTransactions(txs []Transaction) {
	f.initial = append([]Transaction(nil), txs...)
}

// SendToFollowers implements the Node interface.
func (f *ForgerNode) SendToFollowers() []Transaction {
	out := append([]Transaction(nil), f.initial...)

	for range f.perRound {
		id, err := uuid.NewRandomFromReader(f.random)
		if err != nil {
			break
		}
		out = append(out, Transaction{ID: id})
	}

	return out
}

// ReceiveFromFollowees implements the Node interface.
func (f *ForgerNode) ReceiveFromFollowees([]Candidate) {}

// =============================================================================

// FlakyNode sends its initial transactions only on odd rounds and nothing
// on even rounds.
type FlakyNode struct {
	initial []Transaction
	round   int
}

// SetFollowees implements the Node interface.
func (f *FlakyNode) SetFollowees(*peer.Set) {}

// SetPendingTransactions implements the Node interface.
func (f *FlakyNode) SetPendingTransactions(txs []Transaction) {
	f.initial = append([]Transaction(nil), txs...)
}

// SendToFollowers implements the Node interface.
func (f *FlakyNode) SendToFollowers() []Transaction {
	f.round++
	if f.round%2 == 0 {
		return nil
	}

	return append([]Transaction(nil), f.initial...)
}

// ReceiveFromFollowees implements the Node interface.
func (f *FlakyNode) ReceiveFromFollowees([]Candidate) {}
