package gossip

import (
	"github.com/ardanlabs/ledgersim/foundation/blockchain/peer"
)

// Config represents the configuration required to construct an honest node.
type Config struct {
	Registry  *Registry
	NumRounds int
	EvHandler EventHandler
}

// CompliantNode is an honest participant. Every round it sends what it
// learned in the previous round and records which followees misbehaved.
// A followee that is marked malicious stays marked for the whole run.
type CompliantNode struct {
	registry  *Registry
	numRounds int
	round     int
	followees *peer.Set
	malicious *peer.Set
	pending   txSet
	sent      txSet
	evHandler EventHandler
}

// NewCompliantNode constructs an honest node sharing the run's registry.
func NewCompliantNode(cfg Config) *CompliantNode {
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	return &CompliantNode{
		registry:  registry,
		numRounds: cfg.NumRounds,
		followees: peer.NewSet(0),
		malicious: peer.NewSet(0),
		pending:   make(txSet),
		sent:      make(txSet),
		evHandler: ev,
	}
}

// SetFollowees installs the peers this node listens to. It is called once
// before the first round.
func (n *CompliantNode) SetFollowees(followees *peer.Set) {
	n.followees = followees.Copy()
	n.malicious = peer.NewSet(followees.Size())
}

// SetPendingTransactions installs the node's initial transactions and
// registers them as honestly introduced.
func (n *CompliantNode) SetPendingTransactions(txs []Transaction) {
	n.pending = newTxSet(txs...)
	n.registry.Register(txs...)
}

// SendToFollowers returns the transactions pending for this round and moves
// them into the sent set. Once every round has been played the next call
// returns the whole sent set, which is the node's consensus.
func (n *CompliantNode) SendToFollowers() []Transaction {
	out := n.pending.sorted()
	n.sent.add(out...)
	n.pending = make(txSet)

	if n.round >= n.numRounds {
		return n.sent.sorted()
	}
	n.round++

	return out
}

// ReceiveFromFollowees processes the candidates sent by followees this round.
func (n *CompliantNode) ReceiveFromFollowees(candidates []Candidate) {
	senders := peer.NewSet(n.followees.Size())

	for _, c := range candidates {
		senders.Add(c.Sender)

		if !n.registry.Contains(c.Tx) {
			n.markMalicious(c.Sender, "unregistered tx %s", c.Tx)
		}
	}

	for _, id := range n.followees.Missing(senders) {
		n.markMalicious(id, "silent")
	}

	for _, c := range candidates {
		if n.malicious.Has(c.Sender) || n.sent.has(c.Tx) {
			continue
		}
		n.pending.add(c.Tx)
	}
}

// Round returns the number of rounds this node has broadcast in.
func (n *CompliantNode) Round() int {
	return n.round
}

// Sent returns every transaction the node has sent so far in id order.
func (n *CompliantNode) Sent() []Transaction {
	return n.sent.sorted()
}

// Malicious returns the followees this node has stopped trusting.
func (n *CompliantNode) Malicious() []peer.ID {
	return n.malicious.IDs()
}

func (n *CompliantNode) markMalicious(id peer.ID, reason string, args ...any) {
	if !n.malicious.Add(id) {
		return
	}

	n.evHandler("gossip: round[%d]: followee[%d] marked malicious: "+reason, append([]any{n.round, id}, args...)...)
}
