package gossip

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/peer"
	"github.com/ardanlabs/ledgersim/foundation/validate"
	"github.com/google/uuid"
)

// Set of adversary kinds a simulation can be populated with.
const (
	AdversarySilent = "silent"
	AdversaryForger = "forger"
	AdversaryFlaky  = "flaky"
	AdversaryMixed  = "mixed"
)

// SimConfig describes one simulation run.
type SimConfig struct {
	NumNodes        int          `json:"num_nodes" yaml:"num_nodes" validate:"required,min=2,max=4096"`
	PGraph          float64      `json:"p_graph" yaml:"p_graph" validate:"gt=0,lte=1"`
	PMalicious      float64      `json:"p_malicious" yaml:"p_malicious" validate:"gte=0,lt=1"`
	PTxDistribution float64      `json:"p_tx_distribution" yaml:"p_tx_distribution" validate:"gt=0,lte=1"`
	NumRounds       int          `json:"num_rounds" yaml:"num_rounds" validate:"required,min=1,max=1000"`
	NumTxs          int          `json:"num_txs" yaml:"num_txs" validate:"required,min=1,max=100000"`
	Adversary       string       `json:"adversary" yaml:"adversary" validate:"omitempty,oneof=silent forger flaky mixed"`
	Seed            uint64       `json:"seed" yaml:"seed"`
	EvHandler       EventHandler `json:"-" yaml:"-"`
}

// NodeResult is the outcome of a run for one honest node.
type NodeResult struct {
	ID        peer.ID   `json:"id"`
	Consensus int       `json:"consensus"`
	Agrees    bool      `json:"agrees"`
	Malicious []peer.ID `json:"malicious"`
}

// SimResult is the outcome of a simulation run.
type SimResult struct {
	Registered  int          `json:"registered"`
	Adversaries []peer.ID    `json:"adversaries"`
	Nodes       []NodeResult `json:"nodes"`
}

// Agreeing returns how many honest nodes ended with exactly the set of
// honestly introduced transactions.
func (r SimResult) Agreeing() int {
	var n int
	for _, nr := range r.Nodes {
		if nr.Agrees {
			n++
		}
	}

	return n
}

// Simulate builds a random follow graph, seeds the nodes with transactions
// and plays the configured number of rounds. The same configuration always
// produces the same result.
func Simulate(cfg SimConfig) (SimResult, error) {
	if err := validate.Check(cfg); err != nil {
		return SimResult{}, fmt.Errorf("validating config: %w", err)
	}

	if cfg.Adversary == "" {
		cfg.Adversary = AdversarySilent
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	source := rand.NewChaCha8(seed)
	rng := rand.New(source)

	registry := NewRegistry()

	// Pick which nodes are honest.
	nodes := make([]Node, cfg.NumNodes)
	honest := make(map[peer.ID]*CompliantNode)
	var adversaries []peer.ID

	for i := range nodes {
		id := peer.ID(i)

		if rng.Float64() < cfg.PMalicious {
			nodes[i] = newAdversary(cfg.Adversary, rng, source)
			adversaries = append(adversaries, id)
			continue
		}

		n := NewCompliantNode(Config{
			Registry:  registry,
			NumRounds: cfg.NumRounds,
		})
		nodes[i] = n
		honest[id] = n
	}

	// followers[i] holds the nodes that receive what node i sends.
	followers := make([][]peer.ID, cfg.NumNodes)

	for i := range nodes {
		followees := peer.NewSet(cfg.NumNodes)
		for j := range nodes {
			if i != j && rng.Float64() < cfg.PGraph {
				followees.Add(peer.ID(j))
				followers[j] = append(followers[j], peer.ID(i))
			}
		}
		nodes[i].SetFollowees(followees)
	}

	txs := make([]Transaction, cfg.NumTxs)
	for i := range txs {
		id, err := uuid.NewRandomFromReader(source)
		if err != nil {
			return SimResult{}, fmt.Errorf("generating transaction id: %w", err)
		}
		txs[i] = Transaction{ID: id}
	}

	for _, n := range nodes {
		var pending []Transaction
		for _, tx := range txs {
			if rng.Float64() < cfg.PTxDistribution {
				pending = append(pending, tx)
			}
		}
		n.SetPendingTransactions(pending)
	}

	ev("gossip: simulate: nodes[%d]: adversaries[%d]: registered[%d]: rounds[%d]", cfg.NumNodes, len(adversaries), registry.Len(), cfg.NumRounds)

	for round := range cfg.NumRounds {
		candidates := make([][]Candidate, cfg.NumNodes)

		for i, n := range nodes {
			for _, tx := range n.SendToFollowers() {
				for _, f := range followers[i] {
					candidates[f] = append(candidates[f], Candidate{Tx: tx, Sender: peer.ID(i)})
				}
			}
		}

		for i, n := range nodes {
			n.ReceiveFromFollowees(candidates[i])
		}

		ev("gossip: simulate: round[%d] complete", round+1)
	}

	expected := registry.Transactions()

	ids := make([]peer.ID, 0, len(honest))
	for id := range honest {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	result := SimResult{
		Registered:  len(expected),
		Adversaries: adversaries,
		Nodes:       make([]NodeResult, 0, len(ids)),
	}

	for _, id := range ids {
		n := honest[id]
		consensus := n.SendToFollowers()

		result.Nodes = append(result.Nodes, NodeResult{
			ID:        id,
			Consensus: len(consensus),
			Agrees:    slices.Equal(consensus, expected),
			Malicious: n.Malicious(),
		})
	}

	ev("gossip: simulate: agreeing[%d] of honest[%d]", result.Agreeing(), len(ids))

	return result, nil
}

func newAdversary(kind string, rng *rand.Rand, source *rand.ChaCha8) Node {
	if kind == AdversaryMixed {
		kind = []string{AdversarySilent, AdversaryForger, AdversaryFlaky}[rng.IntN(3)]
	}

	switch kind {
	case AdversaryForger:
		return NewForgerNode(source, 1)
	case AdversaryFlaky:
		return &FlakyNode{}
	default:
		return SilentNode{}
	}
}
