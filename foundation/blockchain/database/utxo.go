// Package database provides the ledger primitives shared by the chain index:
// hashes, accounts, transactions, blocks and the unspent output pool.
package database

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
)

// UTXO identifies one output of one transaction.
type UTXO struct {
	TxHash Hash   `json:"tx_hash"`
	Index  uint32 `json:"index"`
}

// String implements the fmt.Stringer interface for logging.
func (u UTXO) String() string {
	return fmt.Sprintf("%s:%d", u.TxHash, u.Index)
}

// Entry pairs an unspent output with the value it holds.
type Entry struct {
	UTXO   UTXO   `json:"utxo"`
	Output Output `json:"output"`
}

// =============================================================================

// UTXOPool represents the set of outputs that have not been spent. A pool is
// owned by exactly one holder; use Copy to hand the state to anyone else.
type UTXOPool struct {
	utxos map[UTXO]Output
}

// NewUTXOPool constructs an empty pool.
func NewUTXOPool() *UTXOPool {
	return &UTXOPool{
		utxos: make(map[UTXO]Output),
	}
}

// Copy returns an independent pool holding the same outputs.
func (p *UTXOPool) Copy() *UTXOPool {
	cpy := UTXOPool{
		utxos: make(map[UTXO]Output, len(p.utxos)),
	}

	for utxo, out := range p.utxos {
		cpy.utxos[utxo] = out
	}

	return &cpy
}

// Add adds or replaces the output for the specified utxo.
func (p *UTXOPool) Add(utxo UTXO, out Output) {
	p.utxos[utxo] = out
}

// Remove deletes the utxo from the pool.
func (p *UTXOPool) Remove(utxo UTXO) {
	delete(p.utxos, utxo)
}

// Get returns the output for the specified utxo.
func (p *UTXOPool) Get(utxo UTXO) (Output, bool) {
	out, exists := p.utxos[utxo]
	return out, exists
}

// Contains reports whether the utxo is unspent in this pool.
func (p *UTXOPool) Contains(utxo UTXO) bool {
	_, exists := p.utxos[utxo]
	return exists
}

// Len returns the number of unspent outputs.
func (p *UTXOPool) Len() int {
	return len(p.utxos)
}

// Entries returns the unspent outputs ordered by transaction hash and index.
func (p *UTXOPool) Entries() []Entry {
	entries := make([]Entry, 0, len(p.utxos))
	for utxo, out := range p.utxos {
		entries = append(entries, Entry{UTXO: utxo, Output: out})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := bytes.Compare(a.UTXO.TxHash[:], b.UTXO.TxHash[:]); c != 0 {
			return c
		}
		return cmp.Compare(a.UTXO.Index, b.UTXO.Index)
	})

	return entries
}

// Owned returns the entries belonging to the specified account.
func (p *UTXOPool) Owned(owner AccountID) []Entry {
	var owned []Entry
	for _, e := range p.Entries() {
		if e.Output.Owner == owner {
			owned = append(owned, e)
		}
	}

	return owned
}

// Balance sums the value of every output belonging to the account.
func (p *UTXOPool) Balance(owner AccountID) uint64 {
	var total uint64
	for _, out := range p.utxos {
		if out.Owner == owner {
			total += out.Value
		}
	}

	return total
}

// ApplyCoinbase adds the single reward output of the block's coinbase.
func (p *UTXOPool) ApplyCoinbase(block Block) {
	cb := block.Coinbase
	if len(cb.Outputs) == 0 {
		return
	}

	p.utxos[UTXO{TxHash: cb.Hash(), Index: 0}] = cb.Outputs[0]
}
