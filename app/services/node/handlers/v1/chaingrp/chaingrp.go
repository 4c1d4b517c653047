// Package chaingrp maintains the group of handlers for chain index access.
package chaingrp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledgersim/business/web/errs"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/chain"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/state"
	"github.com/ardanlabs/ledgersim/foundation/nameservice"
	"github.com/ardanlabs/ledgersim/foundation/validate"
	"github.com/ardanlabs/ledgersim/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Tip returns the block at the tip of the longest chain.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	block, height := h.State.Tip()

	bi := blockInfo{
		Hash:   block.Hash(),
		Height: height,
		Block:  block,
	}

	return web.Respond(ctx, w, bi, http.StatusOK)
}

// UTXOs returns the unspent outputs at the tip, optionally for one account.
func (h Handlers) UTXOs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip, height := h.State.Tip()
	pool := h.State.UTXOs()

	entries := pool.Entries()
	if acct := web.Param(r, "account"); acct != "" {
		account, err := database.ToAccountID(acct)
		if err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		entries = pool.Owned(account)
	}

	ui := utxoInfo{
		Tip:    tip.Hash(),
		Height: height,
		UTXOs:  make([]utxo, len(entries)),
	}
	for i, e := range entries {
		ui.Balance += e.Output.Value
		ui.UTXOs[i] = utxo{
			TxHash: e.UTXO.TxHash,
			Index:  e.UTXO.Index,
			Value:  e.Output.Value,
			Owner:  e.Output.Owner,
			Name:   h.NS.Lookup(e.Output.Owner),
		}
	}

	return web.Respond(ctx, w, ui, http.StatusOK)
}

// Block returns an indexed block by hash.
func (h Handlers) Block(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	hash, err := database.ToHash(web.Param(r, "hash"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, height, exists := h.State.Block(hash)
	if !exists {
		return errs.NewTrusted(fmt.Errorf("block %s not in the index", hash), http.StatusNotFound)
	}

	bi := blockInfo{
		Hash:   hash,
		Height: height,
		Block:  block,
	}

	return web.Respond(ctx, w, bi, http.StatusOK)
}

// ProposeBlock validates a block built elsewhere and adds it to the index.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nb); err != nil {
		return err
	}

	if !nb.Coinbase.IsCoinbase() {
		return errs.NewTrusted(errors.New("coinbase must have no inputs and one output"), http.StatusBadRequest)
	}

	block := toBlock(nb)
	if err := h.State.ProposeBlock(block); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, chain.ErrDuplicateBlock) {
			status = http.StatusConflict
		}
		return errs.NewTrusted(err, status)
	}

	_, height, _ := h.State.Block(block.Hash())

	bi := blockInfo{
		Hash:   block.Hash(),
		Height: height,
		Block:  block,
	}

	return web.Respond(ctx, w, bi, http.StatusCreated)
}
