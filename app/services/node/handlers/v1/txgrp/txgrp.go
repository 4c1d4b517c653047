// Package txgrp maintains the group of handlers for the transaction pool.
package txgrp

import (
	"context"
	"net/http"

	"github.com/ardanlabs/ledgersim/business/web/errs"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/state"
	"github.com/ardanlabs/ledgersim/foundation/nameservice"
	"github.com/ardanlabs/ledgersim/foundation/validate"
	"github.com/ardanlabs/ledgersim/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of transaction endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Submit adds a signed transaction to the pool. Every input must claim an
// output that is unspent on the current tip. A transaction spending the
// output of another pooled transaction is refused with a 400 until the
// transaction it depends on has been included in the tip chain.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nt newTx
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	t := toTx(nt)

	h.Log.Infow("submit tx", "traceid", web.GetTraceID(ctx), "tx", t.Hash(), "inputs", len(t.Inputs), "outputs", len(t.Outputs))
	if err := h.State.SubmitTransaction(t); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
		Hash   string `json:"hash"`
	}{
		Status: "transaction added to pool",
		Hash:   t.Hash().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Pool returns the transactions waiting to be included in a block.
func (h Handlers) Pool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pool := h.State.Mempool()

	trans := make([]tx, len(pool))
	for i, t := range pool {
		outs := make([]output, len(t.Outputs))
		for j, out := range t.Outputs {
			outs[j] = output{
				Value: out.Value,
				Owner: out.Owner,
				Name:  h.NS.Lookup(out.Owner),
			}
		}

		trans[i] = tx{
			Hash:    t.Hash(),
			Inputs:  t.Inputs,
			Outputs: outs,
		}
	}

	return web.Respond(ctx, w, trans, http.StatusOK)
}
