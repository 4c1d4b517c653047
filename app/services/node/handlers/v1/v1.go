// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ledgersim/app/services/node/handlers/v1/chaingrp"
	"github.com/ardanlabs/ledgersim/app/services/node/handlers/v1/eventgrp"
	"github.com/ardanlabs/ledgersim/app/services/node/handlers/v1/txgrp"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/state"
	"github.com/ardanlabs/ledgersim/foundation/events"
	"github.com/ardanlabs/ledgersim/foundation/nameservice"
	"github.com/ardanlabs/ledgersim/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	cgh := chaingrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/chain/tip", cgh.Tip)
	app.Handle(http.MethodGet, version, "/chain/utxos", cgh.UTXOs)
	app.Handle(http.MethodGet, version, "/chain/utxos/:account", cgh.UTXOs)
	app.Handle(http.MethodGet, version, "/chain/blocks/:hash", cgh.Block)
	app.Handle(http.MethodPost, version, "/chain/blocks", cgh.ProposeBlock)

	tgh := txgrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodPost, version, "/tx/submit", tgh.Submit)
	app.Handle(http.MethodGet, version, "/tx/pool", tgh.Pool)

	egh := eventgrp.Handlers{
		Log:  cfg.Log,
		Evts: cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", egh.Events)
}
