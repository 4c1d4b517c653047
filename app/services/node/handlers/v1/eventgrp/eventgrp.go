// Package eventgrp maintains the group of handlers for node events.
package eventgrp

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/events"
	"github.com/ardanlabs/ledgersim/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of event endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	WS   websocket.Upgrader
	Evts *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// The upgrade wrote the response.
	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	id, ch := h.Evts.Acquire()
	defer h.Evts.Release(id)

	h.Log.Infow("events", "traceid", web.GetTraceID(ctx), "subscriber", id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
