package state

import (
	"errors"
	"sync"
	"time"
)

// worker assembles blocks from the transaction pool in the background.
type worker struct {
	state    *State
	wg       sync.WaitGroup
	ticker   *time.Ticker
	shut     chan struct{}
	assemble chan bool
}

// runWorker creates the worker, registers it with the state and starts the
// assembly goroutine.
func runWorker(state *State, interval time.Duration) {
	state.worker = &worker{
		state:    state,
		ticker:   time.NewTicker(interval),
		shut:     make(chan struct{}),
		assemble: make(chan bool, 1),
	}

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	state.worker.wg.Add(1)
	go func() {
		defer state.worker.wg.Done()
		hasStarted <- true
		state.worker.assembleOperations()
	}()

	<-hasStarted
}

// shutdown terminates the goroutine performing work.
func (w *worker) shutdown() {
	w.state.evHandler("worker: shutdown: started")
	defer w.state.evHandler("worker: shutdown: completed")

	w.ticker.Stop()

	close(w.shut)
	w.wg.Wait()
}

// signalAssemble requests a block be assembled. If a request is already
// pending this call does nothing.
func (w *worker) signalAssemble() {
	select {
	case w.assemble <- true:
	default:
	}
}

// =============================================================================

// assembleOperations waits for a signal or the interval and assembles a
// block from the pool.
func (w *worker) assembleOperations() {
	w.state.evHandler("worker: assembleOperations: G started")
	defer w.state.evHandler("worker: assembleOperations: G completed")

	// Blocks are assembled at most once per interval.
	var requested bool

	for {
		select {
		case <-w.assemble:
			requested = true

		case <-w.ticker.C:
			if !requested || w.isShutdown() {
				continue
			}
			requested = false
			w.runAssembleOperation()

		case <-w.shut:
			w.state.evHandler("worker: assembleOperations: received shut signal")
			return
		}
	}
}

func (w *worker) runAssembleOperation() {
	block, err := w.state.CreateBlock()
	switch {
	case errors.Is(err, ErrEmptyPool):
		w.state.evHandler("worker: runAssembleOperation: nothing to assemble")

	case err != nil:
		w.state.evHandler("worker: runAssembleOperation: ERROR: %s", err)

	default:
		w.state.evHandler("worker: runAssembleOperation: blk[%s]: trans[%d]", block.Hash(), len(block.Trans))
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
