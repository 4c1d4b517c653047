package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledgersim/app/services/node/handlers"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/state"
	"github.com/ardanlabs/ledgersim/foundation/events"
	"github.com/ardanlabs/ledgersim/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const minerHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

const reward = 25

type fixture struct {
	mux   http.Handler
	gen   database.Block
	miner database.AccountID
	sign  func(*database.Tx)
}

func newFixture(t *testing.T) fixture {
	key, err := crypto.HexToECDSA(minerHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the key: %v", failed, err)
	}
	miner := database.PublicKeyToAccountID(key.PublicKey)

	root := t.TempDir()
	if err := crypto.SaveECDSA(filepath.Join(root, "miner.ecdsa"), key); err != nil {
		t.Fatalf("\t%s\tShould be able to save the key: %v", failed, err)
	}
	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the name service: %v", failed, err)
	}

	gen, err := database.NewBlock(database.ZeroHash, database.NewCoinbaseTx(reward, miner), nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:      gen,
		Beneficiary:  miner,
		MiningReward: reward,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}
	t.Cleanup(func() { st.Shutdown() })

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})

	sign := func(tx *database.Tx) {
		for i := range tx.Inputs {
			if err := tx.SignInput(i, key); err != nil {
				t.Fatalf("\t%s\tShould be able to sign input %d: %v", failed, i, err)
			}
		}
	}

	return fixture{mux: mux, gen: gen, miner: miner, sign: sign}
}

func (fx fixture) do(t *testing.T, method string, path string, body any, resp any) int {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("\t%s\tShould be able to encode the body: %v", failed, err)
		}
	}

	w := httptest.NewRecorder()
	fx.mux.ServeHTTP(w, httptest.NewRequest(method, path, &buf))

	if resp != nil && w.Code < 300 {
		if err := json.NewDecoder(w.Body).Decode(resp); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the response: %v", failed, err)
		}
	}

	return w.Code
}

// =============================================================================

type blockInfo struct {
	Hash   database.Hash  `json:"hash"`
	Height uint64         `json:"height"`
	Block  database.Block `json:"block"`
}

type utxoInfo struct {
	Balance uint64 `json:"balance"`
	UTXOs   []struct {
		Name string `json:"name"`
	} `json:"utxos"`
}

func Test_Chain(t *testing.T) {
	t.Log("Given a node serving a new chain.")
	{
		fx := newFixture(t)

		var tip blockInfo
		if code := fx.do(t, http.MethodGet, "/v1/chain/tip", nil, &tip); code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the tip, got %d.", failed, code)
		}
		if tip.Hash != fx.gen.Hash() || tip.Height != 0 {
			t.Fatalf("\t%s\tShould return the genesis block at height 0.", failed)
		}
		t.Logf("\t%s\tShould return the genesis block at height 0.", success)

		var ui utxoInfo
		if code := fx.do(t, http.MethodGet, "/v1/chain/utxos/"+string(fx.miner), nil, &ui); code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to get the utxos, got %d.", failed, code)
		}
		if ui.Balance != reward || len(ui.UTXOs) != 1 || ui.UTXOs[0].Name != "miner" {
			t.Fatalf("\t%s\tShould return the named genesis output, got %+v.", failed, ui)
		}
		t.Logf("\t%s\tShould return the named genesis output.", success)

		if code := fx.do(t, http.MethodGet, "/v1/chain/utxos/bill", nil, nil); code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a bad account, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould reject a bad account.", success)

		block, err := database.NewBlock(fx.gen.Hash(), database.NewCoinbaseTx(reward, fx.miner), nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a block: %v", failed, err)
		}

		var added blockInfo
		if code := fx.do(t, http.MethodPost, "/v1/chain/blocks", block, &added); code != http.StatusCreated {
			t.Fatalf("\t%s\tShould accept a proposed block, got %d.", failed, code)
		}
		if added.Hash != block.Hash() || added.Height != 1 {
			t.Fatalf("\t%s\tShould index the proposed block at height 1.", failed)
		}
		t.Logf("\t%s\tShould accept a proposed block.", success)

		if code := fx.do(t, http.MethodPost, "/v1/chain/blocks", block, nil); code != http.StatusConflict {
			t.Fatalf("\t%s\tShould report a duplicate block, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould report a duplicate block.", success)

		orphan, err := database.NewBlock(block.Coinbase.Hash(), database.NewCoinbaseTx(reward, fx.miner), nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a block: %v", failed, err)
		}
		if code := fx.do(t, http.MethodPost, "/v1/chain/blocks", orphan, nil); code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an orphan, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould reject an orphan.", success)

		var found blockInfo
		if code := fx.do(t, http.MethodGet, "/v1/chain/blocks/"+block.Hash().String(), nil, &found); code != http.StatusOK {
			t.Fatalf("\t%s\tShould find the block by hash, got %d.", failed, code)
		}
		if code := fx.do(t, http.MethodGet, "/v1/chain/blocks/"+orphan.Hash().String(), nil, nil); code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould not find the orphan, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould look blocks up by hash.", success)
	}
}

func Test_Transactions(t *testing.T) {
	t.Log("Given a node accepting transactions.")
	{
		fx := newFixture(t)

		unsigned := database.NewTx()
		unsigned.AddInput(fx.gen.Coinbase.Hash(), 0)
		unsigned.AddOutput(reward, fx.miner)

		if code := fx.do(t, http.MethodPost, "/v1/tx/submit", unsigned, nil); code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an unsigned transaction, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould reject an unsigned transaction.", success)

		tx := unsigned
		fx.sign(&tx)

		if code := fx.do(t, http.MethodPost, "/v1/tx/submit", tx, nil); code != http.StatusOK {
			t.Fatalf("\t%s\tShould accept a signed transaction, got %d.", failed, code)
		}
		t.Logf("\t%s\tShould accept a signed transaction.", success)

		var pool []struct {
			Hash database.Hash `json:"hash"`
		}
		if code := fx.do(t, http.MethodGet, "/v1/tx/pool", nil, &pool); code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to list the pool, got %d.", failed, code)
		}
		if len(pool) != 1 || pool[0].Hash != tx.Hash() {
			t.Fatalf("\t%s\tShould list the submitted transaction.", failed)
		}
		t.Logf("\t%s\tShould list the submitted transaction.", success)
	}
}
