package chain_test

import (
	"crypto/ecdsa"
	"errors"
	"testing"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/chain"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ardanlabs/ledgersim/foundation/blockchain/txhandler"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const minerHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

const reward = 25

type fixture struct {
	key   *ecdsa.PrivateKey
	miner database.AccountID
	bc    *chain.Chain
	gen   database.Block
}

func newFixture(t *testing.T) fixture {
	key, err := crypto.HexToECDSA(minerHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the miner key: %v", failed, err)
	}
	miner := database.PublicKeyToAccountID(key.PublicKey)

	gen, err := database.NewBlock(database.ZeroHash, database.NewCoinbaseTx(reward, miner), nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the genesis block: %v", failed, err)
	}

	bc, err := chain.New(chain.Config{
		Genesis:   gen,
		TxHandler: txhandler.New(nil),
		EvHandler: func(v string, args ...any) { t.Logf(v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the chain: %v", failed, err)
	}

	return fixture{key: key, miner: miner, bc: bc, gen: gen}
}

func (fx fixture) block(t *testing.T, prev database.Block, trans ...database.Tx) database.Block {
	b, err := database.NewBlock(prev.Hash(), database.NewCoinbaseTx(reward, fx.miner), trans)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a block: %v", failed, err)
	}

	return b
}

// extend adds n blocks on top of prev and returns them in order.
func (fx fixture) extend(t *testing.T, prev database.Block, n int) []database.Block {
	blocks := make([]database.Block, n)
	for i := range n {
		b := fx.block(t, prev)
		if err := fx.bc.AddBlock(b); err != nil {
			t.Fatalf("\t%s\tShould be able to add block %d: %v", failed, i, err)
		}
		blocks[i] = b
		prev = b
	}

	return blocks
}

func (fx fixture) spendCoinbase(t *testing.T, b database.Block, to database.AccountID) database.Tx {
	tx := database.NewTx()
	tx.AddInput(b.Coinbase.Hash(), 0)
	tx.AddOutput(reward, to)
	if err := tx.SignInput(0, fx.key); err != nil {
		t.Fatalf("\t%s\tShould be able to sign the input: %v", failed, err)
	}

	return tx
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a chain from a genesis block.")
	{
		fx := newFixture(t)

		if fx.bc.MaxHeightBlock().Hash() != fx.gen.Hash() || fx.bc.MaxHeight() != 0 {
			t.Fatalf("\t%s\tShould have the genesis block as the tip at height 0.", failed)
		}
		t.Logf("\t%s\tShould have the genesis block as the tip at height 0.", success)

		pool := fx.bc.MaxHeightUTXOPool()
		if pool.Len() != 1 || pool.Balance(fx.miner) != reward {
			t.Fatalf("\t%s\tShould hold the genesis coinbase output.", failed)
		}
		t.Logf("\t%s\tShould hold the genesis coinbase output.", success)

		notGenesis := fx.block(t, fx.gen)
		if _, err := chain.New(chain.Config{Genesis: notGenesis}); err == nil {
			t.Fatalf("\t%s\tShould refuse a genesis block with a previous block.", failed)
		}
		t.Logf("\t%s\tShould refuse a genesis block with a previous block.", success)
	}
}

func Test_RejectStructural(t *testing.T) {
	t.Log("Given the need to reject blocks that cannot be placed.")
	{
		fx := newFixture(t)

		second, err := database.NewBlock(database.ZeroHash, database.NewCoinbaseTx(reward, fx.miner), nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a block: %v", failed, err)
		}
		if err := fx.bc.AddBlock(second); !errors.Is(err, chain.ErrGenesisBlock) {
			t.Fatalf("\t%s\tShould reject a second genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a second genesis block.", success)

		parent := fx.block(t, fx.gen)
		orphan := fx.block(t, parent)
		if err := fx.bc.AddBlock(orphan); !errors.Is(err, chain.ErrUnknownParent) {
			t.Fatalf("\t%s\tShould reject a block with an unknown parent: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block with an unknown parent.", success)

		if err := fx.bc.AddBlock(parent); err != nil {
			t.Fatalf("\t%s\tShould accept the parent: %v", failed, err)
		}
		if err := fx.bc.AddBlock(parent); !errors.Is(err, chain.ErrDuplicateBlock) {
			t.Fatalf("\t%s\tShould reject the same block twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject the same block twice.", success)

		if _, _, exists := fx.bc.Block(orphan.Hash()); exists {
			t.Fatalf("\t%s\tShould not buffer the orphan once the parent arrives.", failed)
		}
		t.Logf("\t%s\tShould not buffer the orphan once the parent arrives.", success)
	}
}

func Test_CutOffAge(t *testing.T) {
	t.Log("Given the need to reject blocks too far below the tip.")
	{
		fx := newFixture(t)
		blocks := fx.extend(t, fx.gen, 12)

		if fx.bc.MaxHeight() != 12 {
			t.Fatalf("\t%s\tShould have a tip at height 12, got %d.", failed, fx.bc.MaxHeight())
		}

		type table struct {
			name   string
			parent database.Block
			err    error
		}

		tt := []table{
			{name: "height1", parent: fx.gen, err: chain.ErrTooOld},
			{name: "height2", parent: blocks[0], err: chain.ErrTooOld},
			{name: "height3", parent: blocks[1]},
		}

		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := fx.bc.AddBlock(fx.block(t, tst.parent))

				switch tst.err {
				case nil:
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould accept the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould accept the block.", success, testID)

				default:
					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould reject the block: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould reject the block.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_PendingBlockAgesOut(t *testing.T) {
	t.Log("Given a block at height 11 that waits while the chain grows.")
	{
		fx := newFixture(t)
		blocks := fx.extend(t, fx.gen, 20)

		// blocks[9] sits at height 10 so its children are at height 11.
		early := fx.block(t, blocks[9])
		if err := fx.bc.AddBlock(early); err != nil {
			t.Fatalf("\t%s\tShould accept height 11 while the max height is 20: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept height 11 while the max height is 20.", success)

		fx.extend(t, blocks[19], 1)

		late := fx.block(t, blocks[9])
		if err := fx.bc.AddBlock(late); !errors.Is(err, chain.ErrTooOld) {
			t.Fatalf("\t%s\tShould reject height 11 once the max height is 21: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject height 11 once the max height is 21.", success)
	}
}

func Test_InvalidTransactions(t *testing.T) {
	t.Log("Given the need to reject blocks with invalid transactions atomically.")
	{
		fx := newFixture(t)

		other, err := crypto.GenerateKey()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key: %v", failed, err)
		}
		payee := database.PublicKeyToAccountID(other.PublicKey)

		// Two transactions spending the genesis coinbase.
		tx1 := fx.spendCoinbase(t, fx.gen, payee)
		tx2 := fx.spendCoinbase(t, fx.gen, fx.miner)

		bad := fx.block(t, fx.gen, tx1, tx2)
		tip, size := fx.bc.MaxHeightBlock().Hash(), fx.bc.Len()

		for i := range 2 {
			if err := fx.bc.AddBlock(bad); !errors.Is(err, chain.ErrInvalidTransactions) {
				t.Fatalf("\t%s\tAttempt %d:\tShould reject a double spend: %v", failed, i, err)
			}
			t.Logf("\t%s\tAttempt %d:\tShould reject a double spend.", success, i)

			if fx.bc.Len() != size || fx.bc.MaxHeightBlock().Hash() != tip {
				t.Fatalf("\t%s\tAttempt %d:\tShould leave the index unchanged.", failed, i)
			}
			if _, _, exists := fx.bc.Block(bad.Hash()); exists {
				t.Fatalf("\t%s\tAttempt %d:\tShould not index the rejected block.", failed, i)
			}
			t.Logf("\t%s\tAttempt %d:\tShould leave the index unchanged.", success, i)
		}

		good := fx.block(t, fx.gen, tx1)
		if err := fx.bc.AddBlock(good); err != nil {
			t.Fatalf("\t%s\tShould accept the single spend: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept the single spend.", success)

		pool := fx.bc.MaxHeightUTXOPool()
		if pool.Balance(payee) != reward || pool.Balance(fx.miner) != reward {
			t.Fatalf("\t%s\tShould move the genesis reward and add the new coinbase.", failed)
		}
		t.Logf("\t%s\tShould move the genesis reward and add the new coinbase.", success)
	}
}

func Test_ForkChoice(t *testing.T) {
	t.Log("Given two competing blocks at the same height.")
	{
		fx := newFixture(t)

		first := fx.block(t, fx.gen)
		second := fx.block(t, fx.gen)

		if err := fx.bc.AddBlock(first); err != nil {
			t.Fatalf("\t%s\tShould accept the first block: %v", failed, err)
		}
		if err := fx.bc.AddBlock(second); err != nil {
			t.Fatalf("\t%s\tShould accept the second block: %v", failed, err)
		}

		if fx.bc.MaxHeightBlock().Hash() != first.Hash() {
			t.Fatalf("\t%s\tShould keep the first block seen as the tip.", failed)
		}
		t.Logf("\t%s\tShould keep the first block seen as the tip.", success)

		// Spending the second branch's reward is only valid on that branch.
		spend := fx.spendCoinbase(t, second, fx.miner)

		if err := fx.bc.AddBlock(fx.block(t, first, spend)); !errors.Is(err, chain.ErrInvalidTransactions) {
			t.Fatalf("\t%s\tShould not see the other branch's outputs: %v", failed, err)
		}
		t.Logf("\t%s\tShould not see the other branch's outputs.", success)

		deeper := fx.block(t, second, spend)
		if err := fx.bc.AddBlock(deeper); err != nil {
			t.Fatalf("\t%s\tShould accept the spend on its own branch: %v", failed, err)
		}

		if fx.bc.MaxHeightBlock().Hash() != deeper.Hash() || fx.bc.MaxHeight() != 2 {
			t.Fatalf("\t%s\tShould switch to the longer branch.", failed)
		}
		t.Logf("\t%s\tShould switch to the longer branch.", success)
	}
}

func Test_UTXOPoolIsolation(t *testing.T) {
	t.Log("Given a caller that changes the pool it was handed.")
	{
		fx := newFixture(t)

		pool := fx.bc.MaxHeightUTXOPool()
		for _, e := range pool.Entries() {
			pool.Remove(e.UTXO)
		}

		spend := fx.spendCoinbase(t, fx.gen, fx.miner)
		if err := fx.bc.AddBlock(fx.block(t, fx.gen, spend)); err != nil {
			t.Fatalf("\t%s\tShould still validate against the index's own pool: %v", failed, err)
		}
		t.Logf("\t%s\tShould still validate against the index's own pool.", success)

		if fx.bc.MaxHeightUTXOPool().Len() != 2 {
			t.Fatalf("\t%s\tShould hold the spend output and the new coinbase.", failed)
		}
		t.Logf("\t%s\tShould hold the spend output and the new coinbase.", success)
	}
}

func Test_TransactionPool(t *testing.T) {
	fx := newFixture(t)

	// Transactions are not validated when added to the pool.
	tx := database.NewTx()
	tx.AddInput(database.ZeroHash, 7)
	tx.AddOutput(1_000_000, fx.miner)

	fx.bc.AddTransaction(tx)
	if _, exists := fx.bc.TransactionPool().Get(tx.Hash()); !exists {
		t.Fatalf("\t%s\tShould add any transaction to the pool.", failed)
	}
	t.Logf("\t%s\tShould add any transaction to the pool.", success)
}

func Test_Prune(t *testing.T) {
	t.Log("Given the need to bound the memory held by the index.")
	{
		fx := newFixture(t)
		blocks := fx.extend(t, fx.gen, 15)

		if n := fx.bc.Prune(); n != 5 {
			t.Fatalf("\t%s\tShould evict heights 0 through 4, evicted %d.", failed, n)
		}
		t.Logf("\t%s\tShould evict heights 0 through 4.", success)

		if fx.bc.Len() != 11 {
			t.Fatalf("\t%s\tShould retain heights 5 through 15, got %d.", failed, fx.bc.Len())
		}
		t.Logf("\t%s\tShould retain heights 5 through 15.", success)

		// blocks[3] is at height 4 and was evicted.
		if err := fx.bc.AddBlock(fx.block(t, blocks[3])); !errors.Is(err, chain.ErrUnknownParent) {
			t.Fatalf("\t%s\tShould reject a child of an evicted block: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a child of an evicted block.", success)

		// blocks[4] is at height 5, its children land at 6 which is above 15 - 10.
		if err := fx.bc.AddBlock(fx.block(t, blocks[4])); err != nil {
			t.Fatalf("\t%s\tShould accept a child of the oldest retained block: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a child of the oldest retained block.", success)
	}
}
