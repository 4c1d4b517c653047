// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date         time.Time          `json:"date"`
	ChainID      uint16             `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	MiningReward uint64             `json:"mining_reward"` // Reward paid by the coinbase of every block.
	Owner        database.AccountID `json:"owner"`         // Account paid the genesis coinbase.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if !genesis.Owner.IsAccountID() {
		return Genesis{}, fmt.Errorf("invalid genesis owner %q", genesis.Owner)
	}

	return genesis, nil
}

// Block constructs the trusted genesis block. The block only depends on the
// file contents so every node loading the same file agrees on its hash.
func (g Genesis) Block() (database.Block, error) {
	coinbase := database.Tx{
		Outputs: []database.Output{{Value: g.MiningReward, Owner: g.Owner}},
		Data:    fmt.Appendf(nil, "genesis:%d", g.ChainID),
	}

	block, err := database.NewBlock(database.ZeroHash, coinbase, nil)
	if err != nil {
		return database.Block{}, err
	}
	block.Header.TimeStamp = uint64(g.Date.UTC().UnixNano())

	return block, nil
}
