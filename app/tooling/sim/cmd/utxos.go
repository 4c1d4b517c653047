package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

type utxo struct {
	TxHash database.Hash      `json:"tx_hash"`
	Index  uint32             `json:"index"`
	Value  uint64             `json:"value"`
	Owner  database.AccountID `json:"owner"`
	Name   string             `json:"name"`
}

type utxoInfo struct {
	Tip     database.Hash `json:"tip"`
	Height  uint64        `json:"height"`
	Balance uint64        `json:"balance"`
	UTXOs   []utxo        `json:"utxos"`
}

var utxosCmd = &cobra.Command{
	Use:   "utxos",
	Short: "Print the unspent outputs of your account.",
	Run:   utxosRun,
}

func init() {
	rootCmd.AddCommand(utxosCmd)
	utxosCmd.Flags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

func utxosRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	info, err := queryUTXOs(accountID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Tip: %s Height: %d Balance: %d\n", info.Tip, info.Height, info.Balance)
	for _, u := range info.UTXOs {
		fmt.Printf("  %s:%d %d\n", u.TxHash, u.Index, u.Value)
	}
}

func queryUTXOs(accountID database.AccountID) (utxoInfo, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/chain/utxos/%s", nodeURL, accountID))
	if err != nil {
		return utxoInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return utxoInfo{}, fmt.Errorf("node responded with %s", resp.Status)
	}

	var info utxoInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return utxoInfo{}, err
	}

	return info, nil
}
