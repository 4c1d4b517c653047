package cmd

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	to    string
	value uint64
	data  []byte
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send value to an account",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		if err := sendWithDetails(privateKey); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Account to send to.")
	sendCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
	sendCmd.Flags().BytesHexVarP(&data, "data", "d", nil, "Data to send.")
}

func sendWithDetails(privateKey *ecdsa.PrivateKey) error {
	toID, err := database.ToAccountID(to)
	if err != nil {
		return err
	}

	from := database.PublicKeyToAccountID(privateKey.PublicKey)

	info, err := queryUTXOs(from)
	if err != nil {
		return err
	}

	tx, err := buildTx(from, toID, value, info.UTXOs)
	if err != nil {
		return err
	}
	tx.Data = data

	for i := range tx.Inputs {
		if err := tx.SignInput(i, privateKey); err != nil {
			return err
		}
	}

	msg, err := submitTx(nodeURL, tx)
	if err != nil {
		return err
	}
	fmt.Println(msg)

	return nil
}

// submitTx posts the signed transaction to the node and returns the body of
// the response. A response outside the 2xx range is returned as an error.
func submitTx(url string, tx database.Tx) (string, error) {
	body, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	msg, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("node responded with %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	return string(msg), nil
}

// buildTx claims outputs in the order given until the value is covered and
// returns any change to the sender.
func buildTx(from database.AccountID, to database.AccountID, value uint64, utxos []utxo) (database.Tx, error) {
	if value == 0 {
		return database.Tx{}, errors.New("value must be greater than zero")
	}

	tx := database.NewTx()

	var total uint64
	for _, u := range utxos {
		if total >= value {
			break
		}
		tx.AddInput(u.TxHash, u.Index)
		total += u.Value
	}

	if total < value {
		return database.Tx{}, fmt.Errorf("balance %d does not cover %d", total, value)
	}

	tx.AddOutput(value, to)
	if change := total - value; change > 0 {
		tx.AddOutput(change, from)
	}

	return tx, nil
}
