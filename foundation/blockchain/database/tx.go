package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ardanlabs/ledgersim/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

// ErrInputIndex is returned when an input is addressed that the transaction
// does not have.
var ErrInputIndex = errors.New("input index out of range")

// =============================================================================

// Input claims a previously created output by naming the transaction that
// produced it and the position of the output in that transaction.
type Input struct {
	PrevTxHash  Hash          `json:"prev_tx_hash"`
	OutputIndex uint32        `json:"output_index"`
	Signature   hexutil.Bytes `json:"signature,omitempty" validate:"required"`
}

// UTXO returns the unspent output this input claims.
func (in Input) UTXO() UTXO {
	return UTXO{TxHash: in.PrevTxHash, Index: in.OutputIndex}
}

// Output assigns value to an owner.
type Output struct {
	Value uint64    `json:"value"`
	Owner AccountID `json:"owner" validate:"required"`
}

// =============================================================================

// Tx moves value from the outputs claimed by its inputs into new outputs. A
// coinbase transaction has no inputs and a single output.
type Tx struct {
	Inputs  []Input       `json:"inputs"`
	Outputs []Output      `json:"outputs"`
	Data    hexutil.Bytes `json:"data,omitempty"`
}

// NewTx constructs a transaction with no inputs or outputs.
func NewTx() Tx {
	return Tx{}
}

// NewCoinbaseTx constructs the reward transaction for a block. A random id is
// stamped into the data so two rewards to the same owner never share a hash.
func NewCoinbaseTx(value uint64, owner AccountID) Tx {
	id := uuid.New()

	return Tx{
		Outputs: []Output{{Value: value, Owner: owner}},
		Data:    id[:],
	}
}

// AddInput appends an unsigned input claiming the specified output.
func (tx *Tx) AddInput(prevTxHash Hash, outputIndex uint32) {
	tx.Inputs = append(tx.Inputs, Input{PrevTxHash: prevTxHash, OutputIndex: outputIndex})
}

// AddOutput appends a new output to the transaction.
func (tx *Tx) AddOutput(value uint64, owner AccountID) {
	tx.Outputs = append(tx.Outputs, Output{Value: value, Owner: owner})
}

// SignInput signs the input at the specified index with the private key of
// the owner of the output the input claims. Inputs and outputs must not change
// after signing.
func (tx *Tx) SignInput(index int, privateKey *ecdsa.PrivateKey) error {
	if index < 0 || index >= len(tx.Inputs) {
		return ErrInputIndex
	}

	sig, err := signature.Sign(tx.dataToSign(index), privateKey)
	if err != nil {
		return fmt.Errorf("signing input %d: %w", index, err)
	}

	tx.Inputs[index].Signature = sig
	return nil
}

// InputSigner extracts the account that signed the input at the specified index.
func (tx Tx) InputSigner(index int) (AccountID, error) {
	if index < 0 || index >= len(tx.Inputs) {
		return "", ErrInputIndex
	}

	address, err := signature.FromAddress(tx.dataToSign(index), tx.Inputs[index].Signature)
	if err != nil {
		return "", err
	}

	return AccountID(address), nil
}

// IsCoinbase reports whether the transaction has the shape of a block reward.
func (tx Tx) IsCoinbase() bool {
	return len(tx.Inputs) == 0 && len(tx.Outputs) == 1
}

// Hash returns the content hash of the transaction including signatures.
func (tx Tx) Hash() Hash {
	return Hash(signature.Hash(tx))
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:in[%d]:out[%d]", tx.Hash(), len(tx.Inputs), len(tx.Outputs))
}

// =============================================================================

// signedData is what the owner of a claimed output signs for one input.
type signedData struct {
	PrevTxHash  Hash          `json:"prev_tx_hash"`
	OutputIndex uint32        `json:"output_index"`
	Outputs     []Output      `json:"outputs"`
	Data        hexutil.Bytes `json:"data,omitempty"`
}

func (tx Tx) dataToSign(index int) signedData {
	in := tx.Inputs[index]

	return signedData{
		PrevTxHash:  in.PrevTxHash,
		OutputIndex: in.OutputIndex,
		Outputs:     tx.Outputs,
		Data:        tx.Data,
	}
}
