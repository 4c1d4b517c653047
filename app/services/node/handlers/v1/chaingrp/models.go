package chaingrp

import (
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
)

type blockInfo struct {
	Hash   database.Hash  `json:"hash"`
	Height uint64         `json:"height"`
	Block  database.Block `json:"block"`
}

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

// newBlock is what a client proposes. The coinbase has no inputs so only the
// transactions are validated for signatures.
type newBlock struct {
	Header   database.BlockHeader `json:"header"`
	Coinbase database.Tx          `json:"coinbase"`
	Trans    []database.Tx        `json:"trans" validate:"dive"`
}

func toBlock(nb newBlock) database.Block {
	return database.Block{
		Header:   nb.Header,
		Coinbase: nb.Coinbase,
		Trans:    nb.Trans,
	}
}
