package txgrp

import (
	"github.com/ardanlabs/ledgersim/foundation/blockchain/database"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// newTx is a signed transaction submitted by a client.
type newTx struct {
	Inputs  []database.Input  `json:"inputs" validate:"required,min=1,dive"`
	Outputs []database.Output `json:"outputs" validate:"required,min=1,dive"`
	Data    hexutil.Bytes     `json:"data,omitempty"`
}

func toTx(nt newTx) database.Tx {
	return database.Tx{
		Inputs:  nt.Inputs,
		Outputs: nt.Outputs,
		Data:    nt.Data,
	}
}

type output struct {
	Value uint64             `json:"value"`
	Owner database.AccountID `json:"owner"`
	Name  string             `json:"name"`
}

type tx struct {
	Hash    database.Hash    `json:"hash"`
	Inputs  []database.Input `json:"inputs"`
	Outputs []output         `json:"outputs"`
}
