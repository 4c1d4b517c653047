package database

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AccountID identifies the owner of an output. It is the checksummed address
// of the public key whose signature can spend the output.
type AccountID string

// ToAccountID validates the hex address and returns it in checksummed form.
func ToAccountID(hex string) (AccountID, error) {
	if !common.IsHexAddress(hex) {
		return "", fmt.Errorf("invalid account format %q", hex)
	}

	return AccountID(common.HexToAddress(hex).Hex()), nil
}

// PublicKeyToAccountID converts the public key to an account value.
func PublicKeyToAccountID(pk ecdsa.PublicKey) AccountID {
	return AccountID(crypto.PubkeyToAddress(pk).Hex())
}

// IsAccountID reports whether the value is a well formed address.
func (a AccountID) IsAccountID() bool {
	return common.IsHexAddress(string(a))
}
