// Package signature provides helper functions for handling the blockchain
// signature needs.
package signature

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
)

// ledgerID is an arbitrary number embedded in the recovery byte of every
// signature produced here. Ethereum and Bitcoin do this as well, but they
// use the value of 27.
const ledgerID = 29

// =============================================================================

// Hash returns a unique 32 byte digest for the value.
func Hash(value any) [32]byte {
	data, err := json.Marshal(value)
	if err != nil {
		return [32]byte{}
	}

	return sha256.Sum256(data)
}

// Sign uses the specified private key to sign the data. The signature is
// returned in the 65 byte [R|S|V] format.
func Sign(value any, privateKey *ecdsa.PrivateKey) ([]byte, error) {

	// Prepare the data for signing.
	data, err := stamp(value)
	if err != nil {
		return nil, err
	}

	// Sign the hash with the private key to produce a signature.
	sig, err := crypto.Sign(data, privateKey)
	if err != nil {
		return nil, err
	}

	// Check the public key extracted from the data and signature.
	publicKey, err := crypto.SigToPub(data, sig)
	if err != nil {
		return nil, err
	}

	rs := sig[:crypto.RecoveryIDOffset]
	if !crypto.VerifySignature(crypto.FromECDSAPub(publicKey), data, rs) {
		return nil, errors.New("invalid signature")
	}

	sig[crypto.RecoveryIDOffset] += ledgerID

	return sig, nil
}

// VerifySignature verifies the signature conforms to our standards.
func VerifySignature(sig []byte) error {
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length, got %d, exp %d", len(sig), crypto.SignatureLength)
	}

	// Check the recovery id is either 0 or 1.
	v := sig[crypto.RecoveryIDOffset] - ledgerID
	if v != 0 && v != 1 {
		return errors.New("invalid recovery id")
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(v, r, s, false) {
		return errors.New("invalid signature values")
	}

	return nil
}

// FromAddress extracts the address for the account that signed the data.
func FromAddress(value any, sig []byte) (string, error) {
	if err := VerifySignature(sig); err != nil {
		return "", err
	}

	// NOTE: If the same exact data for the given signature is not provided
	// we will get the wrong from address. The public key is being extracted
	// from the data and signature.
	data, err := stamp(value)
	if err != nil {
		return "", err
	}

	raw := make([]byte, crypto.SignatureLength)
	copy(raw, sig)
	raw[crypto.RecoveryIDOffset] -= ledgerID

	publicKey, err := crypto.SigToPub(data, raw)
	if err != nil {
		return "", err
	}

	return crypto.PubkeyToAddress(*publicKey).String(), nil
}

// =============================================================================

// stamp returns a hash of 32 bytes that represents this data with
// the ledger stamp embedded into the final hash.
func stamp(value any) ([]byte, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	txHash := crypto.Keccak256(v)

	// This stamp is used so signatures we produce when signing data
	// are always unique to this ledger.
	stamp := []byte("\x19Ledger Signed Message:\n32")

	return crypto.Keccak256(stamp, txHash), nil
}
