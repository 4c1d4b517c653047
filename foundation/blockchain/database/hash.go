package database

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HashLength is the number of bytes in a content hash.
const HashLength = 32

// Hash is the content address of a block or transaction. It is a comparable
// value so it can be used directly as a map key.
type Hash [HashLength]byte

// ZeroHash represents the absence of a hash, such as the previous block of
// the genesis block.
var ZeroHash Hash

// ToHash converts a hex-encoded string into a hash.
func ToHash(hex string) (Hash, error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return ZeroHash, fmt.Errorf("decoding hash: %w", err)
	}

	if len(b) != HashLength {
		return ZeroHash, fmt.Errorf("invalid hash length, got %d, exp %d", len(b), HashLength)
	}

	var h Hash
	copy(h[:], b)

	return h, nil
}

// IsZero reports whether the hash is unset.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String implements the fmt.Stringer interface.
func (h Hash) String() string {
	return hexutil.Encode(h[:])
}

// MarshalText implements the encoding.TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (h *Hash) UnmarshalText(data []byte) error {
	v, err := ToHash(string(data))
	if err != nil {
		return err
	}

	*h = v
	return nil
}
