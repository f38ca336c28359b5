// Package bc defines the chain-level data types shared by the regvm
// interpreter, the transaction builders, and the chain layer: fixed-width
// 32-byte identifiers, transactions, and execution receipts.
package bc

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Widths of the fixed-size chain types, in bytes.
const (
	AddressLen    = 32
	AssetIDLen    = 32
	ContractIDLen = 32
	WordLen       = 8
)

// Address identifies a recipient of funds.
type Address [AddressLen]byte

// AssetID identifies a fungible asset.
type AssetID [AssetIDLen]byte

// ContractID identifies a deployed contract. It is derived from the
// contract's bytecode; see NewContractID.
type ContractID [ContractIDLen]byte

// Hash is a 32-byte digest.
type Hash [32]byte

// NewContractID derives the id of a contract from its bytecode.
func NewContractID(code []byte) ContractID {
	return ContractID(sha3.Sum256(code))
}

// AddressFromBytes creates an Address from a byte slice. The caller is
// responsible for ensuring the byte slice is of the right length. It
// will be 0-padded or truncated if it's not.
func AddressFromBytes(b []byte) (a Address) {
	copy(a[:], b)
	return a
}

// AssetIDFromBytes creates an AssetID from a byte slice, 0-padding or
// truncating it if it's not 32 bytes.
func AssetIDFromBytes(b []byte) (a AssetID) {
	copy(a[:], b)
	return a
}

// ContractIDFromBytes creates a ContractID from a byte slice, 0-padding
// or truncating it if it's not 32 bytes.
func ContractIDFromBytes(b []byte) (c ContractID) {
	copy(c[:], b)
	return c
}

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return append([]byte{}, a[:]...) }

// Bytes returns the asset id as a byte slice.
func (a AssetID) Bytes() []byte { return append([]byte{}, a[:]...) }

// Bytes returns the contract id as a byte slice.
func (c ContractID) Bytes() []byte { return append([]byte{}, c[:]...) }

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte { return append([]byte{}, h[:]...) }

func (a Address) String() string    { return hex.EncodeToString(a[:]) }
func (a AssetID) String() string    { return hex.EncodeToString(a[:]) }
func (c ContractID) String() string { return hex.EncodeToString(c[:]) }
func (h Hash) String() string       { return hex.EncodeToString(h[:]) }

// MarshalText satisfies the TextMarshaler interface. It returns the
// bytes of a encoded in hex, for formats that can't hold arbitrary
// binary data. It never returns an error.
func (a Address) MarshalText() ([]byte, error) { return marshal32(a) }

// UnmarshalText satisfies the TextUnmarshaler interface. It decodes hex
// data from v into a.
func (a *Address) UnmarshalText(v []byte) error { return unmarshal32((*[32]byte)(a), v) }

// MarshalText satisfies the TextMarshaler interface.
func (a AssetID) MarshalText() ([]byte, error) { return marshal32(a) }

// UnmarshalText satisfies the TextUnmarshaler interface.
func (a *AssetID) UnmarshalText(v []byte) error { return unmarshal32((*[32]byte)(a), v) }

// MarshalText satisfies the TextMarshaler interface.
func (c ContractID) MarshalText() ([]byte, error) { return marshal32(c) }

// UnmarshalText satisfies the TextUnmarshaler interface.
func (c *ContractID) UnmarshalText(v []byte) error { return unmarshal32((*[32]byte)(c), v) }

// MarshalText satisfies the TextMarshaler interface.
func (h Hash) MarshalText() ([]byte, error) { return marshal32(h) }

// UnmarshalText satisfies the TextUnmarshaler interface.
func (h *Hash) UnmarshalText(v []byte) error { return unmarshal32((*[32]byte)(h), v) }

func marshal32(b [32]byte) ([]byte, error) {
	v := make([]byte, 64)
	hex.Encode(v, b[:])
	return v, nil
}

func unmarshal32(b *[32]byte, v []byte) error {
	if len(v) != 64 {
		return fmt.Errorf("bad length hex string %d", len(v))
	}
	_, err := hex.Decode(b[:], v)
	return err
}
