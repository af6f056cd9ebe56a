// Package asset provides a type-safe model for chain-scoped tokens and
// fixed-point amounts. The core uses big.Int for exact on-chain
// representation; decimal.Decimal is only used at boundaries (parsing,
// display).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// TokenID uniquely identifies a token by chain and contract address.
// For native coins (ETH, MATIC) the address is zero. This is the TRUE
// identity - not the symbol. Addresses are stored in their 20-byte form, so
// equality is insensitive to the hex casing of the source string.
type TokenID struct {
	chainID uint64
	address common.Address // zero = native coin
}

// NewNativeTokenID creates a TokenID for a chain's native coin.
func NewNativeTokenID(chainID uint64) TokenID {
	return TokenID{chainID: chainID}
}

// NewTokenID creates a TokenID for an ERC-20 token.
func NewTokenID(chainID uint64, addr common.Address) TokenID {
	if addr == (common.Address{}) {
		panic("asset: token address cannot be zero - use NewNativeTokenID for native coins")
	}
	return TokenID{chainID: chainID, address: addr}
}

// ChainID returns the chain ID.
func (id TokenID) ChainID() uint64 {
	return id.chainID
}

// Address returns the token contract address (zero for native coins).
func (id TokenID) Address() common.Address {
	return id.address
}

// IsNative returns true if this is a native coin (not an ERC-20 token).
func (id TokenID) IsNative() bool {
	return id.address == (common.Address{})
}

// Equals compares two TokenIDs for equality.
func (id TokenID) Equals(other TokenID) bool {
	return id.chainID == other.chainID && id.address == other.address
}

// String returns a human-readable representation.
func (id TokenID) String() string {
	if id.IsNative() {
		return fmt.Sprintf("chain:%d/native", id.chainID)
	}
	return fmt.Sprintf("chain:%d/%s", id.chainID, id.address.Hex())
}
