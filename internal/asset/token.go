package asset

import "github.com/ethereum/go-ethereum/common"

// Token represents the metadata of an on-chain asset. It is a reference
// entity with stable identity (TokenID); the symbol is display metadata,
// never identity. Immutable once constructed.
type Token struct {
	id       TokenID
	symbol   string
	name     string
	decimals uint8
}

// NewToken creates a Token with the given parameters.
func NewToken(id TokenID, symbol string, decimals uint8) *Token {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}
	return &Token{id: id, symbol: symbol, decimals: decimals}
}

// NewTokenWithName creates a Token with a human-readable name.
func NewTokenWithName(id TokenID, symbol, name string, decimals uint8) *Token {
	t := NewToken(id, symbol, decimals)
	t.name = name
	return t
}

// ID returns the unique identifier for this token.
func (t *Token) ID() TokenID {
	return t.id
}

// Symbol returns the ticker symbol (e.g., "WETH", "USDC").
func (t *Token) Symbol() string {
	return t.symbol
}

// Name returns the human-readable name, falling back to the symbol.
func (t *Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

// Decimals returns the number of decimal places.
func (t *Token) Decimals() uint8 {
	return t.decimals
}

// ChainID returns the chain the token lives on.
func (t *Token) ChainID() uint64 {
	return t.id.ChainID()
}

// Address returns the contract address (zero for native coins).
func (t *Token) Address() common.Address {
	return t.id.Address()
}

// IsNative returns true if this is the chain's native coin. Native input has
// no contract-level allowance concept, so approval flows skip it.
func (t *Token) IsNative() bool {
	return t.id.IsNative()
}

// Equals compares two Tokens by identity (chain + address).
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.id.Equals(other.id)
}

// String returns the symbol.
func (t *Token) String() string {
	return t.symbol
}
