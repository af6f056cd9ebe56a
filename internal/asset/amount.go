package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilToken       = errors.New("asset: nil token")
	ErrNilRaw         = errors.New("asset: nil raw value")
	ErrNegativeAmount = errors.New("asset: negative amount")
	ErrTokenMismatch  = errors.New("asset: cannot operate on different tokens")
	ErrNegativeResult = errors.New("asset: operation would result in negative amount")
)

// Amount is an immutable value object representing a quantity of a token.
// The raw value is always in the smallest unit (wei, satoshi, etc).
// Arithmetic is only valid between Amounts of the same token.
type Amount struct {
	raw   *big.Int
	token *Token
}

// NewAmount creates an Amount from a raw big.Int value in the token's
// smallest unit.
func NewAmount(token *Token, raw *big.Int) Amount {
	if token == nil {
		panic(ErrNilToken)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw), // defensive copy
		token: token,
	}
}

// Zero creates a zero Amount for the given token.
func Zero(token *Token) Amount {
	return NewAmount(token, big.NewInt(0))
}

// ParseAmount creates an Amount from a user-typed decimal string, truncating
// precision beyond the token's decimals.
func ParseAmount(token *Token, display string) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	raw, err := ToRaw(display, token.Decimals())
	if err != nil {
		return Amount{}, err
	}
	return NewAmount(token, raw), nil
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() *Token {
	return a.token
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.raw != nil && a.raw.Sign() > 0
}

// Add adds two amounts of the same token.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameToken(b); err != nil {
		return Amount{}, err
	}
	return NewAmount(a.token, new(big.Int).Add(a.raw, b.raw)), nil
}

// Sub subtracts b from a (same token only). Going below zero is an error.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameToken(b); err != nil {
		return Amount{}, err
	}
	if a.raw.Cmp(b.raw) < 0 {
		return Amount{}, ErrNegativeResult
	}
	return NewAmount(a.token, new(big.Int).Sub(a.raw, b.raw)), nil
}

// MulBig multiplies the amount by a non-negative big.Int factor.
func (a Amount) MulBig(factor *big.Int) Amount {
	if factor.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return NewAmount(a.token, new(big.Int).Mul(a.raw, factor))
}

// Cmp compares two amounts of the same token.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameToken(b); err != nil {
		return 0, err
	}
	return a.raw.Cmp(b.raw), nil
}

// Equals returns true if both amounts have the same token and value.
func (a Amount) Equals(b Amount) bool {
	if a.token == nil || b.token == nil {
		return a.token == b.token && a.IsZero() && b.IsZero()
	}
	if !a.token.ID().Equals(b.token.ID()) {
		return false
	}
	return a.raw.Cmp(b.raw) == 0
}

// GreaterThanOrEqual returns true if a >= b.
func (a Amount) GreaterThanOrEqual(b Amount) (bool, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}

// LessThan returns true if a < b.
func (a Amount) LessThan(b Amount) (bool, error) {
	cmp, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return cmp < 0, nil
}

// ToDecimal converts the amount to decimal.Decimal. Boundary function for
// display and logging, not calculations.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.token == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// Display returns the amount formatted in display units.
func (a Amount) Display() string {
	if a.token == nil {
		return "0"
	}
	return ToDisplay(a.raw, a.token.Decimals())
}

// String returns a human-readable representation (e.g., "1.5 WETH").
func (a Amount) String() string {
	if a.token == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.Display(), a.token.Symbol())
}

func (a Amount) checkSameToken(b Amount) error {
	if a.token == nil || b.token == nil {
		return ErrNilToken
	}
	if !a.token.ID().Equals(b.token.ID()) {
		return fmt.Errorf("%w: %s vs %s", ErrTokenMismatch, a.token.Symbol(), b.token.Symbol())
	}
	return nil
}
