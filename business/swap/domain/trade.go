package domain

import (
	"math/big"

	"github.com/dexflow/swapengine/internal/apperror"
	"github.com/dexflow/swapengine/internal/asset"
)

// Trade describes the user's current swap intent: a token pair plus the raw
// amount typed into one of the two fields.
type Trade struct {
	SrcToken  *asset.Token
	DestToken *asset.Token
	Amount    *big.Int // raw units of the edited field's token
	Field     Field
}

// NewTrade builds a validated trade intent. The amount is the raw integer
// form of what the user typed, scaled to the edited token's decimals.
func NewTrade(src, dest *asset.Token, amount *big.Int, field Field) (Trade, error) {
	t := Trade{SrcToken: src, DestToken: dest, Amount: amount, Field: field}
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// Side returns the quote side implied by the edited field.
func (t Trade) Side() Side {
	return SideForField(t.Field)
}

// EditedToken returns the token whose amount the user typed.
func (t Trade) EditedToken() *asset.Token {
	if t.Field == FieldOutput {
		return t.DestToken
	}
	return t.SrcToken
}

// Validate checks the intent is complete and quotable.
func (t Trade) Validate() error {
	if t.SrcToken == nil || t.DestToken == nil {
		return apperror.Validation(apperror.CodeNoRoute, "both tokens must be selected")
	}
	if t.SrcToken.Equals(t.DestToken) {
		return apperror.Validation(apperror.CodeNoRoute, "cannot swap a token for itself")
	}
	if t.Amount == nil || t.Amount.Sign() <= 0 {
		return apperror.Validation(apperror.CodeInvalidAmount, "amount must be positive")
	}
	return nil
}
