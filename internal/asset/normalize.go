package asset

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dexflow/swapengine/internal/apperror"
)

// ToRaw parses a user-typed decimal string into a raw integer amount scaled
// by 10^decimals. Precision beyond the token's decimals is truncated, never
// rounded up. A bare "." is an in-progress entry and parses as zero.
// Malformed or negative input fails with INVALID_AMOUNT.
func ToRaw(display string, decimals uint8) (*big.Int, error) {
	s := strings.TrimSpace(display)
	if s == "." {
		s = "0."
	}
	if s == "" || !wellFormedDecimal(s) {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, display)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidAmount, apperror.WithContext(display), apperror.WithCause(err))
	}
	if d.IsNegative() {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, display)
	}

	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// ToDisplay converts a raw integer amount back into display units. The
// result carries the full precision of the raw value.
func ToDisplay(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).String()
}

// ToDisplayRounded is ToDisplay with rounding to the given number of
// fractional digits. Rounding applies to the rendered string only; the raw
// value is never mutated.
func ToDisplayRounded(raw *big.Int, decimals uint8, precision int32) string {
	if raw == nil {
		return "0"
	}
	d := decimal.NewFromBigInt(raw, -int32(decimals)).Round(precision)
	return d.String()
}

// wellFormedDecimal accepts digits with at most one decimal point. Signs and
// exponents are rejected: this validates user keyboard input, not arbitrary
// numeric literals.
func wellFormedDecimal(s string) bool {
	dot := false
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.':
			if dot {
				return false
			}
			dot = true
		default:
			return false
		}
	}
	// "5." is a valid in-progress entry; lone separators are handled by the
	// caller's "." rewrite.
	return digits
}
