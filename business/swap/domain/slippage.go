package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/dexflow/swapengine/internal/apperror"
)

const (
	// BpsDenominator is the basis-point scale: 10000 bps = 100%.
	BpsDenominator = 10000

	// MaxSlippageBps caps user slippage at 50%.
	MaxSlippageBps = 5000
)

// ValidateSlippageBps rejects tolerances outside [0, 50%].
func ValidateSlippageBps(bps int64) error {
	if bps < 0 || bps > MaxSlippageBps {
		return apperror.Validation(apperror.CodeInvalidSlippage,
			fmt.Sprintf("slippage %d bps out of range [0, %d]", bps, MaxSlippageBps))
	}
	return nil
}

// BasisPointsToPercent converts a slippage tolerance into a decimal fraction
// (50 bps yields 0.005). Out-of-range input fails with InvalidSlippage.
func BasisPointsToPercent(bps int64) (decimal.Decimal, error) {
	if err := ValidateSlippageBps(bps); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.New(bps, -4), nil
}

// MinimumOut returns the least acceptable output for a SELL quote:
// destAmount - destAmount*bps/10000, truncated toward zero.
func MinimumOut(destAmount *big.Int, bps int64) *big.Int {
	tolerance := scaleBps(destAmount, bps)
	return new(big.Int).Sub(destAmount, tolerance)
}

// MaximumIn returns the most acceptable input for a BUY quote:
// srcAmount + srcAmount*bps/10000, truncated toward zero.
func MaximumIn(srcAmount *big.Int, bps int64) *big.Int {
	tolerance := scaleBps(srcAmount, bps)
	return new(big.Int).Add(srcAmount, tolerance)
}

func scaleBps(amount *big.Int, bps int64) *big.Int {
	scaled := new(big.Int).Mul(amount, big.NewInt(bps))
	return scaled.Quo(scaled, big.NewInt(BpsDenominator))
}
