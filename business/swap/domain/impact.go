package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Price impact severity ladder, in basis points. Severity 0 is negligible,
// severity 4 blocks execution outside expert mode.
const (
	ImpactLowBps      = 100  // 1%
	ImpactMediumBps   = 300  // 3%
	ImpactHighBps     = 500  // 5%
	ImpactBlockedBps  = 1500 // 15%
	ImpactSeverityMax = 4
)

// ComputeImpactBps measures how far the executed rate falls short of the
// ideal rate, in basis points: (ideal - actual) / ideal * 10000. A zero or
// nil ideal yields zero impact.
func ComputeImpactBps(idealOut, actualOut *big.Int) int64 {
	if idealOut == nil || actualOut == nil || idealOut.Sign() <= 0 {
		return 0
	}
	shortfall := new(big.Int).Sub(idealOut, actualOut)
	if shortfall.Sign() <= 0 {
		return 0
	}
	bps := new(big.Int).Mul(shortfall, big.NewInt(BpsDenominator))
	bps.Quo(bps, idealOut)
	return bps.Int64()
}

// ImpactBpsFromUSD measures impact from the aggregator's USD valuations of
// both legs: (srcUSD - destUSD) / srcUSD * 10000. Missing or inverted
// valuations yield zero.
func ImpactBpsFromUSD(srcUSD, destUSD decimal.Decimal) int64 {
	if srcUSD.Sign() <= 0 {
		return 0
	}
	diff := srcUSD.Sub(destUSD)
	if diff.Sign() <= 0 {
		return 0
	}
	return diff.Mul(decimal.NewFromInt(BpsDenominator)).Div(srcUSD).IntPart()
}

// ImpactSeverity buckets a price impact into the warning ladder.
func ImpactSeverity(impactBps int64) int {
	switch {
	case impactBps < ImpactLowBps:
		return 0
	case impactBps < ImpactMediumBps:
		return 1
	case impactBps < ImpactHighBps:
		return 2
	case impactBps < ImpactBlockedBps:
		return 3
	default:
		return ImpactSeverityMax
	}
}

// ImpactBlocksExecution reports whether the impact is too severe to execute.
// Expert mode lifts the block.
func ImpactBlocksExecution(severity int, expertMode bool) bool {
	return severity > 3 && !expertMode
}
