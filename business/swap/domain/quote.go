package domain

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Quote is an aggregator route priced at a moment in time. SrcAmount and
// DestAmount are both populated regardless of side: the quoted leg carries
// the aggregator's answer, the fixed leg echoes the request.
type Quote struct {
	SrcToken     common.Address
	DestToken    common.Address
	SrcDecimals  uint8
	DestDecimals uint8
	SrcAmount    *big.Int
	DestAmount   *big.Int
	Side         Side

	// USD valuations of both legs, as reported by the aggregator.
	// Zero when the aggregator has no USD price for a token.
	SrcUSD  decimal.Decimal
	DestUSD decimal.Decimal

	// MaxImpactReached is set when the route was priced with the impact
	// ceiling lifted because no route fit under it.
	MaxImpactReached bool

	// PriceRoute is the aggregator's opaque route blob, passed back
	// verbatim when building the transaction.
	PriceRoute json.RawMessage

	ReceivedAt time.Time
}

// QuotedAmount returns the leg the aggregator computed.
func (q *Quote) QuotedAmount() *big.Int {
	if q.Side == SideBuy {
		return q.SrcAmount
	}
	return q.DestAmount
}

// ExecutionRate returns the decimal-adjusted price of the route, in
// destination units per source unit. Zero when either leg is missing.
func (q *Quote) ExecutionRate() decimal.Decimal {
	if q.SrcAmount == nil || q.DestAmount == nil || q.SrcAmount.Sign() <= 0 {
		return decimal.Zero
	}
	src := decimal.NewFromBigInt(q.SrcAmount, -int32(q.SrcDecimals))
	dest := decimal.NewFromBigInt(q.DestAmount, -int32(q.DestDecimals))
	return dest.DivRound(src, 18)
}

// SamePair reports whether another quote prices the same token pair and side.
func (q *Quote) SamePair(other *Quote) bool {
	if other == nil {
		return false
	}
	return q.SrcToken == other.SrcToken &&
		q.DestToken == other.DestToken &&
		q.Side == other.Side
}
