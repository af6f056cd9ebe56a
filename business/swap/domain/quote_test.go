package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExecutionRate(t *testing.T) {
	src, _ := new(big.Int).SetString("100000000000000000000", 10) // 100 @ 18 decimals
	dest := big.NewInt(200_000_000)                               // 200 @ 6 decimals

	q := &Quote{
		SrcDecimals:  18,
		DestDecimals: 6,
		SrcAmount:    src,
		DestAmount:   dest,
	}

	if rate := q.ExecutionRate(); !rate.Equal(decimal.NewFromInt(2)) {
		t.Errorf("ExecutionRate() = %s, want 2", rate)
	}
}

func TestExecutionRateMissingLeg(t *testing.T) {
	q := &Quote{SrcAmount: big.NewInt(0), DestAmount: big.NewInt(100)}
	if rate := q.ExecutionRate(); !rate.IsZero() {
		t.Errorf("ExecutionRate() with zero source = %s, want 0", rate)
	}

	q = &Quote{DestAmount: big.NewInt(100)}
	if rate := q.ExecutionRate(); !rate.IsZero() {
		t.Errorf("ExecutionRate() with nil source = %s, want 0", rate)
	}
}

func TestQuotedAmount(t *testing.T) {
	q := &Quote{
		SrcAmount:  big.NewInt(1),
		DestAmount: big.NewInt(2),
		Side:       SideSell,
	}
	if got := q.QuotedAmount(); got.Cmp(big.NewInt(2)) != 0 {
		t.Errorf("QuotedAmount() for SELL = %s, want dest amount", got)
	}

	q.Side = SideBuy
	if got := q.QuotedAmount(); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("QuotedAmount() for BUY = %s, want src amount", got)
	}
}
