package domain

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dexflow/swapengine/internal/apperror"
)

func TestValidateSlippageBps(t *testing.T) {
	tests := []struct {
		name    string
		bps     int64
		wantErr bool
	}{
		{"zero", 0, false},
		{"half_percent", 50, false},
		{"max", 5000, false},
		{"negative", -1, true},
		{"over_max", 5001, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlippageBps(tt.bps)
			if tt.wantErr {
				if !apperror.IsCode(err, apperror.CodeInvalidSlippage) {
					t.Errorf("expected INVALID_SLIPPAGE, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBasisPointsToPercent(t *testing.T) {
	got, err := BasisPointsToPercent(50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.New(5, -3)) {
		t.Errorf("BasisPointsToPercent(50) = %s, want 0.005", got)
	}

	if _, err := BasisPointsToPercent(-1); !apperror.IsCode(err, apperror.CodeInvalidSlippage) {
		t.Errorf("expected INVALID_SLIPPAGE, got %v", err)
	}
}

func TestMinimumOut(t *testing.T) {
	tests := []struct {
		name string
		dest string
		bps  int64
		want string
	}{
		// 200 units at 50 bps tolerance: 200 - 200*50/10000 = 199
		{"half_percent_of_200", "200", 50, "199"},
		{"zero_tolerance", "1000", 0, "1000"},
		{"one_percent", "1000000000000000000", 100, "990000000000000000"},
		// 100*1/10000 truncates to 0
		{"tolerance_truncates_to_zero", "100", 1, "100"},
		{"fifty_percent", "1000", 5000, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, _ := new(big.Int).SetString(tt.dest, 10)
			want, _ := new(big.Int).SetString(tt.want, 10)

			got := MinimumOut(dest, tt.bps)
			if got.Cmp(want) != 0 {
				t.Errorf("MinimumOut(%s, %d) = %s, want %s", tt.dest, tt.bps, got, want)
			}
			// Input must not be mutated.
			if check, _ := new(big.Int).SetString(tt.dest, 10); dest.Cmp(check) != 0 {
				t.Error("MinimumOut mutated its input")
			}
		})
	}
}

func TestMaximumIn(t *testing.T) {
	src := big.NewInt(1000)

	got := MaximumIn(src, 50)
	if got.Cmp(big.NewInt(1005)) != 0 {
		t.Errorf("MaximumIn(1000, 50) = %s, want 1005", got)
	}

	if got := MaximumIn(src, 0); got.Cmp(src) != 0 {
		t.Errorf("MaximumIn(1000, 0) = %s, want 1000", got)
	}
}
