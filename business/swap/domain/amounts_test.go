package domain

import (
	"math/big"
	"testing"
)

// wei parses a decimal string into a big.Int, for 18-decimal fixtures.
func wei(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big.Int fixture: %s", s)
	}
	return v
}

func TestApplySlippage(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		pct     int64
		want    string
		wantErr bool
	}{
		{name: "two_percent", amount: "100000000000000000000", pct: 2, want: "102000000000000000000"},
		{name: "truncates_down", amount: "1", pct: 2, want: "1"}, // 1.02 -> 1
		{name: "zero_tolerance", amount: "1000", pct: 0, want: "1000"},
		{name: "zero_amount", amount: "0", pct: 2, want: "0"},
		{name: "odd_amount", amount: "333", pct: 2, want: "339"}, // 339.66 -> 339
		{name: "negative_tolerance", amount: "1000", pct: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplySlippage(wei(t, tt.amount), tt.pct)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ApplySlippage(%s, %d) = %s, want %s", tt.amount, tt.pct, got, tt.want)
			}
		})
	}
}

func TestApplySlippage_Errors(t *testing.T) {
	if _, err := ApplySlippage(nil, 2); err == nil {
		t.Error("expected error for nil amount")
	}
	if _, err := ApplySlippage(big.NewInt(-1), 2); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestApplySlippage_DoesNotMutateInput(t *testing.T) {
	amount := big.NewInt(100)
	if _, err := ApplySlippage(amount, 2); err != nil {
		t.Fatal(err)
	}
	if amount.Int64() != 100 {
		t.Errorf("input mutated: %s", amount)
	}
}

func TestCrossRate(t *testing.T) {
	tests := []struct {
		name   string
		priceA string
		priceB string
		want   string
	}{
		{
			// priceA twice priceB: one A buys two B.
			name:   "double_price",
			priceA: "2000000000000000000",
			priceB: "1000000000000000000",
			want:   "2000000000000000000",
		},
		{
			name:   "equal_prices",
			priceA: "1000000000000000000",
			priceB: "1000000000000000000",
			want:   "1000000000000000000",
		},
		{
			// EUR at 1.1 vs USD at 1.0: rate truncates at 18 decimals.
			name:   "fractional_rate",
			priceA: "1000000000000000000",
			priceB: "1100000000000000000",
			want:   "909090909090909090",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CrossRate(wei(t, tt.priceA), wei(t, tt.priceB))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("CrossRate = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCrossRate_Errors(t *testing.T) {
	one := big.NewInt(1)

	if _, err := CrossRate(big.NewInt(0), one); err == nil {
		t.Error("expected error for zero priceA")
	}
	if _, err := CrossRate(one, big.NewInt(0)); err == nil {
		t.Error("expected error for zero priceB")
	}
	if _, err := CrossRate(nil, one); err == nil {
		t.Error("expected error for nil priceA")
	}
	if _, err := CrossRate(one, big.NewInt(-1)); err == nil {
		t.Error("expected error for negative priceB")
	}
}
