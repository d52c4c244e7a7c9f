package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCrossRate(t *testing.T) {
	tests := []struct {
		name    string
		priceA  string
		priceB  string
		want    string
		wantErr bool
	}{
		{name: "flow_to_eur", priceA: "0.3478", priceB: "1.1", want: "0.316181818181818181818182"},
		{name: "equal_prices", priceA: "1.25", priceB: "1.25", want: "1"},
		{name: "zero_denominator", priceA: "1", priceB: "0", wantErr: true},
		{name: "zero_numerator", priceA: "0", priceB: "1", wantErr: true},
		{name: "negative_price", priceA: "-0.5", priceB: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CrossRate(decimal.RequireFromString(tt.priceA), decimal.RequireFromString(tt.priceB))
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
				t.Errorf("CrossRate(%s, %s) = %s, want %s", tt.priceA, tt.priceB, got, tt.want)
			}
		})
	}
}

func TestCrossRate_Reciprocal(t *testing.T) {
	a := decimal.RequireFromString("0.3478")
	b := decimal.RequireFromString("83.12")

	ab, err := CrossRate(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := CrossRate(b, a)
	if err != nil {
		t.Fatal(err)
	}

	// rate(A->B) * rate(B->A) must stay within rounding distance of 1.
	product := ab.Mul(ba)
	delta := product.Sub(decimal.New(1, 0)).Abs()
	if delta.GreaterThan(decimal.New(1, -18)) {
		t.Errorf("reciprocal product drifted: %s", product)
	}
}
