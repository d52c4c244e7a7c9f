package domain

import (
	"math/big"
	"testing"
)

func TestNewFeeQuote(t *testing.T) {
	tests := []struct {
		name      string
		base      *big.Int
		marginPct int64
		want      string
		wantErr   bool
	}{
		{name: "ten_percent", base: big.NewInt(1000), marginPct: 10, want: "1100"},
		{name: "truncates_down", base: big.NewInt(1001), marginPct: 10, want: "1101"}, // 1101.1 -> 1101
		{name: "zero_margin", base: big.NewInt(1000), marginPct: 0, want: "1000"},
		{name: "zero_base", base: big.NewInt(0), marginPct: 10, want: "0"},
		{name: "small_base", base: big.NewInt(9), marginPct: 10, want: "9"}, // 9.9 -> 9
		{name: "nil_base", base: nil, marginPct: 10, wantErr: true},
		{name: "negative_base", base: big.NewInt(-1), marginPct: 10, wantErr: true},
		{name: "negative_margin", base: big.NewInt(1000), marginPct: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := NewFeeQuote(tt.base, tt.marginPct)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", quote)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if quote.Adjusted.String() != tt.want {
				t.Errorf("Adjusted = %s, want %s", quote.Adjusted, tt.want)
			}
			if quote.Base.Cmp(tt.base) != 0 {
				t.Errorf("Base = %s, want %s", quote.Base, tt.base)
			}
		})
	}
}

func TestNewFeeQuote_DoesNotMutateBase(t *testing.T) {
	base := big.NewInt(1000)
	quote, err := NewFeeQuote(base, 10)
	if err != nil {
		t.Fatal(err)
	}

	quote.Adjusted.SetInt64(0)
	quote.Base.SetInt64(0)

	if base.Int64() != 1000 {
		t.Errorf("caller's base mutated: %s", base)
	}
}

func TestNewFeeQuote_LargeFee(t *testing.T) {
	// Past float64 exactness; integer math must not lose precision.
	base, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	quote, err := NewFeeQuote(base, 10)
	if err != nil {
		t.Fatal(err)
	}

	want, _ := new(big.Int).SetString("135802467913580246791358024679", 10)
	if quote.Adjusted.Cmp(want) != 0 {
		t.Errorf("Adjusted = %s, want %s", quote.Adjusted, want)
	}
}
