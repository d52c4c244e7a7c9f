package domain

import (
	"github.com/shopspring/decimal"

	"github.com/basketfx/txprep/internal/apperror"
)

// crossRatePrecision keeps enough fractional digits that a rate later
// scaled into 18-decimal token units loses nothing.
const crossRatePrecision = 24

// CrossRate derives "1 unit of A priced in B" from two prices expressed
// in a common reference currency: rate(A->B) = priceA / priceB.
// Zero, negative or missing operands are a data error, never Inf/NaN.
func CrossRate(priceA, priceB decimal.Decimal) (decimal.Decimal, error) {
	if priceA.Sign() <= 0 || priceB.Sign() <= 0 {
		return decimal.Zero, apperror.New(apperror.CodeDataUnavailable,
			apperror.WithContext("cross rate requires two positive prices"))
	}
	return priceA.DivRound(priceB, crossRatePrecision), nil
}
