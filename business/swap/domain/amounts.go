// Package domain holds the swap context's core types: amount math for
// slippage and counter-amounts, and the unsigned transaction descriptor.
package domain

import (
	"math/big"

	"github.com/basketfx/txprep/internal/apperror"
	"github.com/basketfx/txprep/internal/asset"
)

// ApplySlippage scales an amount up by the given tolerance, truncating
// toward zero: floor(amount * (100 + pct) / 100). All math is integer;
// the result is a new value, the input is never mutated.
func ApplySlippage(amount *big.Int, pct int64) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("slippage base amount must be non-negative"))
	}
	if pct < 0 {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("slippage tolerance must be non-negative"))
	}

	out := new(big.Int).Mul(amount, big.NewInt(100+pct))
	out.Div(out, big.NewInt(100))
	return out, nil
}

// CrossRate derives the A->B exchange rate from two contract-normalized
// prices as a 1e18-scaled integer: rate = priceA * 1e18 / priceB. The
// division truncates, matching the contract's own arithmetic.
func CrossRate(priceA, priceB *big.Int) (*big.Int, error) {
	if priceA == nil || priceA.Sign() <= 0 || priceB == nil || priceB.Sign() <= 0 {
		return nil, apperror.New(apperror.CodePriceUnavailable,
			apperror.WithContext("both leg prices must be positive"))
	}

	rate := new(big.Int).Mul(priceA, asset.PriceScale)
	rate.Div(rate, priceB)
	return rate, nil
}
