// Package domain holds the chain context's core types.
package domain

import (
	"fmt"
	"math/big"

	"github.com/basketfx/txprep/internal/apperror"
)

// FeeQuote is the native-currency cost of publishing a price update.
// Adjusted carries the safety margin that absorbs fee movement between
// quote time and inclusion time. Computed fresh per request, never cached:
// a stale fee risks a revert.
type FeeQuote struct {
	Base     *big.Int
	Adjusted *big.Int
}

// NewFeeQuote applies the margin with integer arithmetic:
// adjusted = base * (100 + marginPct) / 100. No floating point: fee
// integers can exceed the exact range of a float64.
func NewFeeQuote(base *big.Int, marginPct int64) (FeeQuote, error) {
	if base == nil || base.Sign() < 0 {
		return FeeQuote{}, apperror.New(apperror.CodeFeeQueryFailed,
			apperror.WithContext("fee quote requires a non-negative base fee"))
	}
	if marginPct < 0 {
		return FeeQuote{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("negative fee margin: %d", marginPct)))
	}

	adjusted := new(big.Int).Mul(base, big.NewInt(100+marginPct))
	adjusted.Div(adjusted, big.NewInt(100))

	return FeeQuote{
		Base:     new(big.Int).Set(base),
		Adjusted: adjusted,
	}, nil
}
