package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// PriceScale is the fixed-point scale for rates: 1e18 = 1.0.
var PriceScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ErrInvalidRate is returned when a rate is nil, zero or negative.
var ErrInvalidRate = errors.New("asset: invalid rate")

// Price represents an exchange rate between two assets as a fixed-point
// integer scaled by 1e18. rate = how many units of Quote one unit of Base
// buys. All downstream math stays in big.Int.
type Price struct {
	base  *Asset
	quote *Asset
	rate  *big.Int
}

// NewPrice creates a Price from a 1e18-scaled rate.
func NewPrice(base, quote *Asset, rate *big.Int) (Price, error) {
	if base == nil || quote == nil {
		return Price{}, ErrNilAsset
	}
	if rate == nil || rate.Sign() <= 0 {
		return Price{}, ErrInvalidRate
	}
	return Price{
		base:  base,
		quote: quote,
		rate:  new(big.Int).Set(rate),
	}, nil
}

// Base returns the base asset.
func (p Price) Base() *Asset { return p.base }

// Quote returns the quote asset.
func (p Price) Quote() *Asset { return p.quote }

// Rate returns a copy of the 1e18-scaled rate.
func (p Price) Rate() *big.Int {
	if p.rate == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(p.rate)
}

// Convert computes the quote-denominated amount for a base-denominated
// amount: floor(raw * rate / 1e18). Truncation matches on-chain integer
// division.
func (p Price) Convert(a Amount) (Amount, error) {
	if p.base == nil || p.quote == nil || p.rate == nil {
		return Amount{}, ErrInvalidRate
	}
	if a.Asset() == nil || !a.Asset().ID().Equals(p.base.ID()) {
		return Amount{}, fmt.Errorf("%w: amount in %s, price base %s",
			ErrAssetMismatch, a.Asset(), p.base)
	}

	out := new(big.Int).Mul(a.Raw(), p.rate)
	out.Div(out, PriceScale)
	return NewAmount(p.quote, out), nil
}

// Inverse returns the price with base and quote swapped:
// rate' = floor(1e36 / rate).
func (p Price) Inverse() (Price, error) {
	if p.rate == nil || p.rate.Sign() <= 0 {
		return Price{}, ErrInvalidRate
	}
	sq := new(big.Int).Mul(PriceScale, PriceScale)
	inv := sq.Div(sq, p.rate)
	return NewPrice(p.quote, p.base, inv)
}

// ToDecimal converts the rate to decimal.Decimal for display only.
func (p Price) ToDecimal() decimal.Decimal {
	if p.rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.rate, -18)
}

// String returns a human-readable representation.
func (p Price) String() string {
	return fmt.Sprintf("%s/%s@%s", p.base, p.quote, p.ToDecimal())
}
