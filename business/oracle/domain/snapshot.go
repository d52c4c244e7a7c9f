package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the display-path price view: the FLOW/USD price, derived
// FLOW->currency conversion rates and the raw per-pair prices.
// Stale marks a fallback payload built from static rates.
type Snapshot struct {
	FlowUSD         decimal.Decimal
	ConversionRates map[string]decimal.Decimal
	RawPrices       map[string]decimal.Decimal
	Timestamp       time.Time
	Stale           bool
}
