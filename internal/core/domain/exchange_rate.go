package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the USD price of one whole coin as reported by a price source.
type PriceQuote struct {
	Pair      string          `json:"pair"` // e.g. "ETH/USD"
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
	Simulated bool            `json:"simulated"` // true when no live source answered
	FetchedAt time.Time       `json:"fetchedAt"`
}

// ToUSD converts an amount of smallest units to USD, rounded to cents.
func (q PriceQuote) ToUSD(wei decimal.Decimal) decimal.Decimal {
	return wei.Shift(-18).Mul(q.Price).Round(2)
}
