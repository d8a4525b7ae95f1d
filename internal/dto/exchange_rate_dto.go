package dto

import (
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// GetRateParams defines query parameters for the price endpoint.
type GetRateParams struct {
	Refresh bool   `form:"refresh"`
	Wei     string `form:"wei"` // optional amount to convert
	Eth     string `form:"eth"` // same, in whole coins; ignored when wei is set
}

// ExchangeRateResponse defines the data returned for an exchange rate query.
type ExchangeRateResponse struct {
	Pair      string           `json:"pair"`
	Price     decimal.Decimal  `json:"price"`
	Source    string           `json:"source"`
	Simulated bool             `json:"simulated"`
	FetchedAt time.Time        `json:"fetchedAt"`
	Wei       *decimal.Decimal `json:"wei,omitempty"`
	USD       *decimal.Decimal `json:"usd,omitempty"`
}

// ToExchangeRateResponse converts a domain.PriceQuote to ExchangeRateResponse DTO
func ToExchangeRateResponse(q *domain.PriceQuote) ExchangeRateResponse {
	return ExchangeRateResponse{
		Pair:      q.Pair,
		Price:     q.Price,
		Source:    q.Source,
		Simulated: q.Simulated,
		FetchedAt: q.FetchedAt,
	}
}
