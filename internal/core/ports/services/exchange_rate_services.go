package services

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
)

// ExchangeRateSvc provides the ETH/USD price used for display conversions.
type ExchangeRateSvc interface {
	// GetEthUsdRate returns a cached quote unless forceRefresh is set or the cache expired.
	// It never fails; when no source answers the quote is marked Simulated.
	GetEthUsdRate(ctx context.Context, forceRefresh bool) domain.PriceQuote
}
