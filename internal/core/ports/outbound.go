package ports

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FundsTransferer pays a withdrawal out to the beneficiary.
// It is called as the last step of the withdrawal unit of work; an error aborts the whole withdrawal.
type FundsTransferer interface {
	Transfer(ctx context.Context, withdrawal domain.Withdrawal) error
}

// EventPublisher fans committed ledger events out to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

// PriceSource fetches the live USD price of one whole coin.
type PriceSource interface {
	Name() string
	FetchUSDPrice(ctx context.Context) (decimal.Decimal, error)
}

// QuoteCache holds recent price quotes keyed by pair. Entries expire after the cache's TTL.
type QuoteCache interface {
	Get(ctx context.Context, pair string) (domain.PriceQuote, bool)
	Set(ctx context.Context, quote domain.PriceQuote)
}
