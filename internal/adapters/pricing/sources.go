package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	"github.com/shopspring/decimal"
)

const (
	DefaultCryptoCompareURL = "https://min-api.cryptocompare.com"
	DefaultCoinGeckoURL     = "https://api.coingecko.com"
)

// CryptoCompare reads the ETH price from the CryptoCompare price endpoint.
type CryptoCompare struct {
	httpSource
}

var _ ports.PriceSource = (*CryptoCompare)(nil)

// NewCryptoCompare creates the source. apiKey is optional.
func NewCryptoCompare(baseURL, apiKey string, timeout time.Duration) *CryptoCompare {
	src := newHTTPSource(baseURL, timeout)
	if apiKey != "" {
		src.headers["Authorization"] = "Apikey " + apiKey
	}
	return &CryptoCompare{httpSource: src}
}

func (c *CryptoCompare) Name() string { return "cryptocompare" }

func (c *CryptoCompare) FetchUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	var body map[string]decimal.Decimal
	if err := c.getJSON(ctx, "/data/price?fsym=ETH&tsyms=USD", &body); err != nil {
		return decimal.Zero, fmt.Errorf("cryptocompare: %w", err)
	}
	price, ok := body["USD"]
	if !ok {
		return decimal.Zero, fmt.Errorf("cryptocompare: response has no USD price")
	}
	return price, nil
}

// CoinGecko reads the ETH price from the CoinGecko simple price endpoint.
type CoinGecko struct {
	httpSource
}

var _ ports.PriceSource = (*CoinGecko)(nil)

func NewCoinGecko(baseURL string, timeout time.Duration) *CoinGecko {
	return &CoinGecko{httpSource: newHTTPSource(baseURL, timeout)}
}

func (c *CoinGecko) Name() string { return "coingecko" }

func (c *CoinGecko) FetchUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	var body map[string]map[string]decimal.Decimal
	if err := c.getJSON(ctx, "/api/v3/simple/price?ids=ethereum&vs_currencies=usd", &body); err != nil {
		return decimal.Zero, fmt.Errorf("coingecko: %w", err)
	}
	price, ok := body["ethereum"]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko: response has no ethereum/usd price")
	}
	return price, nil
}
