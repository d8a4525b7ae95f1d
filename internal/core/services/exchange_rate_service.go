package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// EthUsdPair is the only pair the ledger quotes.
const EthUsdPair = "ETH/USD"

// exchangeRateService asks each price source in order and caches the first good answer.
type exchangeRateService struct {
	BaseService
	cache    ports.QuoteCache
	sources  []ports.PriceSource
	fallback decimal.Decimal

	fetches singleflight.Group // one live fetch at a time, shared by concurrent callers

	mu       sync.Mutex
	lastGood *domain.PriceQuote
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithPriceSources sets the sources tried in order on a cache miss.
func WithPriceSources(sources ...ports.PriceSource) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.sources = append(s.sources, sources...)
	}
}

// WithFallbackRate sets the rate reported when no source has ever answered.
func WithFallbackRate(rate decimal.Decimal) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.fallback = rate
	}
}

// WithRateClock overrides the time source used to stamp quotes.
func WithRateClock(clock func() time.Time) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.clock = clock
	}
}

// NewExchangeRateService creates a new exchange rate service around an injected cache.
func NewExchangeRateService(cache ports.QuoteCache, options ...ExchangeRateServiceOption) portssvc.ExchangeRateSvc {
	svc := &exchangeRateService{
		cache:    cache,
		fallback: decimal.NewFromInt(3000),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvc = (*exchangeRateService)(nil)

func (s *exchangeRateService) GetEthUsdRate(ctx context.Context, forceRefresh bool) domain.PriceQuote {
	if !forceRefresh {
		if quote, ok := s.cache.Get(ctx, EthUsdPair); ok {
			return quote
		}
	}

	v, _, _ := s.fetches.Do(EthUsdPair, func() (any, error) {
		quote, ok := s.fetchLive(ctx)
		return liveResult{quote: quote, ok: ok}, nil
	})
	if res := v.(liveResult); res.ok {
		return res.quote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastGood != nil {
		s.LogInfo(ctx, "All price sources failed, serving last known quote",
			slog.String("source", s.lastGood.Source))
		return *s.lastGood
	}
	s.GetLogger(ctx).Warn("All price sources failed, serving fallback rate",
		slog.String("price", s.fallback.String()))
	return domain.PriceQuote{
		Pair:      EthUsdPair,
		Price:     s.fallback,
		Source:    "fallback",
		Simulated: true,
		FetchedAt: s.Now(),
	}
}

type liveResult struct {
	quote domain.PriceQuote
	ok    bool
}

// fetchLive asks each source in order and caches the first positive price.
func (s *exchangeRateService) fetchLive(ctx context.Context) (domain.PriceQuote, bool) {
	for _, source := range s.sources {
		price, err := source.FetchUSDPrice(ctx)
		if err != nil {
			s.GetLogger(ctx).Warn("Price source failed",
				slog.String("source", source.Name()),
				slog.String("error", err.Error()))
			continue
		}
		if !price.IsPositive() {
			s.GetLogger(ctx).Warn("Price source returned a non-positive price",
				slog.String("source", source.Name()),
				slog.String("price", price.String()))
			continue
		}
		quote := domain.PriceQuote{
			Pair:      EthUsdPair,
			Price:     price,
			Source:    source.Name(),
			FetchedAt: s.Now(),
		}
		s.cache.Set(ctx, quote)
		s.mu.Lock()
		s.lastGood = &quote
		s.mu.Unlock()
		return quote, true
	}
	return domain.PriceQuote{}, false
}
