package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// MemoryQuoteCache keeps quotes in process memory.
type MemoryQuoteCache struct {
	entries *TTLCache[domain.PriceQuote]
}

var _ ports.QuoteCache = (*MemoryQuoteCache)(nil)

func NewMemoryQuoteCache(ttl time.Duration, now func() time.Time) *MemoryQuoteCache {
	return &MemoryQuoteCache{entries: NewTTLCache[domain.PriceQuote](ttl, now)}
}

func (c *MemoryQuoteCache) Get(ctx context.Context, pair string) (domain.PriceQuote, bool) {
	return c.entries.Get(pair)
}

func (c *MemoryQuoteCache) Set(ctx context.Context, quote domain.PriceQuote) {
	c.entries.Set(quote.Pair, quote)
}

// RedisQuoteCache shares quotes between API instances through Redis.
// Redis errors are logged and treated as cache misses.
type RedisQuoteCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ ports.QuoteCache = (*RedisQuoteCache)(nil)

func NewRedisQuoteCache(client *redis.Client, ttl time.Duration) *RedisQuoteCache {
	return &RedisQuoteCache{client: client, ttl: ttl, prefix: "charity_ledger:price:"}
}

func (c *RedisQuoteCache) Get(ctx context.Context, pair string) (domain.PriceQuote, bool) {
	raw, err := c.client.Get(ctx, c.prefix+pair).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.GetLoggerFromCtx(ctx).Warn("Price cache read failed", slog.String("pair", pair), slog.String("error", err.Error()))
		}
		return domain.PriceQuote{}, false
	}
	var quote domain.PriceQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Price cache entry is corrupt", slog.String("pair", pair), slog.String("error", err.Error()))
		return domain.PriceQuote{}, false
	}
	return quote, true
}

func (c *RedisQuoteCache) Set(ctx context.Context, quote domain.PriceQuote) {
	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.prefix+quote.Pair, raw, c.ttl).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Price cache write failed", slog.String("pair", quote.Pair), slog.String("error", err.Error()))
	}
}
