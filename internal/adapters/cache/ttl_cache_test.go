package cache

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestTTLCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[int](5*time.Minute, clock.now)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clock.t = clock.t.Add(4*time.Minute + 59*time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok)

	clock.t = clock.t.Add(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestTTLCache_SetRestartsTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewTTLCache[string](time.Minute, clock.now)
	c.Set("k", "old")
	clock.t = clock.t.Add(50 * time.Second)
	c.Set("k", "new")
	clock.t = clock.t.Add(50 * time.Second)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "new", v)

	c.Delete("k")
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestMemoryQuoteCache_TTLClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	c := NewMemoryQuoteCache(time.Minute, clock.now)
	ctx := context.Background()

	_, ok := c.Get(ctx, "ETH/USD")
	assert.False(t, ok)

	q := domain.PriceQuote{Pair: "ETH/USD", Price: decimal.NewFromInt(3100), Source: "cryptocompare"}
	c.Set(ctx, q)
	got, ok := c.Get(ctx, "ETH/USD")
	assert.True(t, ok)
	assert.Equal(t, "cryptocompare", got.Source)
}
