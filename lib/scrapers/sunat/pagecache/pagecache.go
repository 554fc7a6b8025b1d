// Package pagecache keeps raw portal pages keyed by request fingerprint, in a
// local LRU and optionally in a store shared by every instance.
package pagecache

import (
	"context"
	"time"

	"sunatscraper/lib/telemetry"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	DefaultLocalSize = 2048
	DefaultLocalTTL  = 6 * time.Hour
	DefaultStoreTTL  = 12 * time.Hour
)

var meter = otel.Meter("sunatscraper/lib/scrapers/sunat/pagecache")

// Store is a shared key-value store with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type Options struct {
	LocalSize int
	LocalTTL  time.Duration
	StoreTTL  time.Duration
	// Store is optional, without it only the local tier is used.
	Store Store
}

type Cache struct {
	local    *expirable.LRU[string, string]
	store    Store
	storeTTL time.Duration
	tel      telemetry.API

	hits   metric.Int64Counter
	misses metric.Int64Counter
}

func New(opts Options, tel telemetry.API) (*Cache, error) {
	if opts.LocalSize <= 0 {
		opts.LocalSize = DefaultLocalSize
	}
	if opts.LocalTTL <= 0 {
		opts.LocalTTL = DefaultLocalTTL
	}
	if opts.StoreTTL <= 0 {
		opts.StoreTTL = DefaultStoreTTL
	}

	hits, err := meter.Int64Counter(
		"sunat.pagecache.hits",
		metric.WithDescription("Page cache hits per tier."),
	)
	if err != nil {
		return nil, err
	}
	misses, err := meter.Int64Counter(
		"sunat.pagecache.misses",
		metric.WithDescription("Page cache misses per tier."),
	)
	if err != nil {
		return nil, err
	}

	return &Cache{
		local:    expirable.NewLRU[string, string](opts.LocalSize, nil, opts.LocalTTL),
		store:    opts.Store,
		storeTTL: opts.StoreTTL,
		tel:      telemetry.NewScopedAPI("pagecache", tel),
		hits:     hits,
		misses:   misses,
	}, nil
}

var (
	tierLocal = metric.WithAttributes(attribute.String("tier", "local"))
	tierStore = metric.WithAttributes(attribute.String("tier", "store"))
)

// Get looks the key up locally and then in the store. Store failures count
// as misses.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	page, ok := c.local.Get(key)
	if ok {
		// re-adding restarts the entry's ttl, which makes expiry sliding
		c.local.Add(key, page)
		c.hits.Add(ctx, 1, tierLocal)
		return page, true
	}
	c.misses.Add(ctx, 1, tierLocal)

	if c.store == nil {
		return "", false
	}
	page, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.tel.ReportWarning("store-get", err)
		c.misses.Add(ctx, 1, tierStore)
		return "", false
	}
	if !ok {
		c.misses.Add(ctx, 1, tierStore)
		return "", false
	}
	c.hits.Add(ctx, 1, tierStore)
	return page, true
}

// Put writes page to both tiers.
func (c *Cache) Put(ctx context.Context, key, page string) {
	c.local.Add(key, page)
	if c.store == nil {
		return
	}
	err := c.store.Set(ctx, key, page, c.storeTTL)
	if err != nil {
		c.tel.ReportWarning("store-set", err)
	}
}
