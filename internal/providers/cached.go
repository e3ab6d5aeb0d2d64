package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oppscan/oppscan/internal/data/cache"
	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// cachedProvider memoizes Fetch results for one TTL so several evaluation
// ticks inside the TTL share one upstream call per symbol. Cache failures
// are treated as misses; a decode failure falls through to the upstream.
type cachedProvider struct {
	inner ComponentScoreProvider
	cache cache.Cache
	ttl   time.Duration
}

// WithCache wraps provider with response caching. A zero ttl disables
// caching and returns provider unchanged.
func WithCache(provider ComponentScoreProvider, c cache.Cache, ttl time.Duration) ComponentScoreProvider {
	if ttl <= 0 {
		return provider
	}
	return &cachedProvider{
		inner: provider,
		cache: c,
		ttl:   ttl,
	}
}

func (c *cachedProvider) Name() string {
	return c.inner.Name()
}

func (c *cachedProvider) Component() confluence.ComponentKind {
	return c.inner.Component()
}

func (c *cachedProvider) Fetch(ctx context.Context, symbol string) ([]confluence.ComponentScore, error) {
	key := c.key(symbol)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var scores []confluence.ComponentScore
		if err := json.Unmarshal(raw, &scores); err == nil {
			return scores, nil
		}
	}

	scores, err := c.inner.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(scores); err == nil {
		c.cache.Set(ctx, key, raw, c.ttl)
	}
	return scores, nil
}

func (c *cachedProvider) key(symbol string) string {
	return fmt.Sprintf("provider:%s:%s", c.inner.Name(), symbol)
}
