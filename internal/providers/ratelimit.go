package providers

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// Limiter provides per-provider rate limiting using a token bucket.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewLimiter creates a limiter pool with the specified RPS and burst
// capacity applied to each provider independently.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// getLimiter returns or creates the rate limiter for name.
func (l *Limiter) getLimiter(name string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[name]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[name]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
	l.limiters[name] = limiter
	return limiter
}

// Wait blocks until name may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, name string) error {
	return l.getLimiter(name).Wait(ctx)
}

// rateLimitedProvider gates Fetch calls through a shared Limiter. A symbol
// evaluation that cannot get a token before its deadline degrades that
// component to absent, the same as any other provider failure.
type rateLimitedProvider struct {
	inner   ComponentScoreProvider
	limiter *Limiter
}

// WithRateLimit wraps provider so every Fetch waits on limiter first.
func WithRateLimit(provider ComponentScoreProvider, limiter *Limiter) ComponentScoreProvider {
	return &rateLimitedProvider{
		inner:   provider,
		limiter: limiter,
	}
}

func (r *rateLimitedProvider) Name() string {
	return r.inner.Name()
}

func (r *rateLimitedProvider) Component() confluence.ComponentKind {
	return r.inner.Component()
}

func (r *rateLimitedProvider) Fetch(ctx context.Context, symbol string) ([]confluence.ComponentScore, error) {
	if err := r.limiter.Wait(ctx, r.inner.Name()); err != nil {
		return nil, err
	}
	return r.inner.Fetch(ctx, symbol)
}
