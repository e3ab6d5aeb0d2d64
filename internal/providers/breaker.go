package providers

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// BreakerConfig tunes the circuit breaker wrapped around one provider.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig trips after 5 consecutive failures and probes again
// after 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// breakerProvider wraps a ComponentScoreProvider with a circuit breaker.
// While the breaker is open, Fetch fails fast and the component degrades to
// absent for the affected symbols instead of stalling evaluation ticks.
type breakerProvider struct {
	inner   ComponentScoreProvider
	breaker *gobreaker.CircuitBreaker
}

// WithBreaker wraps provider with a circuit breaker using cfg.
func WithBreaker(provider ComponentScoreProvider, cfg BreakerConfig) ComponentScoreProvider {
	settings := gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Provider circuit breaker state changed")
		},
	}

	return &breakerProvider{
		inner:   provider,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (b *breakerProvider) Name() string {
	return b.inner.Name()
}

func (b *breakerProvider) Component() confluence.ComponentKind {
	return b.inner.Component()
}

func (b *breakerProvider) Fetch(ctx context.Context, symbol string) ([]confluence.ComponentScore, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.Fetch(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	return result.([]confluence.ComponentScore), nil
}
