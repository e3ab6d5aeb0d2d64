// Package providers defines the boundary to external component-score
// sources and the resilience plumbing (circuit breaking, rate limiting,
// response caching) wrapped around them.
package providers

import (
	"context"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// ComponentScoreProvider computes one analysis dimension's scores for a
// symbol, typically one ComponentScore per timeframe it covers. Providers
// are independent: a failing or slow provider only degrades its own
// component, which the caller treats as absent.
type ComponentScoreProvider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Component is the single dimension this provider scores.
	Component() confluence.ComponentKind

	// Fetch returns the provider's scores for symbol. Implementations must
	// honor ctx cancellation; returned scores are already range-clamped.
	Fetch(ctx context.Context, symbol string) ([]confluence.ComponentScore, error)
}
