// Package pipeline runs the evaluation and serving cadences: per-symbol
// provider fan-out into the confluence analyzer on one timer, dedup, rank
// and publish on another.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/oppscan/oppscan/internal/domain/confluence"
	"github.com/oppscan/oppscan/internal/domain/signalbuf"
	httpiface "github.com/oppscan/oppscan/internal/interfaces/http"
	"github.com/oppscan/oppscan/internal/providers"
)

// Executor evaluates every tracked symbol once per tick. Symbols are
// independent: each gets its own goroutine and timeout, and one symbol's
// provider failure never touches another's evaluation.
type Executor struct {
	analyzer  *confluence.Analyzer
	providers []providers.ComponentScoreProvider
	buffer    *signalbuf.Buffer
	symbols   []string
	timeout   time.Duration
	metrics   *httpiface.MetricsRegistry
}

// NewExecutor builds an executor. timeout bounds how long one symbol waits
// on its providers per tick. A nil metrics registry gets a private,
// unexported one so callers without a metrics endpoint need no wiring.
func NewExecutor(
	analyzer *confluence.Analyzer,
	scoreProviders []providers.ComponentScoreProvider,
	buffer *signalbuf.Buffer,
	symbols []string,
	timeout time.Duration,
	metrics *httpiface.MetricsRegistry,
) *Executor {
	if metrics == nil {
		metrics = httpiface.NewMetricsRegistry(prometheus.NewRegistry())
	}
	return &Executor{
		analyzer:  analyzer,
		providers: scoreProviders,
		buffer:    buffer,
		symbols:   symbols,
		timeout:   timeout,
		metrics:   metrics,
	}
}

// RunTick evaluates all tracked symbols concurrently and appends one signal
// per symbol to the buffer. Returns when every symbol has finished or timed
// out; the slowest symbol bounds the tick at the configured timeout, never
// longer.
func (e *Executor) RunTick(ctx context.Context) {
	start := time.Now()

	var wg sync.WaitGroup
	for _, symbol := range e.symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			e.evaluateSymbol(ctx, symbol)
		}(symbol)
	}
	wg.Wait()

	e.metrics.BufferSize.Set(float64(e.buffer.Len()))

	log.Debug().
		Int("symbols", len(e.symbols)).
		Dur("elapsed", time.Since(start)).
		Msg("Evaluation tick completed")
}

// evaluateSymbol queries all providers for one symbol under a shared
// deadline and appends the resulting signal. Providers that error, hang, or
// get cut off by the deadline contribute nothing; the analyzer degrades the
// missing components to neutral defaults.
func (e *Executor) evaluateSymbol(ctx context.Context, symbol string) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	set := e.collectScores(ctx, symbol)
	sig := e.analyzer.Evaluate(symbol, set)
	e.buffer.Append(sig)

	result := "complete"
	if len(set) < len(e.providers) {
		result = "degraded"
	}
	e.metrics.EvalDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	e.metrics.SymbolsScored.Inc()
}

type fetchResult struct {
	component confluence.ComponentKind
	scores    []confluence.ComponentScore
	err       error
	provider  string
}

// collectScores fans out to every provider and gathers whatever arrives
// before ctx expires. A hung provider's goroutine is abandoned at the
// deadline; its eventual result is dropped on the buffered channel.
func (e *Executor) collectScores(ctx context.Context, symbol string) confluence.ScoreSet {
	results := make(chan fetchResult, len(e.providers))

	for _, p := range e.providers {
		go func(p providers.ComponentScoreProvider) {
			scores, err := p.Fetch(ctx, symbol)
			results <- fetchResult{
				component: p.Component(),
				scores:    scores,
				err:       err,
				provider:  p.Name(),
			}
		}(p)
	}

	set := make(confluence.ScoreSet, len(e.providers))
	for received := 0; received < len(e.providers); received++ {
		select {
		case res := <-results:
			if res.err != nil {
				e.metrics.ProviderErrors.WithLabelValues(res.provider, reason(res.err)).Inc()
				log.Debug().
					Err(res.err).
					Str("provider", res.provider).
					Str("symbol", symbol).
					Msg("Provider fetch failed, component treated as missing")
				continue
			}
			set[res.component] = append(set[res.component], res.scores...)
		case <-ctx.Done():
			e.metrics.ProviderErrors.WithLabelValues("", "deadline").Inc()
			return set
		}
	}
	return set
}

func reason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
