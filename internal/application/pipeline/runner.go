package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oppscan/oppscan/internal/application/publish"
	"github.com/oppscan/oppscan/internal/domain/signalbuf"
	httpiface "github.com/oppscan/oppscan/internal/interfaces/http"
)

// Runner drives the two cadences: evaluation ticks filling the buffer, and
// serving ticks that snapshot, rank, and publish. The cadences are
// independent timers; a slow evaluation tick never delays serving, which
// ranks whatever the buffer holds at its own scheduled instant.
type Runner struct {
	executor *Executor
	buffer   *signalbuf.Buffer
	writer   *publish.Writer
	metrics  *httpiface.MetricsRegistry

	evalInterval  time.Duration
	serveInterval time.Duration
	topN          int

	evalBusy atomic.Bool
}

// NewRunner wires the loops together.
func NewRunner(
	executor *Executor,
	buffer *signalbuf.Buffer,
	writer *publish.Writer,
	metrics *httpiface.MetricsRegistry,
	evalInterval, serveInterval time.Duration,
	topN int,
) *Runner {
	return &Runner{
		executor:      executor,
		buffer:        buffer,
		writer:        writer,
		metrics:       metrics,
		evalInterval:  evalInterval,
		serveInterval: serveInterval,
		topN:          topN,
	}
}

// Run blocks until ctx is canceled. An evaluation tick fires immediately on
// start so the first serving tick has data to rank.
func (r *Runner) Run(ctx context.Context) {
	log.Info().
		Dur("eval_interval", r.evalInterval).
		Dur("serve_interval", r.serveInterval).
		Dur("window", r.buffer.Window()).
		Int("top_n", r.topN).
		Msg("Pipeline started")

	evalTicker := time.NewTicker(r.evalInterval)
	defer evalTicker.Stop()
	serveTicker := time.NewTicker(r.serveInterval)
	defer serveTicker.Stop()

	r.evalTick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Pipeline stopped")
			return
		case <-evalTicker.C:
			r.evalTick(ctx)
		case <-serveTicker.C:
			r.serveTick(ctx)
		}
	}
}

// evalTick launches one evaluation round in the background. If the previous
// round is still running the tick is skipped rather than piled up.
func (r *Runner) evalTick(ctx context.Context) {
	if !r.evalBusy.CompareAndSwap(false, true) {
		log.Warn().Msg("Previous evaluation tick still running, skipping")
		return
	}
	go func() {
		defer r.evalBusy.Store(false)
		r.executor.RunTick(ctx)
	}()
}

// serveTick snapshots the buffer, ranks it, publishes the result, then lets
// the buffer compact. A publish failure is logged and retried on the next
// tick; consumers keep the last good snapshot meanwhile.
func (r *Runner) serveTick(ctx context.Context) {
	now := time.Now()

	entries := r.buffer.Snapshot(now)
	ranked := signalbuf.Rank(entries, r.topN)

	if err := r.writer.Publish(ctx, ranked, now); err != nil {
		r.metrics.PublishFailures.Inc()
		log.Error().Err(err).Msg("Snapshot publish failed, will retry next tick")
	} else {
		r.metrics.SnapshotSize.Set(float64(ranked.UniqueSymbols))
		log.Info().
			Int("unique_symbols", ranked.UniqueSymbols).
			Int("window_entries", len(entries)).
			Msg("Snapshot published")
	}

	evicted := r.buffer.Evict(now)
	if evicted > 0 {
		r.metrics.EvictedSignals.Add(float64(evicted))
	}
}
