// Package signalbuf holds the time-windowed signal log shared by the
// evaluation and serving cadences, and the dedup/rank step that reduces it
// to the served top-N view.
package signalbuf

import (
	"fmt"
	"sync"
	"time"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// Buffer is an append-only, time-windowed log of signals across all symbols.
// Appends come from concurrent per-symbol evaluation goroutines; snapshots
// and eviction run on the serving cadence. The mutex is the only shared
// mutable state in the core pipeline.
type Buffer struct {
	mu      sync.RWMutex
	entries []confluence.Signal

	window time.Duration
	now    func() time.Time
}

// NewBuffer creates a buffer covering the trailing window. The clock is
// injected so tests can drive windowing deterministically.
func NewBuffer(window time.Duration, now func() time.Time) (*Buffer, error) {
	if window <= 0 {
		return nil, fmt.Errorf("signal buffer: window must be positive, got %s", window)
	}
	if now == nil {
		now = time.Now
	}
	return &Buffer{
		window: window,
		now:    now,
	}, nil
}

// Window returns the configured trailing window.
func (b *Buffer) Window() time.Duration {
	return b.window
}

// Append adds a signal to the log. Safe under concurrent callers; eviction
// never runs here so a burst of appends cannot stall a tick.
func (b *Buffer) Append(sig confluence.Signal) {
	b.mu.Lock()
	b.entries = append(b.entries, sig)
	b.mu.Unlock()
}

// Len reports the raw entry count, evicted or not yet evicted alike.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Snapshot returns a copy of every entry whose timestamp is within the
// window of now. Read-only; concurrent appends are safe while it runs.
// Entries outside the window are excluded even if Evict has not caught up.
func (b *Buffer) Snapshot(now time.Time) []confluence.Signal {
	cutoff := now.Add(-b.window)

	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]confluence.Signal, 0, len(b.entries))
	for _, e := range b.entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// SnapshotNow is Snapshot at the injected clock's current instant.
func (b *Buffer) SnapshotNow() []confluence.Signal {
	return b.Snapshot(b.now())
}

// Evict drops entries older than the window. Runs on its own cadence,
// decoupled from writers and snapshot readers; it holds the write lock only
// for the duration of the compaction.
func (b *Buffer) Evict(now time.Time) int {
	cutoff := now.Add(-b.window)

	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.entries[:0]
	for _, e := range b.entries {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, e)
	}
	evicted := len(b.entries) - len(kept)
	b.entries = kept
	return evicted
}

// EvictNow is Evict at the injected clock's current instant.
func (b *Buffer) EvictNow() int {
	return b.Evict(b.now())
}
