package signalbuf

import (
	"sort"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// RankedSnapshot is the served view: one signal per distinct symbol, sorted
// by score descending, truncated to top-N. UniqueSymbols always equals
// len(Signals); the field exists so the dedup invariant stays auditable
// downstream.
type RankedSnapshot struct {
	Signals       []confluence.Signal `json:"signals"`
	UniqueSymbols int                 `json:"unique_symbols"`
}

// Rank reduces a raw windowed snapshot to one representative per symbol and
// returns the top-N by score. The representative is the symbol's
// highest-scoring entry, ties broken by the latest timestamp. Pure and
// idempotent: ranking the same entries twice yields identical output.
func Rank(entries []confluence.Signal, topN int) RankedSnapshot {
	best := make(map[string]confluence.Signal, len(entries))
	for _, e := range entries {
		cur, ok := best[e.Symbol]
		if !ok || better(e, cur) {
			best[e.Symbol] = e
		}
	}

	reps := make([]confluence.Signal, 0, len(best))
	for _, sig := range best {
		reps = append(reps, sig)
	}

	sort.Slice(reps, func(i, j int) bool {
		if reps[i].Score != reps[j].Score {
			return reps[i].Score > reps[j].Score
		}
		if !reps[i].Timestamp.Equal(reps[j].Timestamp) {
			return reps[i].Timestamp.After(reps[j].Timestamp)
		}
		return reps[i].Symbol < reps[j].Symbol
	})

	if topN > 0 && len(reps) > topN {
		reps = reps[:topN]
	}

	return RankedSnapshot{
		Signals:       reps,
		UniqueSymbols: len(reps),
	}
}

// better reports whether a should replace b as a symbol's representative.
func better(a, b confluence.Signal) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Timestamp.After(b.Timestamp)
}
