package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/oppscan/oppscan/internal/domain/confluence"
	"github.com/oppscan/oppscan/internal/domain/signalbuf"
)

// SnapshotKey is the well-known store key the serving layer reads.
const SnapshotKey = "oppscan:snapshot:top"

// Payload is the wire form of a published snapshot.
type Payload struct {
	ID            string          `json:"id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	UniqueSymbols int             `json:"unique_symbols"`
	Signals       []PayloadSignal `json:"signals"`
}

// PayloadSignal is one served entry with its component breakdown for
// explainability.
type PayloadSignal struct {
	Symbol         string                                                 `json:"symbol"`
	Timestamp      time.Time                                              `json:"timestamp"`
	Score          float64                                                `json:"score"`
	Confidence     float64                                                `json:"confidence"`
	Reliability    float64                                                `json:"reliability"`
	Classification string                                                 `json:"classification"`
	Components     map[confluence.ComponentKind]confluence.ComponentScore `json:"components"`
}

// Writer publishes ranked snapshots to the store. A failed write is logged
// and retried on the next serving tick; it never propagates into the
// evaluation pipeline.
type Writer struct {
	store Store
	key   string
	ttl   time.Duration
}

// NewWriter creates a writer publishing under SnapshotKey. ttl bounds how
// long a snapshot outlives a dead publisher; zero means no expiry.
func NewWriter(store Store, ttl time.Duration) *Writer {
	return &Writer{
		store: store,
		key:   SnapshotKey,
		ttl:   ttl,
	}
}

// Publish marshals snap and overwrites the previous value in the store.
func (w *Writer) Publish(ctx context.Context, snap signalbuf.RankedSnapshot, generatedAt time.Time) error {
	payload := BuildPayload(snap, generatedAt)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish: marshal snapshot: %w", err)
	}

	if err := w.store.Set(ctx, w.key, raw, w.ttl); err != nil {
		return fmt.Errorf("publish: write snapshot: %w", err)
	}

	log.Debug().
		Str("snapshot_id", payload.ID).
		Int("unique_symbols", payload.UniqueSymbols).
		Msg("Published ranked snapshot")
	return nil
}

// BuildPayload converts a ranked snapshot into its wire form.
func BuildPayload(snap signalbuf.RankedSnapshot, generatedAt time.Time) Payload {
	signals := make([]PayloadSignal, 0, len(snap.Signals))
	for _, s := range snap.Signals {
		signals = append(signals, PayloadSignal{
			Symbol:         s.Symbol,
			Timestamp:      s.Timestamp,
			Score:          s.Score,
			Confidence:     s.Confidence,
			Reliability:    s.Reliability,
			Classification: s.Classification.String(),
			Components:     s.Components,
		})
	}

	return Payload{
		ID:            uuid.NewString(),
		GeneratedAt:   generatedAt.UTC(),
		UniqueSymbols: snap.UniqueSymbols,
		Signals:       signals,
	}
}
