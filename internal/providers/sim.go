package providers

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/oppscan/oppscan/internal/domain/confluence"
)

// SimProvider is a deterministic synthetic score source used by offline
// scans and tests. Scores derive from a hash of (seed, symbol, component,
// timeframe), so repeated runs with the same seed produce identical output.
type SimProvider struct {
	name      string
	component confluence.ComponentKind
	seed      int64
	frames    []confluence.Timeframe
}

// NewSimProvider creates a synthetic provider for one component covering the
// given timeframes. An empty frame list defaults to base/short/long.
func NewSimProvider(component confluence.ComponentKind, seed int64, frames ...confluence.Timeframe) *SimProvider {
	if len(frames) == 0 {
		frames = []confluence.Timeframe{
			confluence.TimeframeBase,
			confluence.TimeframeShort,
			confluence.TimeframeLong,
		}
	}
	return &SimProvider{
		name:      "sim_" + component.String(),
		component: component,
		seed:      seed,
		frames:    frames,
	}
}

func (s *SimProvider) Name() string {
	return s.name
}

func (s *SimProvider) Component() confluence.ComponentKind {
	return s.component
}

func (s *SimProvider) Fetch(ctx context.Context, symbol string) ([]confluence.ComponentScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores := make([]confluence.ComponentScore, 0, len(s.frames))
	for _, tf := range s.frames {
		rng := rand.New(rand.NewSource(s.sourceFor(symbol, tf)))

		// Center values on a per-symbol bias so a symbol's frames mostly
		// agree, with occasional divergence.
		bias := 35 + 30*rng.Float64()
		value := bias + 20*(rng.Float64()-0.5)
		conf := 0.5 + 0.5*math.Abs(math.Sin(float64(s.sourceFor(symbol, tf)%360)))

		scores = append(scores, confluence.NewComponentScore(s.component, value, conf, tf))
	}
	return scores, nil
}

func (s *SimProvider) sourceFor(symbol string, tf confluence.Timeframe) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	h.Write([]byte(s.component.String()))
	h.Write([]byte{byte(tf)})
	return s.seed ^ int64(h.Sum64())
}
