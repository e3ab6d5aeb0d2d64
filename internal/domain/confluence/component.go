package confluence

import "fmt"

// ComponentKind identifies one analysis dimension feeding the composite score.
type ComponentKind int

const (
	ComponentTechnical ComponentKind = iota
	ComponentVolume
	ComponentOrderflow
	ComponentOrderbook
	ComponentSentiment
	ComponentPriceStructure
)

var componentNames = map[ComponentKind]string{
	ComponentTechnical:      "technical",
	ComponentVolume:         "volume",
	ComponentOrderflow:      "orderflow",
	ComponentOrderbook:      "orderbook",
	ComponentSentiment:      "sentiment",
	ComponentPriceStructure: "price_structure",
}

// AllComponents lists every known component kind in declaration order.
func AllComponents() []ComponentKind {
	return []ComponentKind{
		ComponentTechnical,
		ComponentVolume,
		ComponentOrderflow,
		ComponentOrderbook,
		ComponentSentiment,
		ComponentPriceStructure,
	}
}

func (c ComponentKind) String() string {
	if name, ok := componentNames[c]; ok {
		return name
	}
	return fmt.Sprintf("component(%d)", int(c))
}

// ParseComponentKind maps a config name to its ComponentKind. Unknown names
// are a configuration error so misspelled components fail at load time
// instead of being silently dropped.
func ParseComponentKind(name string) (ComponentKind, error) {
	for kind, n := range componentNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown component %q", name)
}

// MarshalText makes ComponentKind usable as a JSON object key.
func (c ComponentKind) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses a component name, for decoding cached payloads.
func (c *ComponentKind) UnmarshalText(text []byte) error {
	kind, err := ParseComponentKind(string(text))
	if err != nil {
		return err
	}
	*c = kind
	return nil
}

// Timeframe identifies the horizon a component score was computed over.
type Timeframe int

const (
	TimeframeBase Timeframe = iota
	TimeframeShort
	TimeframeMedium
	TimeframeLong
)

var timeframeNames = map[Timeframe]string{
	TimeframeBase:   "base",
	TimeframeShort:  "short",
	TimeframeMedium: "medium",
	TimeframeLong:   "long",
}

func (t Timeframe) String() string {
	if name, ok := timeframeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("timeframe(%d)", int(t))
}

// ComponentScore is one analysis dimension's output for a symbol/timeframe.
// Value and Confidence are clamped at construction so nothing outside
// [0,100] / [0,1] crosses the provider boundary.
type ComponentScore struct {
	Component  ComponentKind `json:"component"`
	Value      float64       `json:"value"`
	Confidence float64       `json:"confidence"`
	Timeframe  Timeframe     `json:"timeframe"`
}

// NewComponentScore builds a ComponentScore with range clamping applied.
func NewComponentScore(kind ComponentKind, value, confidence float64, tf Timeframe) ComponentScore {
	return ComponentScore{
		Component:  kind,
		Value:      Clamp(value, 0, 100),
		Confidence: Clamp01(confidence),
		Timeframe:  tf,
	}
}

// ScoreSet holds all timeframe observations collected for one symbol in a
// single evaluation tick, keyed by component.
type ScoreSet map[ComponentKind][]ComponentScore
