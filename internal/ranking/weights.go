package ranking

import (
	"errors"
	"fmt"
)

// DefaultPopularityHalf is the popularity count that contributes half of the popularity weight.
const DefaultPopularityHalf = 100.0

// Weights are the blend coefficients. Only their ratios matter.
type Weights struct {
	Semantic   float64 `yaml:"semantic"`
	Geo        float64 `yaml:"geo"`
	Trust      float64 `yaml:"trust"`
	Popularity float64 `yaml:"popularity"`
}

// DefaultWeights returns the shipped calibration.
//
// Semantic match dominates; proximity is the next strongest signal; verified
// status and recent popularity act as tie-breakers. Max score without
// location: 0.8.
func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.6,
		Geo:        0.2,
		Trust:      0.1,
		Popularity: 0.1,
	}
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Semantic + w.Geo + w.Trust + w.Popularity
}

// Validate checks that weights are non-negative and not all zero.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Geo < 0 || w.Trust < 0 || w.Popularity < 0 {
		return errors.New("ranking weights must be non-negative")
	}
	if w.Sum() <= 0 {
		return errors.New("ranking weights must not all be zero")
	}
	return nil
}

// Merge overlays non-zero fields of override onto w.
func (w Weights) Merge(override Weights) Weights {
	if override.Semantic != 0 {
		w.Semantic = override.Semantic
	}
	if override.Geo != 0 {
		w.Geo = override.Geo
	}
	if override.Trust != 0 {
		w.Trust = override.Trust
	}
	if override.Popularity != 0 {
		w.Popularity = override.Popularity
	}
	return w
}

// WeightOverrides sets individual weights from configuration. Nil fields keep
// the base value, so an explicit zero disables a signal.
type WeightOverrides struct {
	Semantic   *float64 `yaml:"semantic"`
	Geo        *float64 `yaml:"geo"`
	Trust      *float64 `yaml:"trust"`
	Popularity *float64 `yaml:"popularity"`
}

// Apply returns base with every non-nil override written over it.
func (o WeightOverrides) Apply(base Weights) Weights {
	if o.Semantic != nil {
		base.Semantic = *o.Semantic
	}
	if o.Geo != nil {
		base.Geo = *o.Geo
	}
	if o.Trust != nil {
		base.Trust = *o.Trust
	}
	if o.Popularity != nil {
		base.Popularity = *o.Popularity
	}
	return base
}

// Blender computes final scores with fixed weights. Safe for concurrent use.
type Blender struct {
	w    Weights
	sum  float64
	half float64
}

// NewBlender validates weights and creates a Blender.
func NewBlender(w Weights, popularityHalf float64) (*Blender, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if popularityHalf <= 0 {
		return nil, fmt.Errorf("popularity half must be positive, got %v", popularityHalf)
	}
	return &Blender{w: w, sum: w.Sum(), half: popularityHalf}, nil
}

// Default returns a Blender with DefaultWeights.
func Default() *Blender {
	b, _ := NewBlender(DefaultWeights(), DefaultPopularityHalf)
	return b
}

// Weights returns the configured coefficients.
func (b *Blender) Weights() Weights { return b.w }

// Blend combines the signals into a score in [0,1].
func (b *Blender) Blend(semantic, geo, trust, popularity float64) float64 {
	s := b.w.Semantic*unit(semantic) +
		b.w.Geo*unit(geo) +
		b.w.Trust*unit(trust) +
		b.w.Popularity*b.PopularityScore(popularity)
	return unit(s / b.sum)
}

// PopularityScore saturates a raw count into [0,1).
func (b *Blender) PopularityScore(popularity float64) float64 {
	if popularity <= 0 {
		return 0
	}
	return popularity / (popularity + b.half)
}

func unit(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
