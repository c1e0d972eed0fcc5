package engine

import "strings"

// WeightConfig defines component weights for the composite score.
type WeightConfig struct {
	Volume       float64 // session volume (balanced: 0.35)
	OpenInterest float64 // open interest (balanced: 0.25)
	IV           float64 // implied volatility (balanced: 0.20)
	Premium      float64 // squashed premium (balanced: 0.10)
	Delta        float64 // |delta| conviction (balanced: 0.10)
}

// Risk profile names accepted by ProfileWeights.
const (
	ProfileConservative = "conservative"
	ProfileBalanced     = "balanced"
	ProfileAggressive   = "aggressive"
)

// ValidateWeights checks that every weight is non-negative and the weights
// sum to 1.0.
func (w *WeightConfig) ValidateWeights() bool {
	for _, v := range []float64{w.Volume, w.OpenInterest, w.IV, w.Premium, w.Delta} {
		if v < 0 {
			return false
		}
	}
	sum := w.Volume + w.OpenInterest + w.IV + w.Premium + w.Delta
	// Allow small floating point error
	return sum >= 0.99 && sum <= 1.01
}

// DefaultWeightConfig returns the balanced profile. Volume leads, open
// interest second, IV third; premium and delta stay small bounded nudges.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Volume:       0.35,
		OpenInterest: 0.25,
		IV:           0.20,
		Premium:      0.10,
		Delta:        0.10,
	}
	// Total: 100%
}

// ConservativeWeightConfig favors settled open interest over rich IV.
func ConservativeWeightConfig() WeightConfig {
	return WeightConfig{
		Volume:       0.30,
		OpenInterest: 0.35,
		IV:           0.10,
		Premium:      0.10,
		Delta:        0.15,
	}
}

// AggressiveWeightConfig favors rich IV and directional conviction.
func AggressiveWeightConfig() WeightConfig {
	return WeightConfig{
		Volume:       0.30,
		OpenInterest: 0.15,
		IV:           0.25,
		Premium:      0.05,
		Delta:        0.25,
	}
}

// ProfileWeights resolves a risk-profile name to its weight preset. An empty
// name resolves to the balanced profile; an unknown name reports false.
func ProfileWeights(profile string) (WeightConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case ProfileConservative:
		return ConservativeWeightConfig(), true
	case ProfileBalanced, "":
		return DefaultWeightConfig(), true
	case ProfileAggressive:
		return AggressiveWeightConfig(), true
	default:
		return WeightConfig{}, false
	}
}
