package engine

import (
	"math"

	"github.com/optionscout/optionscout/internal/contracts"
)

// premiumSignal squashes a raw premium onto [0, 1).
// log1p tames the unit scale so a deep-ITM price cannot dominate the
// composite; tanh bounds the result.
func premiumSignal(premium float64) float64 {
	return math.Tanh(math.Log1p(premium))
}

// deltaSignal maps delta to conviction magnitude on [0, 1]: |delta| capped
// at 1, so calls and puts compete on the same scale.
func deltaSignal(delta float64) float64 {
	d := math.Abs(delta)
	if d > 1.0 {
		return 1.0
	}
	return d
}

// compositeScore combines transformed components under the ranker's weights.
func (r *Ranker) compositeScore(c contracts.ScoreComponents) float64 {
	return c.Volume*r.weights.Volume +
		c.OpenInterest*r.weights.OpenInterest +
		c.IV*r.weights.IV +
		c.Premium*r.weights.Premium +
		c.Delta*r.weights.Delta
}
