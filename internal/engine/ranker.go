package engine

import (
	"sort"

	"github.com/optionscout/optionscout/internal/contracts"
)

// Ranker scores and orders option contracts under a fixed weight
// configuration. It is a pure computation with no I/O, no clock and no
// shared state, so a single Ranker is safe for concurrent use.
type Ranker struct {
	weights WeightConfig
}

// NewRanker creates a ranker with the given weights. Callers validate the
// weights up front (see WeightConfig.ValidateWeights).
func NewRanker(weights WeightConfig) *Ranker {
	return &Ranker{weights: weights}
}

// Weights returns the ranker's weight configuration.
func (r *Ranker) Weights() WeightConfig {
	return r.weights
}

// RankTop scores every contract in the batch, orders them by composite score
// descending, and returns the top n together with the formatted digest.
// Exact score ties break by volume descending, then symbol ascending, never
// by input order, so output is reproducible across reordered batches. A
// batch smaller than n comes back whole.
//
// The call is all-or-nothing: an empty batch fails with ErrEmptyBatch, a
// non-positive n or a malformed contract field fails with
// InvalidParameterError, and no partial ranking is ever returned.
func (r *Ranker) RankTop(batch []contracts.OptionContract, n int) (*contracts.RankedResult, error) {
	if n <= 0 {
		return nil, &InvalidParameterError{Param: "n", Reason: "must be at least 1"}
	}
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	for i := range batch {
		if err := validateContract(&batch[i]); err != nil {
			return nil, err
		}
	}

	volumes := make([]float64, len(batch))
	interests := make([]float64, len(batch))
	ivs := make([]float64, len(batch))
	for i := range batch {
		volumes[i] = float64(batch[i].Volume)
		interests[i] = float64(batch[i].OpenInterest)
		ivs[i] = batch[i].IV
	}
	normVolume := normalizeValues(volumes)
	normInterest := normalizeValues(interests)
	normIV := normalizeValues(ivs)

	scored := make([]contracts.ScoredContract, len(batch))
	for i := range batch {
		components := contracts.ScoreComponents{
			Volume:       normVolume[i],
			OpenInterest: normInterest[i],
			IV:           normIV[i],
			Premium:      premiumSignal(batch[i].Premium),
			Delta:        deltaSignal(batch[i].Delta),
		}
		scored[i] = contracts.ScoredContract{
			OptionContract: batch[i],
			Score:          r.compositeScore(components),
			Components:     components,
		}
	}

	// Sort by score (descending), ties by volume then symbol
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].Volume != scored[j].Volume {
			return scored[i].Volume > scored[j].Volume
		}
		return scored[i].Symbol < scored[j].Symbol
	})

	if n < len(scored) {
		scored = scored[:n]
	}

	// Assign ranks
	for i := range scored {
		scored[i].Rank = i + 1
	}

	return &contracts.RankedResult{
		Contracts: scored,
		Digest:    FormatDigest(scored),
	}, nil
}

// RankTopContracts ranks a batch under the balanced default weights.
func RankTopContracts(batch []contracts.OptionContract, n int) (*contracts.RankedResult, error) {
	return NewRanker(DefaultWeightConfig()).RankTop(batch, n)
}
