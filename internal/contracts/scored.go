package contracts

// ScoreComponents is the breakdown of the transformed inputs behind a
// composite score. Each component already lies in [0, 1]; the composite is
// their weighted sum.
type ScoreComponents struct {
	Volume       float64 `json:"volume"`
	OpenInterest float64 `json:"open_interest"`
	IV           float64 `json:"iv"`
	Premium      float64 `json:"premium"`
	Delta        float64 `json:"delta"`
}

// ScoredContract is an OptionContract with its composite score, 1-based
// rank, and the component breakdown that produced the score. Built fresh per
// ranking pass and never cached by the engine.
type ScoredContract struct {
	OptionContract
	Score      float64         `json:"score"`
	Rank       int             `json:"rank"`
	Components ScoreComponents `json:"components"`
}

// RankedResult carries the ordered winners of one ranking pass together with
// the digest text rendered from them.
type RankedResult struct {
	Contracts []ScoredContract `json:"contracts"`
	Digest    string           `json:"digest"`
}

// Top returns the highest-ranked contract, or nil for an empty result.
func (r *RankedResult) Top() *ScoredContract {
	if len(r.Contracts) == 0 {
		return nil
	}
	return &r.Contracts[0]
}

// Symbols lists the ranked contract symbols in order.
func (r *RankedResult) Symbols() []string {
	out := make([]string, len(r.Contracts))
	for i := range r.Contracts {
		out[i] = r.Contracts[i].Symbol
	}
	return out
}
