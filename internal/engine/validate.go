package engine

import (
	"math"

	"github.com/optionscout/optionscout/internal/contracts"
)

// validateContract rejects fields that would corrupt score comparability.
// Zero-activity contracts (volume 0, OI 0) are admissible; they rank near
// the bottom on their own.
func validateContract(c *contracts.OptionContract) error {
	if c.Volume < 0 {
		return &InvalidParameterError{Param: "volume", Symbol: c.Symbol, Reason: "must be non-negative"}
	}
	if c.OpenInterest < 0 {
		return &InvalidParameterError{Param: "open_interest", Symbol: c.Symbol, Reason: "must be non-negative"}
	}
	if !isFinite(c.IV) || c.IV < 0 {
		return &InvalidParameterError{Param: "iv", Symbol: c.Symbol, Reason: "must be finite and non-negative"}
	}
	if !isFinite(c.Premium) || c.Premium < 0 {
		return &InvalidParameterError{Param: "premium", Symbol: c.Symbol, Reason: "must be finite and non-negative"}
	}
	if !isFinite(c.Delta) {
		return &InvalidParameterError{Param: "delta", Symbol: c.Symbol, Reason: "must be finite"}
	}
	if !isFinite(c.Strike) || c.Strike <= 0 {
		return &InvalidParameterError{Param: "strike", Symbol: c.Symbol, Reason: "must be positive and finite"}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
