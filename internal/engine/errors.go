package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch reports a ranking request carrying zero contracts. The
// engine never degrades to a partial result; callers decide whether an empty
// chain is a not-found or an upstream fault.
var ErrEmptyBatch = errors.New("empty contract batch")

// InvalidParameterError reports a malformed ranking input: a non-positive n,
// or a contract field that would corrupt score comparability if silently
// clamped. Values are never clamped; the whole invocation fails.
type InvalidParameterError struct {
	Param  string // offending field ("n", "volume", "iv", ...)
	Symbol string // contract symbol, empty for batch-level parameters
	Reason string
}

func (e *InvalidParameterError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
	}
	return fmt.Sprintf("invalid parameter %s for %s: %s", e.Param, e.Symbol, e.Reason)
}
