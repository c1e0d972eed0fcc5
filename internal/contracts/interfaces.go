package contracts

import "context"

// ChainProvider supplies the raw options-chain snapshot for one underlying.
// Implementations own fetching, retries and rate limits; the rows they
// return are already mapped to OptionContract and filtered to a single
// underlying.
type ChainProvider interface {
	FetchChain(ctx context.Context, underlying string) ([]OptionContract, error)
}

// Explainer turns a ranked result into prose for the caller. The engine
// never depends on it; only the screening service does, so the generator
// can be swapped (template, model call) without touching scoring logic.
type Explainer interface {
	Explain(ctx context.Context, underlying string, result *RankedResult) (string, error)

	// Provider names the implementation ("template", "model") for logging
	// and metrics labels.
	Provider() string
}
