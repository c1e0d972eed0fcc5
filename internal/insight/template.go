package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/optionscout/optionscout/internal/contracts"
)

// TemplateExplainer renders a deterministic prose insight from the ranked
// rows alone. It is the default provider: no credentials, no network, and
// identical input always yields identical prose.
type TemplateExplainer struct{}

// NewTemplateExplainer creates a template-based explainer.
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

// Provider names the implementation for logs and metrics labels.
func (e *TemplateExplainer) Provider() string {
	return "template"
}

// Explain writes a short narrative for the ranked contracts.
func (e *TemplateExplainer) Explain(ctx context.Context, underlying string, result *contracts.RankedResult) (string, error) {
	if result == nil || len(result.Contracts) == 0 {
		return fmt.Sprintf("No option contracts stood out for %s in this snapshot.", underlying), nil
	}

	top := result.Top()

	var b strings.Builder
	fmt.Fprintf(&b, "%s options flow, top %d contracts by composite score. ",
		underlying, len(result.Contracts))
	fmt.Fprintf(&b, "%s leads with %d contracts traded against %d open interest",
		top.Symbol, top.Volume, top.OpenInterest)

	switch {
	case top.Volume > 0 && top.OpenInterest > 0 && top.Volume >= top.OpenInterest*5:
		b.WriteString(", a volume surge well past existing positioning")
	case top.Volume == 0 && top.OpenInterest == 0:
		b.WriteString(", though with no session activity to speak of")
	}
	fmt.Fprintf(&b, ". IV sits at %.1f%% with delta %.2f at the %.2f strike expiring %s.",
		top.IV*100, top.Delta, top.Strike, top.ExpiryDate())

	if len(result.Contracts) > 1 {
		rest := result.Symbols()[1:]
		fmt.Fprintf(&b, " Also ranked: %s.", strings.Join(rest, ", "))
	}

	return b.String(), nil
}
