package engine

import (
	"fmt"
	"strings"

	"github.com/optionscout/optionscout/internal/contracts"
)

// FormatDigest renders ranked contracts as a line-oriented block: a header
// stating the count, then one line per contract in rank order. Field order
// and precision are fixed (strike, delta and premium at two decimals, IV at
// four) so identical input always yields identical bytes. An empty sequence
// renders the header alone. No trailing newline.
func FormatDigest(ranked []contracts.ScoredContract) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Top %d option contracts by composite score:", len(ranked))
	for i := range ranked {
		c := &ranked[i]
		fmt.Fprintf(&b, "\n- %s | expiry=%s strike=%.2f volume=%d OI=%d IV=%.4f delta=%.2f premium=%.2f",
			c.Symbol, c.ExpiryDate(), c.Strike, c.Volume, c.OpenInterest, c.IV, c.Delta, c.Premium)
	}
	return b.String()
}
