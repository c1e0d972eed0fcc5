package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/optionscout/optionscout/internal/contracts"
)

func TestFormatDigest_Empty(t *testing.T) {
	got := FormatDigest(nil)
	want := "Top 0 option contracts by composite score:"
	if got != want {
		t.Errorf("FormatDigest(nil) = %q, want %q", got, want)
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("digest must not carry a trailing newline")
	}
}

func TestFormatDigest_FixedPrecision(t *testing.T) {
	ranked := []contracts.ScoredContract{
		{
			OptionContract: contracts.OptionContract{
				Symbol:       "O:QQQ250221C00400000",
				Expiry:       time.Date(2025, 2, 21, 0, 0, 0, 0, time.UTC),
				Strike:       400.5,
				Type:         contracts.Call,
				Volume:       12345,
				OpenInterest: 678,
				IV:           0.095432,
				Delta:        0.6849,
				Premium:      1.8849,
			},
			Score: 0.81,
			Rank:  1,
		},
	}

	got := FormatDigest(ranked)
	want := "Top 1 option contracts by composite score:\n" +
		"- O:QQQ250221C00400000 | expiry=2025-02-21 strike=400.50 volume=12345 OI=678 IV=0.0954 delta=0.68 premium=1.88"
	if got != want {
		t.Errorf("FormatDigest() =\n%q\nwant\n%q", got, want)
	}

	// Same input, same bytes
	if again := FormatDigest(ranked); again != got {
		t.Error("repeated formatting of identical input diverged")
	}
}
