package contracts

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseContractType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ContractType
		ok    bool
	}{
		{name: "lowercase call", input: "call", want: Call, ok: true},
		{name: "uppercase put", input: "PUT", want: Put, ok: true},
		{name: "single letter", input: "c", want: Call, ok: true},
		{name: "padded", input: "  put ", want: Put, ok: true},
		{name: "unknown side", input: "straddle", want: "", ok: false},
		{name: "empty", input: "", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseContractType(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseContractType(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestOptionContract_ExpiryDate(t *testing.T) {
	c := OptionContract{
		Symbol: "O:SPY250117C00470000",
		Expiry: time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
	}
	if got := c.ExpiryDate(); got != "2025-01-17" {
		t.Errorf("ExpiryDate() = %q, want %q", got, "2025-01-17")
	}
}

func TestScoredContract_FlatJSON(t *testing.T) {
	s := ScoredContract{
		OptionContract: OptionContract{
			Symbol:       "O:SPY250117C00470000",
			Expiry:       time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
			Strike:       470,
			Type:         Call,
			Volume:       81188,
			OpenInterest: 2908,
			IV:           0.09,
			Delta:        0.69,
			Premium:      1.88,
		},
		Score: 0.7475,
		Rank:  1,
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	// Contract fields must sit at the top level next to score and rank,
	// not under a nested object.
	for _, key := range []string{"symbol", "volume", "open_interest", "score", "rank"} {
		if _, present := flat[key]; !present {
			t.Errorf("marshalled ScoredContract missing top-level key %q", key)
		}
	}
}

func TestRankedResult_Top(t *testing.T) {
	empty := RankedResult{}
	if empty.Top() != nil {
		t.Error("Top() on empty result should be nil")
	}

	res := RankedResult{Contracts: []ScoredContract{
		{OptionContract: OptionContract{Symbol: "A"}, Rank: 1, Score: 0.9},
		{OptionContract: OptionContract{Symbol: "B"}, Rank: 2, Score: 0.4},
	}}
	if top := res.Top(); top == nil || top.Symbol != "A" {
		t.Errorf("Top() = %+v, want symbol A", res.Top())
	}
	if got := res.Symbols(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("Symbols() = %v, want [A B]", got)
	}
}
