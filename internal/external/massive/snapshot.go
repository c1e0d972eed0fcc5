package massive

import (
	"errors"
	"strings"
	"time"

	"github.com/optionscout/optionscout/internal/contracts"
)

// ErrUnavailable marks failures where Massive is known to be down (circuit
// breaker open). Callers map it to a 503 instead of a generic upstream 502.
var ErrUnavailable = errors.New("massive unavailable")

// snapshotResponse is the envelope of GET /v3/snapshot/options/{underlying}.
type snapshotResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Results []snapshotRow `json:"results"`
	NextURL string        `json:"next_url,omitempty"`
}

// snapshotRow is one contract in the snapshot. Activity, greeks and quote
// data live in nested objects; open interest, IV and fair value sit at the
// top level.
type snapshotRow struct {
	Details struct {
		Ticker         string  `json:"ticker"`
		ExpirationDate string  `json:"expiration_date"` // YYYY-MM-DD
		StrikePrice    float64 `json:"strike_price"`
		ContractType   string  `json:"contract_type"` // "call" | "put"
	} `json:"details"`
	Day struct {
		Volume int64   `json:"volume"`
		Close  float64 `json:"close"`
	} `json:"day"`
	Greeks struct {
		Delta float64 `json:"delta"`
		Gamma float64 `json:"gamma"`
	} `json:"greeks"`
	LastQuote struct {
		Bid float64 `json:"bid"`
		Ask float64 `json:"ask"`
	} `json:"last_quote"`
	OpenInterest      int64   `json:"open_interest"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	FMV               float64 `json:"fmv"`
}

// premium derives the contract premium from the quote data: quoted mid when
// both sides are live, else fair value, else the day close.
func (r *snapshotRow) premium() float64 {
	if r.LastQuote.Bid > 0 && r.LastQuote.Ask > 0 {
		return (r.LastQuote.Bid + r.LastQuote.Ask) / 2
	}
	if r.FMV > 0 {
		return r.FMV
	}
	return r.Day.Close
}

// mapRows converts snapshot rows to OptionContract. Rows missing a ticker or
// carrying an unparseable expiry are dropped; an unknown contract type maps
// to call, matching the screener's default side.
func mapRows(rows []snapshotRow) []contracts.OptionContract {
	out := make([]contracts.OptionContract, 0, len(rows))
	for i := range rows {
		row := &rows[i]

		ticker := strings.TrimSpace(row.Details.Ticker)
		if ticker == "" {
			continue
		}

		expiry, err := time.Parse("2006-01-02", row.Details.ExpirationDate)
		if err != nil {
			continue
		}

		side, ok := contracts.ParseContractType(row.Details.ContractType)
		if !ok {
			side = contracts.Call
		}

		out = append(out, contracts.OptionContract{
			Symbol:       ticker,
			Expiry:       expiry,
			Strike:       row.Details.StrikePrice,
			Type:         side,
			Volume:       row.Day.Volume,
			OpenInterest: row.OpenInterest,
			IV:           row.ImpliedVolatility,
			Delta:        row.Greeks.Delta,
			Premium:      row.premium(),
		})
	}
	return out
}
