package contracts

import (
	"strings"
	"time"
)

// ContractType identifies the option side.
type ContractType string

const (
	Call ContractType = "call"
	Put  ContractType = "put"
)

// ParseContractType normalizes a raw side string ("call", "CALL", "c", ...)
// into a ContractType. The second return value reports whether the input
// named a known side.
func ParseContractType(s string) (ContractType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, true
	case "put", "p":
		return Put, true
	default:
		return "", false
	}
}

// OptionContract is a single row of an options-chain snapshot, already
// resolved to one underlying. Instances are treated as immutable once built.
type OptionContract struct {
	Symbol       string       `json:"symbol"`
	Expiry       time.Time    `json:"expiry"`
	Strike       float64      `json:"strike"`
	Type         ContractType `json:"type"`
	Volume       int64        `json:"volume"`
	OpenInterest int64        `json:"open_interest"`
	IV           float64      `json:"iv"`      // implied volatility, fractional (0.09 = 9%)
	Delta        float64      `json:"delta"`   // roughly [-1, 1]
	Premium      float64      `json:"premium"` // mid or fair-value price
}

// ExpiryDate renders the expiry at date precision (YYYY-MM-DD).
func (c *OptionContract) ExpiryDate() string {
	return c.Expiry.Format("2006-01-02")
}
