package domain

import "strings"

// Fund represents a tracked fund. Corresponds to funds table in PostgreSQL.
type Fund struct {
	Ticker    string
	Name      string
	FundType  string // "fund_of_funds" | "underlying_fund"
	CreatedAt int64  // record creation timestamp (ms)
}

// Fund type constants
const (
	FundTypeFundOfFunds = "fund_of_funds"
	FundTypeUnderlying  = "underlying_fund"
)

// Classify determines a fund's type from its normalized holdings.
// A fund is a fund-of-funds when more than half of its holdings carry a
// "Fund" category. Computed on demand, never stored as mutable state.
func Classify(records []HoldingsRecord) string {
	if len(records) == 0 {
		return FundTypeUnderlying
	}

	fundCount := 0
	for _, r := range records {
		if r.Category != nil && strings.Contains(*r.Category, "Fund") {
			fundCount++
		}
	}

	if fundCount*2 > len(records) {
		return FundTypeFundOfFunds
	}
	return FundTypeUnderlying
}
