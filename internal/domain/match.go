package domain

// Match type constants. Fuzzy matches carry their score as
// "name:<score>", e.g. "name:87".
const (
	MatchTypeTicker     = "ticker"
	MatchTypeNamePrefix = "name:"
)

// MatchResult pairs one fund-side record with one institution-side
// record. Provenance fields are inherited from the fund side.
type MatchResult struct {
	Name             string  `json:"name"`
	Ticker           *string `json:"ticker,omitempty"`
	MatchType        string  `json:"match_type"` // "ticker" or "name:<score>"
	FundValue        float64 `json:"fund_value"`
	FundPct          float64 `json:"fund_pct"`
	InstitutionValue float64 `json:"institution_value"`
	InstitutionPct   float64 `json:"institution_pct"`
	ParentFundName   *string `json:"parent_fund_name,omitempty"`
	ParentFundTicker *string `json:"parent_fund_ticker,omitempty"`
}

// ComparisonResult is the persisted outcome of comparing one fund's
// holdings against one institution's filing.
// Corresponds to the payload of the comparisons table.
type ComparisonResult struct {
	FundTicker    string        `json:"fund_ticker"`
	InstitutionID string        `json:"institution_id"`
	Matches       []MatchResult `json:"matches"`
	MatchedCount  int           `json:"matched_count"`
	PctByCount    float64       `json:"pct_by_count"`
	PctByValue    float64       `json:"pct_by_value"`
	ComputedAt    int64         `json:"computed_at"` // Unix ms
}
