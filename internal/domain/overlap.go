package domain

// OverlapEntry groups one security name across the selected funds.
// Funds is the sorted set of fund identifiers holding the security.
type OverlapEntry struct {
	Name       string   `json:"name"`
	Funds      []string `json:"funds"`
	TotalValue float64  `json:"total_value"`
}

// RedundancyMetrics summarizes cross-fund duplication over a set of
// overlap entries. MaxOverlap is 1 when no security appears in more
// than one fund.
type RedundancyMetrics struct {
	OverlapCount        int     `json:"overlap_count"`
	TotalRedundantValue float64 `json:"total_redundant_value"`
	MaxOverlap          int     `json:"max_overlap"`
}

// OverlapSnapshot records one overlap run for trend analysis.
// Corresponds to overlap_snapshots table in ClickHouse.
type OverlapSnapshot struct {
	RunID               string
	Funds               []string
	EntryCount          int
	OverlapCount        int
	TotalRedundantValue float64
	MaxOverlap          int
	CreatedAt           int64 // Unix timestamp in milliseconds
}
