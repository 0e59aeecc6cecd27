// Package reporting renders comparison and overlap results as Markdown
// and CSV for the presentation layer. It consumes plain data and knows
// nothing about how results were computed.
package reporting

import (
	"time"

	"fund-overlap-lab/internal/domain"
)

// ComparisonReport is the renderable view of one fund-vs-institution
// comparison.
type ComparisonReport struct {
	GeneratedAt time.Time

	FundTicker string
	FundName   string
	FundType   string

	InstitutionID   string
	InstitutionName string

	FundHoldingsCount        int
	InstitutionHoldingsCount int
	UsedUnderlying           bool // true when a fund-of-funds was expanded first

	MatchedCount int
	PctByCount   float64
	PctByValue   float64
	Matches      []domain.MatchResult
}

// OverlapReport is the renderable view of one overlap analysis run.
type OverlapReport struct {
	GeneratedAt time.Time

	Funds      []string
	MinOverlap int
	MinValue   float64

	Entries []domain.OverlapEntry // filtered entries
	Matrix  [][]int               // co-occurrence over Funds, same order
	Metrics domain.RedundancyMetrics
}
