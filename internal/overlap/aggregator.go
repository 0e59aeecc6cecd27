// Package overlap aggregates normalized holdings across funds into
// per-security co-occurrence entries, a symmetric fund-by-fund matrix
// and redundancy metrics.
package overlap

import (
	"errors"
	"sort"
	"strings"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/observability"
)

// ErrNotEnoughFunds is returned when fewer than two funds are selected;
// overlap is not meaningful for a single fund.
var ErrNotEnoughFunds = errors.New("overlap analysis requires at least two funds")

// Aggregate groups all records across the selected funds by security
// name. Institutional and fund sources do not reliably share tickers at
// this stage, so name is the grouping key. Entries are sorted
// by name and each entry's fund set is sorted, so output is independent
// of input ordering.
func Aggregate(holdingsByFund map[string]domain.HoldingsSet) ([]domain.OverlapEntry, error) {
	if len(holdingsByFund) < 2 {
		return nil, ErrNotEnoughFunds
	}

	observability.DefaultMetrics.OverlapRuns.Inc()

	type group struct {
		funds map[string]bool
		total float64
	}
	groups := make(map[string]*group)

	for fundID, set := range holdingsByFund {
		for _, rec := range set.Records {
			name := canonicalName(rec.Name)
			if name == "" {
				continue
			}
			g, ok := groups[name]
			if !ok {
				g = &group{funds: make(map[string]bool)}
				groups[name] = g
			}
			g.funds[fundID] = true
			g.total += rec.Value
		}
	}

	entries := make([]domain.OverlapEntry, 0, len(groups))
	for name, g := range groups {
		funds := make([]string, 0, len(g.funds))
		for f := range g.funds {
			funds = append(funds, f)
		}
		sort.Strings(funds)
		entries = append(entries, domain.OverlapEntry{
			Name:       name,
			Funds:      funds,
			TotalValue: g.total,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Filter projects entries down to those held by at least minOverlap
// funds with at least minValue combined value. It never re-aggregates,
// so different filter parameters are cheap to recompute.
func Filter(entries []domain.OverlapEntry, minOverlap int, minValue float64) []domain.OverlapEntry {
	filtered := make([]domain.OverlapEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Funds) >= minOverlap && e.TotalValue >= minValue {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Matrix builds the symmetric fund-by-fund co-occurrence matrix over
// fundIDs. matrix[i][j] counts securities present in both fund i and
// fund j; the diagonal is left at zero.
func Matrix(entries []domain.OverlapEntry, fundIDs []string) [][]int {
	index := make(map[string]int, len(fundIDs))
	for i, id := range fundIDs {
		index[id] = i
	}

	matrix := make([][]int, len(fundIDs))
	for i := range matrix {
		matrix[i] = make([]int, len(fundIDs))
	}

	for _, e := range entries {
		for x := 0; x < len(e.Funds); x++ {
			i, ok := index[e.Funds[x]]
			if !ok {
				continue
			}
			for y := x + 1; y < len(e.Funds); y++ {
				j, ok := index[e.Funds[y]]
				if !ok {
					continue
				}
				matrix[i][j]++
				matrix[j][i]++
			}
		}
	}

	return matrix
}

// Metrics computes redundancy metrics over entries. MaxOverlap reports
// 1 when no entry spans multiple funds.
func Metrics(entries []domain.OverlapEntry) domain.RedundancyMetrics {
	m := domain.RedundancyMetrics{MaxOverlap: 1}
	for _, e := range entries {
		if len(e.Funds) > 1 {
			m.OverlapCount++
			m.TotalRedundantValue += e.TotalValue
		}
		if len(e.Funds) > m.MaxOverlap {
			m.MaxOverlap = len(e.Funds)
		}
	}
	return m
}

// canonicalName trims a security name for use as a grouping key.
func canonicalName(name string) string {
	return strings.TrimSpace(name)
}
