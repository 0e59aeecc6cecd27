// Package matching reconciles two independently sourced holdings sets.
// An exact ticker pass runs first; leftovers go through a bounded fuzzy
// name pass. Matching is greedy and first-come-first-served on both
// passes, which bounds cost at the price of occasionally missing a
// better pairing. That trade-off is intentional: the alternative is an
// optimal assignment over thousands of rows per side.
package matching

import (
	"fmt"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/observability"
)

// MaxFuzzyComparisons caps both the number of unmatched fund records
// entering the fuzzy pass and the number of institution names they are
// compared against. Fuzzy scoring is pairwise, so without a cap a large
// filing degrades to minutes of CPU.
const MaxFuzzyComparisons = 500

// Outcome is the result of matching holdings set A against set B.
type Outcome struct {
	Matches    []domain.MatchResult
	PctByCount float64
	PctByValue float64
}

// Match pairs records of a against records of b. threshold is the
// minimum acceptable fuzzy name score (0-100). Empty inputs yield an
// empty outcome with zero percentages, never an error.
func Match(a, b domain.HoldingsSet, threshold int) Outcome {
	if a.Empty() || b.Empty() {
		return Outcome{}
	}

	totalValue := a.TotalValue()

	var (
		matches      []domain.MatchResult
		matchedValue float64
	)

	// First pass: exact ticker matches. B records are indexed by
	// normalized ticker, first occurrence wins.
	instByTicker := make(map[string]int, len(b.Records))
	for i, rec := range b.Records {
		if rec.Ticker == nil {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(*rec.Ticker))
		if _, exists := instByTicker[ticker]; !exists {
			instByTicker[ticker] = i
		}
	}

	consumedB := make(map[int]bool)
	matchedA := make(map[int]bool)

	for i, rec := range a.Records {
		if rec.Ticker == nil {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(*rec.Ticker))
		j, ok := instByTicker[ticker]
		if !ok || consumedB[j] {
			continue
		}

		matches = append(matches, newMatch(rec, b.Records[j], domain.MatchTypeTicker))
		matchedValue += rec.Value
		matchedA[i] = true
		consumedB[j] = true
		observability.DefaultMetrics.MatchesFound.WithLabelValues("ticker").Inc()
	}

	// Second pass: fuzzy name matching over the remainder, bounded on
	// both sides.
	unmatched := make([]int, 0, len(a.Records))
	for i := range a.Records {
		if !matchedA[i] {
			unmatched = append(unmatched, i)
		}
	}
	if len(unmatched) > MaxFuzzyComparisons {
		// Prefer the highest-value records when over the cap.
		sort.SliceStable(unmatched, func(x, y int) bool {
			return a.Records[unmatched[x]].Value > a.Records[unmatched[y]].Value
		})
		unmatched = unmatched[:MaxFuzzyComparisons]
	}

	type target struct {
		index int
		name  string
	}
	var targets []target
	for j, rec := range b.Records {
		if consumedB[j] {
			continue
		}
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}
		targets = append(targets, target{index: j, name: name})
		if len(targets) == MaxFuzzyComparisons {
			break
		}
	}

	for _, i := range unmatched {
		rec := a.Records[i]
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			continue
		}

		bestScore := 0
		bestTarget := -1
		for t, tgt := range targets {
			if consumedB[tgt.index] {
				continue
			}
			// Cheap pre-filter: clearly dissimilar names rarely share
			// a first character.
			if !strings.EqualFold(name[:1], tgt.name[:1]) {
				continue
			}
			observability.DefaultMetrics.FuzzyComparisons.Inc()
			score := fuzzy.Ratio(strings.ToLower(name), strings.ToLower(tgt.name))
			// Ties keep the first-encountered target.
			if score >= threshold && score > bestScore {
				bestScore = score
				bestTarget = t
			}
		}

		if bestTarget < 0 {
			continue
		}

		tgt := targets[bestTarget]
		matches = append(matches, newMatch(rec, b.Records[tgt.index],
			fmt.Sprintf("%s%d", domain.MatchTypeNamePrefix, bestScore)))
		matchedValue += rec.Value
		consumedB[tgt.index] = true
		observability.DefaultMetrics.MatchesFound.WithLabelValues("name").Inc()
	}

	outcome := Outcome{Matches: matches}
	outcome.PctByCount = float64(len(matches)) / float64(len(a.Records)) * 100
	if totalValue > 0 {
		outcome.PctByValue = matchedValue / totalValue * 100
	}
	return outcome
}

func newMatch(fund, inst domain.HoldingsRecord, matchType string) domain.MatchResult {
	return domain.MatchResult{
		Name:             fund.Name,
		Ticker:           fund.Ticker,
		MatchType:        matchType,
		FundValue:        fund.Value,
		FundPct:          fund.Percentage,
		InstitutionValue: inst.Value,
		InstitutionPct:   inst.Percentage,
		ParentFundName:   fund.ParentFundName,
		ParentFundTicker: fund.ParentFundTicker,
	}
}
