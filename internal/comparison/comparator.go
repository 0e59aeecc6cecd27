// Package comparison compares a fund's holdings against an
// institution's 13F filing, caching the expensive match output.
package comparison

import (
	"context"
	"fmt"
	"log"
	"time"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/expansion"
	"fund-overlap-lab/internal/matching"
	"fund-overlap-lab/internal/observability"
	"fund-overlap-lab/internal/storage"
)

// DefaultThreshold is the fuzzy name score used when callers pass a
// threshold outside 0-100.
const DefaultThreshold = 80

// Comparator orchestrates one fund-vs-institution comparison:
// cache check, holdings load, fund-of-funds expansion, matching, cache
// write-back.
type Comparator struct {
	funds        storage.FundStore
	institutions storage.InstitutionStore
	holdings     storage.HoldingsStore
	expander     *expansion.Expander
	cache        *Cache
	logger       *log.Logger
}

// NewComparator creates a Comparator. cache may be nil to disable
// caching entirely.
func NewComparator(
	funds storage.FundStore,
	institutions storage.InstitutionStore,
	holdings storage.HoldingsStore,
	expander *expansion.Expander,
	cache *Cache,
	logger *log.Logger,
) *Comparator {
	return &Comparator{
		funds:        funds,
		institutions: institutions,
		holdings:     holdings,
		expander:     expander,
		cache:        cache,
		logger:       logger,
	}
}

// Compare matches fundTicker's holdings against institutionID's filing.
// Fund-of-funds are expanded to their underlying securities first.
// A cached result younger than the cache max age is returned as-is.
func (c *Comparator) Compare(ctx context.Context, fundTicker, institutionID string, threshold int) (*domain.ComparisonResult, error) {
	if threshold < 0 || threshold > 100 {
		threshold = DefaultThreshold
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, fundTicker, institutionID); ok {
			return cached, nil
		}
	}

	fund, err := c.funds.GetByTicker(ctx, fundTicker)
	if err != nil {
		return nil, fmt.Errorf("fund %s: %w", fundTicker, err)
	}
	if _, err := c.institutions.GetByID(ctx, institutionID); err != nil {
		return nil, fmt.Errorf("institution %s: %w", institutionID, err)
	}

	start := time.Now()

	fundSide, err := c.holdings.GetByKey(ctx, fund.Ticker)
	if err != nil {
		return nil, fmt.Errorf("load holdings for fund %s: %w", fund.Ticker, err)
	}

	// Fund-of-funds are compared through their underlying securities,
	// not their direct fund positions. Classification is computed from
	// the holdings on demand.
	if domain.Classify(fundSide.Records) == domain.FundTypeFundOfFunds {
		expanded := c.expander.ExpandUnderlying(ctx, fundSide)
		if !expanded.Empty() {
			fundSide = expanded
		} else {
			c.logger.Printf("fund %s expanded to no underlying securities, comparing direct holdings", fund.Ticker)
		}
	}

	instSide, err := c.holdings.GetByKey(ctx, domain.InstitutionKey(institutionID))
	if err != nil {
		return nil, fmt.Errorf("load holdings for institution %s: %w", institutionID, err)
	}

	outcome := matching.Match(fundSide, instSide, threshold)

	observability.DefaultMetrics.ComparisonsComputed.Inc()
	observability.DefaultMetrics.ComparisonDuration.Observe(time.Since(start).Seconds())

	result := &domain.ComparisonResult{
		FundTicker:    fund.Ticker,
		InstitutionID: institutionID,
		Matches:       outcome.Matches,
		MatchedCount:  len(outcome.Matches),
		PctByCount:    outcome.PctByCount,
		PctByValue:    outcome.PctByValue,
		ComputedAt:    time.Now().UnixMilli(),
	}

	if c.cache != nil {
		c.cache.Put(ctx, result)
	}

	return result, nil
}
