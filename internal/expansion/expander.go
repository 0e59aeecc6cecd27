// Package expansion flattens a fund-of-funds into its ultimate
// underlying securities, one level deep, with provenance.
package expansion

import (
	"context"
	"log"
	"sync"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/observability"
	"fund-overlap-lab/internal/storage"
)

// Expander resolves each direct holding that carries a ticker into that
// fund's own holdings. Expansion fans out one fetch per underlying
// fund, so results are memoized for the lifetime of the Expander;
// create a fresh Expander (or call Reset) to start a new session.
type Expander struct {
	holdings storage.HoldingsStore
	logger   *log.Logger

	mu   sync.Mutex
	memo map[string]domain.HoldingsSet // keyed by root fund ticker
}

// New creates an Expander reading underlying holdings from store.
func New(store storage.HoldingsStore, logger *log.Logger) *Expander {
	return &Expander{
		holdings: store,
		logger:   logger,
		memo:     make(map[string]domain.HoldingsSet),
	}
}

// ExpandUnderlying flattens root's direct holdings into underlying
// securities. Direct holdings without a ticker are pure stock positions
// and are not expandable; they are excluded from the result. A fetch
// failure or an empty underlying set skips that fund and continues:
// partial expansion is valid.
func (e *Expander) ExpandUnderlying(ctx context.Context, root domain.HoldingsSet) domain.HoldingsSet {
	e.mu.Lock()
	if cached, ok := e.memo[root.Key]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	observability.DefaultMetrics.ExpansionsComputed.Inc()

	result := domain.HoldingsSet{
		Key:         root.Key,
		RetrievedAt: root.RetrievedAt,
	}

	for _, direct := range root.Records {
		if direct.Ticker == nil {
			continue
		}
		ticker := *direct.Ticker

		observability.DefaultMetrics.ExpansionFetches.Inc()
		underlying, err := e.holdings.GetByKey(ctx, ticker)
		if err != nil {
			observability.DefaultMetrics.ExpansionFailures.Inc()
			e.logger.Printf("skipping underlying fund %s: %v", ticker, err)
			continue
		}
		if underlying.Empty() {
			e.logger.Printf("skipping underlying fund %s: no holdings loaded", ticker)
			continue
		}

		parentName := direct.Name
		parentTicker := ticker
		for _, rec := range underlying.Records {
			rec.ParentFundName = &parentName
			rec.ParentFundTicker = &parentTicker
			result.Records = append(result.Records, rec)
		}
	}

	e.mu.Lock()
	e.memo[root.Key] = result
	e.mu.Unlock()

	return result
}

// Invalidate drops the memoized expansion for a root fund ticker.
func (e *Expander) Invalidate(ticker string) {
	e.mu.Lock()
	delete(e.memo, ticker)
	e.mu.Unlock()
}

// Reset drops all memoized expansions.
func (e *Expander) Reset() {
	e.mu.Lock()
	e.memo = make(map[string]domain.HoldingsSet)
	e.mu.Unlock()
}
