// Package main runs the holdings comparison HTTP server:
// - Fund and institution listings
// - Fund-vs-institution comparison with fuzzy matching and caching
// - Multi-fund overlap analysis
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"fund-overlap-lab/internal/comparison"
	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/expansion"
	"fund-overlap-lab/internal/observability"
	"fund-overlap-lab/internal/overlap"
	"fund-overlap-lab/internal/storage"
	chstore "fund-overlap-lab/internal/storage/clickhouse"
	"fund-overlap-lab/internal/storage/memory"
	"fund-overlap-lab/internal/storage/migrations"
	pgstore "fund-overlap-lab/internal/storage/postgres"
)

// Server holds all components of the comparison service.
type Server struct {
	stores     *allStores
	comparator *comparison.Comparator
	expander   *expansion.Expander
	logger     *log.Logger

	defaultThreshold int
}

// allStores holds all storage implementations.
type allStores struct {
	fundStore        storage.FundStore
	institutionStore storage.InstitutionStore
	holdingsStore    storage.HoldingsStore
	comparisonStore  storage.ComparisonStore
	snapshotStore    storage.OverlapSnapshotStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	addr := flag.String("addr", ":8080", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	migrate := flag.Bool("migrate", false, "Run database migrations on startup")
	threshold := flag.Int("threshold", comparison.DefaultThreshold, "Default fuzzy match threshold (0-100)")
	cacheMaxAge := flag.Duration("cache-max-age", comparison.DefaultMaxAge, "Max age before a cached comparison is recomputed")
	refreshInterval := flag.Duration("refresh-interval", 0, "Interval between background cache refresh sweeps (0 disables)")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory, *migrate)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	expander := expansion.New(stores.holdingsStore, log.New(os.Stdout, "[expansion] ", log.LstdFlags))
	cache := comparison.NewCache(stores.comparisonStore, *cacheMaxAge, logger)
	comparator := comparison.NewComparator(
		stores.fundStore,
		stores.institutionStore,
		stores.holdingsStore,
		expander,
		cache,
		logger,
	)

	server := &Server{
		stores:           stores,
		comparator:       comparator,
		expander:         expander,
		logger:           logger,
		defaultThreshold: *threshold,
	}

	if *refreshInterval > 0 {
		go server.refreshLoop(ctx, *refreshInterval)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/api/funds", server.handleFunds)
	mux.HandleFunc("/api/institutions", server.handleInstitutions)
	mux.HandleFunc("/api/compare", server.handleCompare)
	mux.HandleFunc("/api/overlap", server.handleOverlap)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, optionally running
// migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory, migrate bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			fundStore:        memory.NewFundStore(),
			institutionStore: memory.NewInstitutionStore(),
			holdingsStore:    memory.NewHoldingsStore(),
			comparisonStore:  memory.NewComparisonStore(),
			snapshotStore:    memory.NewOverlapSnapshotStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
	}

	stores := &allStores{
		fundStore:        pgstore.NewFundStore(pool),
		institutionStore: pgstore.NewInstitutionStore(pool),
		holdingsStore:    pgstore.NewHoldingsStore(pool),
		comparisonStore:  pgstore.NewComparisonStore(pool),
	}

	cleanup := func() { pool.Close() }

	// ClickHouse is optional: without it overlap runs are still served,
	// they are just not persisted.
	if clickhouseDSN != "" {
		var chConn *chstore.Conn
		if migrate {
			chConn, err = migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
		} else {
			chConn, err = chstore.NewConn(ctx, clickhouseDSN)
		}
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		stores.snapshotStore = chstore.NewOverlapSnapshotStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}

	return stores, cleanup, nil
}

// handleFunds returns all known funds as JSON.
func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.stores.fundStore.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, funds)
}

// handleInstitutions returns all known institutions as JSON.
func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	institutions, err := s.stores.institutionStore.GetAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, institutions)
}

// handleCompare runs a fund-vs-institution comparison.
//
// GET /api/compare?fund=SPY&institution=0001067983&threshold=80
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	fund := strings.TrimSpace(r.URL.Query().Get("fund"))
	institution := strings.TrimSpace(r.URL.Query().Get("institution"))
	if fund == "" || institution == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("fund and institution query parameters are required"))
		return
	}

	threshold := s.defaultThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid threshold %q", raw))
			return
		}
		threshold = v
	}

	result, err := s.comparator.Compare(r.Context(), fund, institution, threshold)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// overlapResponse is the JSON response for /api/overlap.
type overlapResponse struct {
	Funds   []string                 `json:"funds"`
	Entries []domain.OverlapEntry    `json:"entries"`
	Matrix  [][]int                  `json:"matrix"`
	Metrics domain.RedundancyMetrics `json:"metrics"`
}

// handleOverlap runs an overlap analysis across two or more funds.
//
// GET /api/overlap?funds=SPY,QQQ,VTI&min_overlap=2&min_value=0
func (s *Server) handleOverlap(w http.ResponseWriter, r *http.Request) {
	rawFunds := strings.TrimSpace(r.URL.Query().Get("funds"))
	if rawFunds == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("funds query parameter is required"))
		return
	}

	tickers := splitList(rawFunds)
	if len(tickers) < 2 {
		writeError(w, http.StatusBadRequest, overlap.ErrNotEnoughFunds)
		return
	}

	minOverlap := 2
	if raw := r.URL.Query().Get("min_overlap"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid min_overlap %q", raw))
			return
		}
		minOverlap = v
	}
	minValue := 0.0
	if raw := r.URL.Query().Get("min_value"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid min_value %q", raw))
			return
		}
		minValue = v
	}

	holdingsByFund, err := s.loadHoldings(r.Context(), tickers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	entries, err := overlap.Aggregate(holdingsByFund)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	filtered := overlap.Filter(entries, minOverlap, minValue)
	sort.Strings(tickers)

	resp := overlapResponse{
		Funds:   tickers,
		Entries: filtered,
		Matrix:  overlap.Matrix(filtered, tickers),
		Metrics: overlap.Metrics(filtered),
	}

	// Persist a snapshot when a snapshot store is configured. Failure
	// to persist never fails the request.
	if s.stores.snapshotStore != nil {
		snap := &domain.OverlapSnapshot{
			RunID:               fmt.Sprintf("%s-%d", strings.Join(tickers, "+"), time.Now().UnixMilli()),
			Funds:               tickers,
			EntryCount:          len(filtered),
			OverlapCount:        resp.Metrics.OverlapCount,
			TotalRedundantValue: resp.Metrics.TotalRedundantValue,
			MaxOverlap:          resp.Metrics.MaxOverlap,
			CreatedAt:           time.Now().UnixMilli(),
		}
		if err := s.stores.snapshotStore.Insert(r.Context(), snap); err != nil {
			s.logger.Printf("Failed to persist overlap snapshot: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// refreshLoop periodically re-runs every fund-vs-institution comparison.
// Fresh cache entries are served as-is, so each sweep only recomputes
// pairs whose cached result has expired.
func (s *Server) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshComparisons(ctx)
		}
	}
}

func (s *Server) refreshComparisons(ctx context.Context) {
	funds, err := s.stores.fundStore.GetAll(ctx)
	if err != nil {
		s.logger.Printf("Refresh: failed to list funds: %v", err)
		return
	}
	institutions, err := s.stores.institutionStore.GetAll(ctx)
	if err != nil {
		s.logger.Printf("Refresh: failed to list institutions: %v", err)
		return
	}

	refreshed := 0
	for _, fund := range funds {
		for _, inst := range institutions {
			if ctx.Err() != nil {
				return
			}
			if _, err := s.comparator.Compare(ctx, fund.Ticker, inst.ID, s.defaultThreshold); err != nil {
				s.logger.Printf("Refresh: compare %s vs %s: %v", fund.Ticker, inst.ID, err)
				continue
			}
			refreshed++
		}
	}
	s.logger.Printf("Refresh sweep complete: %d comparisons", refreshed)
}

// loadHoldings loads holdings for each ticker, expanding fund-of-funds
// so overlap is computed over underlying securities.
func (s *Server) loadHoldings(ctx context.Context, tickers []string) (map[string]domain.HoldingsSet, error) {
	out := make(map[string]domain.HoldingsSet, len(tickers))
	for _, ticker := range tickers {
		set, err := s.stores.holdingsStore.GetByKey(ctx, ticker)
		if err != nil {
			return nil, fmt.Errorf("load holdings for %s: %w", ticker, err)
		}
		if domain.Classify(set.Records) == domain.FundTypeFundOfFunds {
			if expanded := s.expander.ExpandUnderlying(ctx, set); !expanded.Empty() {
				set = expanded
			}
		}
		out[ticker] = set
	}
	return out, nil
}

// splitList splits a comma-separated list, trimming and dropping empty
// items.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
