// Package main runs a one-shot overlap analysis across two or more
// funds, optionally persisting a run snapshot to ClickHouse.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/expansion"
	"fund-overlap-lab/internal/overlap"
	"fund-overlap-lab/internal/reporting"
	chstore "fund-overlap-lab/internal/storage/clickhouse"
	"fund-overlap-lab/internal/storage/migrations"
	pgstore "fund-overlap-lab/internal/storage/postgres"
)

func main() {
	funds := flag.String("funds", "", "Comma-separated fund tickers (at least two)")
	minOverlap := flag.Int("min-overlap", 2, "Minimum number of funds holding a security")
	minValue := flag.Float64("min-value", 0, "Minimum combined value of a security")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional, persists run snapshots)")
	migrate := flag.Bool("migrate", false, "Run database migrations first")
	format := flag.String("format", "markdown", "Output format: markdown or csv")
	output := flag.String("output", "", "Output file (default stdout)")

	flag.Parse()

	logger := log.New(os.Stdout, "[overlap] ", log.LstdFlags)

	tickers := splitList(*funds)
	if len(tickers) < 2 {
		logger.Fatal("--funds must list at least two tickers")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if *migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatalf("Migrations failed: %v", err)
		}
	}

	holdingsStore := pgstore.NewHoldingsStore(pool)
	expander := expansion.New(holdingsStore, log.New(os.Stdout, "[expansion] ", log.LstdFlags))

	holdingsByFund := make(map[string]domain.HoldingsSet, len(tickers))
	for _, ticker := range tickers {
		set, err := holdingsStore.GetByKey(ctx, ticker)
		if err != nil {
			logger.Fatalf("Failed to load holdings for %s: %v", ticker, err)
		}
		if set.Empty() {
			logger.Printf("Warning: no holdings stored for %s", ticker)
		}
		if domain.Classify(set.Records) == domain.FundTypeFundOfFunds {
			if expanded := expander.ExpandUnderlying(ctx, set); !expanded.Empty() {
				set = expanded
			}
		}
		holdingsByFund[ticker] = set
	}

	entries, err := overlap.Aggregate(holdingsByFund)
	if err != nil {
		logger.Fatalf("Overlap analysis failed: %v", err)
	}

	filtered := overlap.Filter(entries, *minOverlap, *minValue)
	sort.Strings(tickers)
	metrics := overlap.Metrics(filtered)

	report := &reporting.OverlapReport{
		GeneratedAt: time.Now().UTC(),
		Funds:       tickers,
		MinOverlap:  *minOverlap,
		MinValue:    *minValue,
		Entries:     filtered,
		Matrix:      overlap.Matrix(filtered, tickers),
		Metrics:     metrics,
	}

	if *clickhouseDSN != "" {
		persistSnapshot(ctx, logger, *clickhouseDSN, *migrate, tickers, filtered, metrics)
	}

	var rendered string
	switch strings.ToLower(*format) {
	case "markdown", "md":
		rendered = reporting.RenderOverlapMarkdown(report)
	case "csv":
		rendered = reporting.RenderOverlapCSV(report)
	default:
		logger.Fatalf("Unknown format %q (want markdown or csv)", *format)
	}

	if *output == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0644); err != nil {
		logger.Fatalf("Failed to write %s: %v", *output, err)
	}
	logger.Printf("Wrote %s (%d overlapping securities, max overlap %d)",
		*output, metrics.OverlapCount, metrics.MaxOverlap)
}

// persistSnapshot records the run in ClickHouse. Persistence failures
// are logged, not fatal.
func persistSnapshot(
	ctx context.Context,
	logger *log.Logger,
	dsn string,
	migrate bool,
	tickers []string,
	entries []domain.OverlapEntry,
	metrics domain.RedundancyMetrics,
) {
	var conn *chstore.Conn
	var err error
	if migrate {
		conn, err = migrations.RunClickhouseMigrations(ctx, dsn)
	} else {
		conn, err = chstore.NewConn(ctx, dsn)
	}
	if err != nil {
		logger.Printf("Failed to connect to clickhouse: %v", err)
		return
	}
	defer conn.Close()

	snap := &domain.OverlapSnapshot{
		RunID:               fmt.Sprintf("%s-%d", strings.Join(tickers, "+"), time.Now().UnixMilli()),
		Funds:               tickers,
		EntryCount:          len(entries),
		OverlapCount:        metrics.OverlapCount,
		TotalRedundantValue: metrics.TotalRedundantValue,
		MaxOverlap:          metrics.MaxOverlap,
		CreatedAt:           time.Now().UnixMilli(),
	}
	if err := chstore.NewOverlapSnapshotStore(conn).Insert(ctx, snap); err != nil {
		logger.Printf("Failed to persist overlap snapshot: %v", err)
		return
	}
	logger.Printf("Persisted overlap snapshot %s", snap.RunID)
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
