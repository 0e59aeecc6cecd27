// Package main runs a one-shot fund-vs-institution comparison and
// writes the result as Markdown, CSV, or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"fund-overlap-lab/internal/comparison"
	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/expansion"
	"fund-overlap-lab/internal/reporting"
	"fund-overlap-lab/internal/storage/migrations"
	pgstore "fund-overlap-lab/internal/storage/postgres"
)

func main() {
	fund := flag.String("fund", "", "Fund ticker to compare")
	institution := flag.String("institution", "", "Institution ID to compare against")
	threshold := flag.Int("threshold", comparison.DefaultThreshold, "Fuzzy match threshold (0-100)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	migrate := flag.Bool("migrate", false, "Run database migrations first")
	noCache := flag.Bool("no-cache", false, "Skip the comparison cache and force a fresh computation")
	format := flag.String("format", "markdown", "Output format: markdown, csv, or json")
	output := flag.String("output", "", "Output file (default stdout)")

	flag.Parse()

	logger := log.New(os.Stdout, "[compare] ", log.LstdFlags)

	if *fund == "" || *institution == "" {
		logger.Fatal("--fund and --institution are required")
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

	fundStore := pgstore.NewFundStore(pool)
	institutionStore := pgstore.NewInstitutionStore(pool)
	holdingsStore := pgstore.NewHoldingsStore(pool)

	expander := expansion.New(holdingsStore, log.New(os.Stdout, "[expansion] ", log.LstdFlags))

	var cache *comparison.Cache
	if !*noCache {
		cache = comparison.NewCache(pgstore.NewComparisonStore(pool), comparison.DefaultMaxAge, logger)
	}

	comparator := comparison.NewComparator(fundStore, institutionStore, holdingsStore, expander, cache, logger)

	result, err := comparator.Compare(ctx, *fund, *institution, *threshold)
	if err != nil {
		logger.Fatalf("Comparison failed: %v", err)
	}

	// Assemble the renderable report around the raw result.
	f, err := fundStore.GetByTicker(ctx, result.FundTicker)
	if err != nil {
		logger.Fatalf("Failed to load fund %s: %v", result.FundTicker, err)
	}
	inst, err := institutionStore.GetByID(ctx, result.InstitutionID)
	if err != nil {
		logger.Fatalf("Failed to load institution %s: %v", result.InstitutionID, err)
	}
	fundSide, err := holdingsStore.GetByKey(ctx, f.Ticker)
	if err != nil {
		logger.Fatalf("Failed to load holdings for %s: %v", f.Ticker, err)
	}
	instSide, err := holdingsStore.GetByKey(ctx, domain.InstitutionKey(inst.ID))
	if err != nil {
		logger.Fatalf("Failed to load holdings for institution %s: %v", inst.ID, err)
	}

	fundType := domain.Classify(fundSide.Records)
	fundCount := len(fundSide.Records)
	usedUnderlying := false
	if fundType == domain.FundTypeFundOfFunds {
		if expanded := expander.ExpandUnderlying(ctx, fundSide); !expanded.Empty() {
			fundCount = len(expanded.Records)
			usedUnderlying = true
		}
	}

	report := &reporting.ComparisonReport{
		GeneratedAt:              time.Now().UTC(),
		FundTicker:               f.Ticker,
		FundName:                 f.Name,
		FundType:                 fundType,
		InstitutionID:            inst.ID,
		InstitutionName:          inst.Name,
		FundHoldingsCount:        fundCount,
		InstitutionHoldingsCount: len(instSide.Records),
		UsedUnderlying:           usedUnderlying,
		MatchedCount:             result.MatchedCount,
		PctByCount:               result.PctByCount,
		PctByValue:               result.PctByValue,
		Matches:                  result.Matches,
	}

	var rendered string
	switch strings.ToLower(*format) {
	case "markdown", "md":
		rendered = reporting.RenderComparisonMarkdown(report)
	case "csv":
		rendered = reporting.RenderMatchesCSV(report)
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to marshal result: %v", err)
		}
		rendered = string(data) + "\n"
	default:
		logger.Fatalf("Unknown format %q (want markdown, csv, or json)", *format)
	}

	if *output == "" {
		fmt.Print(rendered)
		return
	}
	if err := os.WriteFile(*output, []byte(rendered), 0644); err != nil {
		logger.Fatalf("Failed to write %s: %v", *output, err)
	}
	logger.Printf("Wrote %s (%d matches, %.1f%% by value)", *output, result.MatchedCount, result.PctByValue)
}
