// Package main loads a holdings CSV into storage, normalizing rows and
// upserting the owning fund or institution record.
//
// Expected columns (case-insensitive, extra columns ignored):
// Name, Ticker, Cusip, Value, Pct, Category
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/normalization"
	"fund-overlap-lab/internal/storage/migrations"
	pgstore "fund-overlap-lab/internal/storage/postgres"
)

// headerAliases maps common CSV header spellings to canonical column
// names.
var headerAliases = map[string]string{
	"name":         normalization.ColName,
	"holding":      normalization.ColName,
	"security":     normalization.ColName,
	"ticker":       normalization.ColTicker,
	"symbol":       normalization.ColTicker,
	"cusip":        normalization.ColCUSIP,
	"value":        normalization.ColValue,
	"market value": normalization.ColValue,
	"pct":          normalization.ColPct,
	"weight":       normalization.ColPct,
	"percentage":   normalization.ColPct,
	"category":     normalization.ColCategory,
	"asset class":  normalization.ColCategory,
}

func main() {
	file := flag.String("file", "", "Path to the holdings CSV")
	fund := flag.String("fund", "", "Fund ticker the holdings belong to")
	institution := flag.String("institution", "", "Institution ID the holdings belong to (mutually exclusive with --fund)")
	name := flag.String("name", "", "Display name for the fund or institution")
	reportDate := flag.String("report-date", "", "Institution report date (YYYY-MM-DD, defaults to today)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	migrate := flag.Bool("migrate", false, "Run database migrations first")

	flag.Parse()

	logger := log.New(os.Stdout, "[load] ", log.LstdFlags)

	if *file == "" {
		logger.Fatal("--file is required")
	}
	if (*fund == "") == (*institution == "") {
		logger.Fatal("Exactly one of --fund or --institution is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	rows, err := readCSV(*file)
	if err != nil {
		logger.Fatalf("Failed to read %s: %v", *file, err)
	}
	if len(rows) == 0 {
		logger.Fatalf("No data rows in %s", *file)
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

	now := time.Now().UnixMilli()

	key := *fund
	if *institution != "" {
		key = domain.InstitutionKey(*institution)
	}

	set := normalization.NormalizeSet(key, rows, now)
	if err := pgstore.NewHoldingsStore(pool).Put(ctx, set); err != nil {
		logger.Fatalf("Failed to store holdings: %v", err)
	}

	if *fund != "" {
		displayName := *name
		if displayName == "" {
			displayName = *fund
		}
		f := &domain.Fund{
			Ticker:    strings.ToUpper(strings.TrimSpace(*fund)),
			Name:      displayName,
			FundType:  domain.Classify(set.Records),
			CreatedAt: now,
		}
		if err := pgstore.NewFundStore(pool).Upsert(ctx, f); err != nil {
			logger.Fatalf("Failed to upsert fund: %v", err)
		}
		logger.Printf("Loaded %d holdings for fund %s (%s)", len(set.Records), f.Ticker, f.FundType)
		return
	}

	date := now
	if *reportDate != "" {
		t, err := time.Parse("2006-01-02", *reportDate)
		if err != nil {
			logger.Fatalf("Invalid --report-date %q: %v", *reportDate, err)
		}
		date = t.UnixMilli()
	}
	displayName := *name
	if displayName == "" {
		displayName = *institution
	}
	inst := &domain.Institution{
		ID:            strings.TrimSpace(*institution),
		Name:          displayName,
		ReportDate:    date,
		HoldingsCount: len(set.Records),
		CreatedAt:     now,
	}
	if err := pgstore.NewInstitutionStore(pool).Upsert(ctx, inst); err != nil {
		logger.Fatalf("Failed to upsert institution: %v", err)
	}
	logger.Printf("Loaded %d holdings for institution %s", len(set.Records), inst.ID)
}

// readCSV parses the file into raw rows keyed by canonical column
// names. Unknown headers are skipped.
func readCSV(path string) ([]normalization.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if canonical, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			columns[i] = canonical
		}
	}

	var rows []normalization.RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		row := make(normalization.RawRow, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(record) {
				continue
			}
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
