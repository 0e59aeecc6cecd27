// Package normalization converts raw holdings rows from upstream
// collectors into canonical domain.HoldingsRecord values. It is the
// single boundary where currency strings, missing identifiers and
// mixed-type columns are cleaned up; no downstream component repeats
// that work.
package normalization

import (
	"strconv"
	"strings"

	"fund-overlap-lab/internal/domain"
	"fund-overlap-lab/internal/observability"
)

// RawRow is one uncleaned row from a fund holdings table or an
// institutional filing table, keyed by source column name.
type RawRow map[string]any

// Source column names produced by the upstream collectors.
const (
	ColName     = "Name"
	ColTicker   = "Ticker"
	ColCUSIP    = "Cusip"
	ColValue    = "Value"
	ColPct      = "Pct"
	ColCategory = "Category"
)

// Normalize converts raw rows into holdings records. A malformed field
// degrades to its zero default; a single bad row never aborts the batch.
func Normalize(rows []RawRow) []domain.HoldingsRecord {
	records := make([]domain.HoldingsRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, normalizeRow(row))
	}
	observability.DefaultMetrics.RowsNormalized.Add(float64(len(records)))
	return records
}

// NormalizeSet normalizes rows into a holdings set for a key.
func NormalizeSet(key string, rows []RawRow, retrievedAt int64) domain.HoldingsSet {
	return domain.HoldingsSet{
		Key:         key,
		RetrievedAt: retrievedAt,
		Records:     Normalize(rows),
	}
}

// NormalizeRecords re-applies the normalization rules to typed records.
// Applying it to already-normalized records is a no-op, so callers can
// pass records of unknown provenance through it safely.
func NormalizeRecords(records []domain.HoldingsRecord) []domain.HoldingsRecord {
	out := make([]domain.HoldingsRecord, len(records))
	for i, r := range records {
		out[i] = r
		out[i].Ticker = NormalizeTicker(r.Ticker)
		out[i].CUSIP = normalizeCUSIP(r.CUSIP)
		if out[i].Value < 0 {
			out[i].Value = 0
		}
	}
	return out
}

func normalizeRow(row RawRow) domain.HoldingsRecord {
	return domain.HoldingsRecord{
		Name:       stringField(row[ColName]),
		Ticker:     NormalizeTicker(identifierField(row[ColTicker])),
		CUSIP:      normalizeCUSIP(identifierField(row[ColCUSIP])),
		Value:      ParseValue(row[ColValue]),
		Percentage: parseNumeric(row[ColPct]),
		Category:   identifierField(row[ColCategory]),
	}
}

// ParseValue converts a raw value field to a non-negative float.
// Numeric input passes through; strings are stripped of a leading
// currency symbol and thousands separators. Parse failure yields 0.
func ParseValue(v any) float64 {
	value := parseNumeric(v)
	if value < 0 {
		return 0
	}
	return value
}

func parseNumeric(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// NormalizeTicker upper-cases and trims a ticker, mapping blank and
// placeholder values to nil.
func NormalizeTicker(ticker *string) *string {
	if ticker == nil {
		return nil
	}
	t := strings.ToUpper(strings.TrimSpace(*ticker))
	if t == "" || t == "NONE" || t == "NAN" {
		return nil
	}
	return &t
}

func normalizeCUSIP(cusip *string) *string {
	if cusip == nil {
		return nil
	}
	c := strings.TrimSpace(*cusip)
	upper := strings.ToUpper(c)
	if c == "" || upper == "NONE" || upper == "NAN" {
		return nil
	}
	return &c
}

// identifierField reads an optional string column, mapping absent and
// non-string values to nil.
func identifierField(v any) *string {
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
		trimmed := strings.TrimSpace(s)
		return &trimmed
	default:
		return nil
	}
}

func stringField(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
