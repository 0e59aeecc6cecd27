package reporting

import (
	"fmt"
	"strings"
)

// RenderMatchesCSV renders a comparison report's matches as CSV.
func RenderMatchesCSV(r *ComparisonReport) string {
	var sb strings.Builder

	sb.WriteString("name,ticker,match_type,fund_value,fund_pct,institution_value,institution_pct,parent_fund,parent_ticker\n")

	for _, m := range r.Matches {
		ticker := ""
		if m.Ticker != nil {
			ticker = *m.Ticker
		}
		parentFund := ""
		if m.ParentFundName != nil {
			parentFund = *m.ParentFundName
		}
		parentTicker := ""
		if m.ParentFundTicker != nil {
			parentTicker = *m.ParentFundTicker
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%.6f,%.6f,%.6f,%.6f,%s,%s\n",
			csvField(m.Name),
			csvField(ticker),
			m.MatchType,
			m.FundValue,
			m.FundPct,
			m.InstitutionValue,
			m.InstitutionPct,
			csvField(parentFund),
			csvField(parentTicker),
		))
	}

	return sb.String()
}

// RenderOverlapCSV renders overlap entries as CSV. Fund sets are
// joined with "|" so the row stays a fixed width.
func RenderOverlapCSV(r *OverlapReport) string {
	var sb strings.Builder

	sb.WriteString("security,fund_count,funds,total_value\n")

	for _, e := range r.Entries {
		sb.WriteString(fmt.Sprintf("%s,%d,%s,%.6f\n",
			csvField(e.Name),
			len(e.Funds),
			csvField(strings.Join(e.Funds, "|")),
			e.TotalValue,
		))
	}

	return sb.String()
}

// csvField quotes a value when it contains a comma or quote.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
