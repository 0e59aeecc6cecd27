package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderComparisonMarkdown renders a comparison report as Markdown.
func RenderComparisonMarkdown(r *ComparisonReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Comparison: %s vs %s\n\n", r.FundTicker, r.InstitutionName))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Fund | %s (%s) |\n", r.FundName, r.FundTicker))
	sb.WriteString(fmt.Sprintf("| Fund Type | %s |\n", r.FundType))
	sb.WriteString(fmt.Sprintf("| Institution | %s |\n", r.InstitutionName))
	sb.WriteString(fmt.Sprintf("| Fund Holdings | %d |\n", r.FundHoldingsCount))
	sb.WriteString(fmt.Sprintf("| Institution Holdings | %d |\n", r.InstitutionHoldingsCount))
	sb.WriteString(fmt.Sprintf("| Compared Via Underlying Securities | %t |\n", r.UsedUnderlying))
	sb.WriteString(fmt.Sprintf("| Matched | %d |\n", r.MatchedCount))
	sb.WriteString(fmt.Sprintf("| Coverage By Count | %.2f%% |\n", r.PctByCount))
	sb.WriteString(fmt.Sprintf("| Coverage By Value | %.2f%% |\n", r.PctByValue))
	sb.WriteString("\n")

	if len(r.Matches) > 0 {
		sb.WriteString("## Matched Holdings\n\n")
		sb.WriteString("| Security | Ticker | Match | Fund Value | Institution Value | Parent Fund |\n")
		sb.WriteString("|----------|--------|-------|------------|-------------------|-------------|\n")
		for _, m := range r.Matches {
			ticker := ""
			if m.Ticker != nil {
				ticker = *m.Ticker
			}
			parent := ""
			if m.ParentFundTicker != nil {
				parent = *m.ParentFundTicker
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %s |\n",
				m.Name, ticker, m.MatchType, m.FundValue, m.InstitutionValue, parent))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderOverlapMarkdown renders an overlap report as Markdown.
func RenderOverlapMarkdown(r *OverlapReport) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Overlap Analysis\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Funds: %s\n\n", strings.Join(r.Funds, ", ")))
	sb.WriteString(fmt.Sprintf("Filters: min overlap %d, min value %.2f\n\n", r.MinOverlap, r.MinValue))

	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Overlapping Holdings | %d |\n", r.Metrics.OverlapCount))
	sb.WriteString(fmt.Sprintf("| Total Redundant Value | %.2f |\n", r.Metrics.TotalRedundantValue))
	sb.WriteString(fmt.Sprintf("| Max Overlap | %d |\n", r.Metrics.MaxOverlap))
	sb.WriteString("\n")

	if len(r.Matrix) == len(r.Funds) && len(r.Funds) > 0 {
		sb.WriteString("## Co-occurrence Matrix\n\n")
		sb.WriteString("| |")
		for _, f := range r.Funds {
			sb.WriteString(fmt.Sprintf(" %s |", f))
		}
		sb.WriteString("\n|-|")
		for range r.Funds {
			sb.WriteString("-|")
		}
		sb.WriteString("\n")
		for i, f := range r.Funds {
			sb.WriteString(fmt.Sprintf("| %s |", f))
			for j := range r.Funds {
				sb.WriteString(fmt.Sprintf(" %d |", r.Matrix[i][j]))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(r.Entries) > 0 {
		sb.WriteString("## Overlapping Securities\n\n")
		sb.WriteString("| Security | Funds | Combined Value |\n")
		sb.WriteString("|----------|-------|----------------|\n")
		for _, e := range r.Entries {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f |\n",
				e.Name, strings.Join(e.Funds, ", "), e.TotalValue))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
