// Package report renders scan results as CSV and ships them to their
// output target.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
	"github.com/aristath/market-hunter/internal/modules/scoring"
)

// batchHeader is the column contract of the batch report
var batchHeader = []string{
	"ticker", "company", "score", "sentiment",
	"ytd_growth_pct", "two_year_growth_pct", "latest_close", "top_news",
}

// Write renders the batch CSV: plain numbers, two-decimal percents, and a
// pipe-joined news column. UTF-8 with a header row.
func Write(w io.Writer, records []scoring.ScoredRecord, feed map[string]yahoo.NewsHeadline) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(batchHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Symbol,
			rec.Name,
			strconv.Itoa(rec.Score),
			rec.Label,
			fmt.Sprintf("%.2f", rec.YTDReturnPct),
			fmt.Sprintf("%.2f", twoYearGrowth(rec)),
			fmt.Sprintf("%.2f", rec.LatestClose),
			newsColumn(rec.Symbol, feed),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", rec.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// dashboardHeader matches the ranked table the UI shows
var dashboardHeader = []string{
	"ticker", "company", "type", "score", "sentiment",
	"dividend_yield", "prior_year_perf", "two_years_ago_perf", "forecast_upside",
}

// WriteDashboard renders the on-demand dashboard download: percent columns
// carry two decimals and a literal % suffix.
func WriteDashboard(w io.Writer, records []scoring.ScoredRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(dashboardHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Symbol,
			rec.Name,
			rec.AssetType,
			strconv.Itoa(rec.Score),
			rec.Label,
			FormatPercent(rec.DividendYieldPct),
			FormatPercent(rec.PriorYearReturnPct),
			FormatPercent(rec.TwoYearsAgoReturnPct),
			FormatPercent(rec.ForecastUpsidePct),
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", rec.Symbol, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatPercent renders a percentage with two decimals and a % suffix
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// twoYearGrowth compounds the two completed calendar-year returns
func twoYearGrowth(rec scoring.ScoredRecord) float64 {
	growth := (1+rec.TwoYearsAgoReturnPct/100)*(1+rec.PriorYearReturnPct/100) - 1
	return growth * 100
}

// newsColumn pipe-joins the available headlines as "title (url)"
func newsColumn(symbol string, feed map[string]yahoo.NewsHeadline) string {
	headline, ok := feed[symbol]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s (%s)", headline.Title, headline.Link)
}
