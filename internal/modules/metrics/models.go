package metrics

import "fmt"

// MetricRecord holds the derived statistics for one symbol that survived
// extraction. All percentage fields are already-scaled percentages (20.0
// means 20%); the fraction-to-percent conversion happens exactly once, in
// the extractor.
type MetricRecord struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type"` // equity or fund
	Sector    string `json:"sector,omitempty"`

	LatestClose          float64 `json:"latest_close"`
	DividendYieldPct     float64 `json:"dividend_yield_pct"`
	YTDReturnPct         float64 `json:"ytd_return_pct"`
	PriorYearReturnPct   float64 `json:"prior_year_return_pct"`
	TwoYearsAgoReturnPct float64 `json:"two_years_ago_return_pct"`
	ForecastUpsidePct    float64 `json:"forecast_upside_pct"`

	SMA      float64 `json:"sma"`
	AboveSMA bool    `json:"above_sma"`
	RSI14    float64 `json:"rsi_14,omitempty"`

	Consensus        string `json:"consensus,omitempty"` // analyst recommendation key
	HasAnalystTarget bool   `json:"has_analyst_target"`

	// Calendar years the return columns refer to
	PriorYear    int `json:"prior_year"`
	TwoYearsAgo  int `json:"two_years_ago"`
}

// FailureReason classifies why a symbol was dropped from the scan
type FailureReason string

const (
	ReasonHistoryFetch FailureReason = "history_fetch"
	ReasonShortHistory FailureReason = "short_history"
	ReasonQuoteFetch   FailureReason = "quote_fetch"
)

// Failure is a per-symbol extraction failure. The caller drops the symbol
// and counts the reason; nothing is retried.
type Failure struct {
	Symbol string
	Reason FailureReason
	Err    error
}

// Error implements the error interface
func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Symbol, f.Reason, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Symbol, f.Reason)
}

// Unwrap exposes the underlying cause
func (f *Failure) Unwrap() error {
	return f.Err
}
