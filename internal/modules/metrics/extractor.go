// Package metrics derives per-symbol trend and dividend statistics from
// daily price history and quote metadata.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
	"github.com/aristath/market-hunter/pkg/formulas"
)

// fallbackUpsideFactor discounts the prior-year return when a symbol has no
// analyst target (funds and ETFs mostly).
const fallbackUpsideFactor = 0.7

// HistoryFetcher provides daily price history from a start date to now
type HistoryFetcher interface {
	GetDailyHistory(symbol string, from time.Time) ([]yahoo.HistoricalPrice, error)
}

// QuoteFetcher provides descriptive and analyst metadata for a symbol
type QuoteFetcher interface {
	GetQuote(symbol string) (*yahoo.Quote, error)
}

// Config holds extractor configuration
type Config struct {
	MinHistoryPoints int              // reject series shorter than this
	SMAWindow        int              // trailing moving-average window
	Now              func() time.Time // injectable clock, defaults to time.Now
}

// Extractor turns one symbol into a MetricRecord
type Extractor struct {
	history HistoryFetcher
	quotes  QuoteFetcher
	cfg     Config
	log     zerolog.Logger
}

// NewExtractor creates a new metric extractor
func NewExtractor(history HistoryFetcher, quotes QuoteFetcher, cfg Config, log zerolog.Logger) *Extractor {
	if cfg.MinHistoryPoints <= 0 {
		cfg.MinHistoryPoints = 50
	}
	if cfg.SMAWindow <= 0 {
		cfg.SMAWindow = 50
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Extractor{
		history: history,
		quotes:  quotes,
		cfg:     cfg,
		log:     log.With().Str("component", "metrics").Logger(),
	}
}

// Extract fetches history and metadata for one symbol and derives its
// metrics. Any failure yields a typed Failure; there is no partial record.
func (e *Extractor) Extract(symbol string) (*MetricRecord, *Failure) {
	now := e.cfg.Now()
	priorYear := now.Year() - 1
	twoYearsAgo := now.Year() - 2

	// History from the start of the earlier target year covers both
	// completed calendar years plus the current year to date.
	from := time.Date(twoYearsAgo, time.January, 1, 0, 0, 0, 0, time.UTC)

	prices, err := e.history.GetDailyHistory(symbol, from)
	if err != nil {
		return nil, &Failure{Symbol: symbol, Reason: ReasonHistoryFetch, Err: err}
	}

	if len(prices) < e.cfg.MinHistoryPoints {
		return nil, &Failure{
			Symbol: symbol,
			Reason: ReasonShortHistory,
			Err:    fmt.Errorf("%d points, need %d", len(prices), e.cfg.MinHistoryPoints),
		}
	}

	quote, err := e.quotes.GetQuote(symbol)
	if err != nil {
		return nil, &Failure{Symbol: symbol, Reason: ReasonQuoteFetch, Err: err}
	}

	closes := make([]float64, len(prices))
	for i, p := range prices {
		closes[i] = p.Close
	}

	latestClose := closes[len(closes)-1]
	price := quote.Price
	if price <= 0 {
		price = latestClose
	}

	rec := &MetricRecord{
		Symbol:               symbol,
		Name:                 quote.Name,
		AssetType:            assetType(quote.QuoteType),
		Sector:               quote.Sector,
		LatestClose:          latestClose,
		YTDReturnPct:         calendarYearReturn(prices, now.Year()),
		PriorYearReturnPct:   calendarYearReturn(prices, priorYear),
		TwoYearsAgoReturnPct: calendarYearReturn(prices, twoYearsAgo),
		Consensus:            quote.Recommendation,
		PriorYear:            priorYear,
		TwoYearsAgo:          twoYearsAgo,
	}

	// Trend flag against the trailing moving average
	if sma := formulas.SMA(closes, e.cfg.SMAWindow); sma != nil {
		rec.SMA = *sma
		rec.AboveSMA = price > *sma
	}

	if rsi := formulas.RSI(closes, 14); rsi != nil {
		rec.RSI14 = formulas.Round2(*rsi)
	}

	// Forward upside from the analyst mean target; instruments without
	// coverage fall back to a discounted prior-year return.
	if quote.TargetMean != nil && *quote.TargetMean > 0 && price > 0 {
		rec.ForecastUpsidePct = formulas.Round2((*quote.TargetMean/price - 1) * 100)
		rec.HasAnalystTarget = true
	} else {
		rec.ForecastUpsidePct = formulas.Round2(rec.PriorYearReturnPct * fallbackUpsideFactor)
	}

	// Metadata reports the yield as a fraction; scale to percent here and
	// nowhere else. Missing yields are a neutral 0, not an error.
	if quote.DividendYield != nil && *quote.DividendYield > 0 {
		rec.DividendYieldPct = formulas.Round2(*quote.DividendYield * 100)
	}

	return rec, nil
}

// calendarYearReturn computes the percent change from the first to the last
// close inside one calendar year. An empty slice yields 0.
func calendarYearReturn(prices []yahoo.HistoricalPrice, year int) float64 {
	var first, last float64
	found := false

	for _, p := range prices {
		if p.Date.Year() != year {
			continue
		}
		if !found {
			first = p.Close
			found = true
		}
		last = p.Close
	}

	if !found {
		return 0
	}

	return formulas.PercentChange(first, last)
}

// assetType collapses Yahoo quote types into the two buckets the scanner
// distinguishes
func assetType(quoteType string) string {
	switch strings.ToUpper(quoteType) {
	case "ETF", "MUTUALFUND", "ETC", "FUND":
		return "fund"
	default:
		return "equity"
	}
}
