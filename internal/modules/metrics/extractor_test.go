package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
)

type fakeHistory struct {
	prices []yahoo.HistoricalPrice
	err    error
}

func (f *fakeHistory) GetDailyHistory(symbol string, from time.Time) ([]yahoo.HistoricalPrice, error) {
	return f.prices, f.err
}

type fakeQuotes struct {
	quote *yahoo.Quote
	err   error
}

func (f *fakeQuotes) GetQuote(symbol string) (*yahoo.Quote, error) {
	return f.quote, f.err
}

// fixedNow pins the clock to mid-2025 so the two completed calendar years
// are 2024 and 2023.
func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

// linearYear builds n daily points inside one year, closing prices
// interpolated from first to last.
func linearYear(year, n int, first, last float64) []yahoo.HistoricalPrice {
	prices := make([]yahoo.HistoricalPrice, n)
	for i := 0; i < n; i++ {
		c := first + (last-first)*float64(i)/float64(n-1)
		prices[i] = yahoo.HistoricalPrice{
			Date:  time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Close: c,
		}
	}
	return prices
}

func floatPtr(v float64) *float64 { return &v }

func newTestExtractor(h HistoryFetcher, q QuoteFetcher) *Extractor {
	return NewExtractor(h, q, Config{
		MinHistoryPoints: 50,
		SMAWindow:        50,
		Now:              fixedNow,
	}, zerolog.Nop())
}

func TestExtractCalendarYearReturn(t *testing.T) {
	// 2024: first close 100.0, last close 120.0 -> 20.00%
	prices := append(linearYear(2023, 100, 90, 100), linearYear(2024, 250, 100, 120)...)

	e := newTestExtractor(
		&fakeHistory{prices: prices},
		&fakeQuotes{quote: &yahoo.Quote{Symbol: "TEST", Name: "Test Corp", QuoteType: "EQUITY", Price: 120}},
	)

	rec, fail := e.Extract("TEST")
	require.Nil(t, fail)

	assert.Equal(t, 20.00, rec.PriorYearReturnPct)
	assert.Equal(t, 2024, rec.PriorYear)
	assert.InDelta(t, 11.11, rec.TwoYearsAgoReturnPct, 0.001)
	assert.Equal(t, 2023, rec.TwoYearsAgo)
}

func TestExtractEmptyYearSliceDefaultsToZero(t *testing.T) {
	// No 2023 data at all; the year-before-prior return must be a neutral 0.
	prices := linearYear(2024, 250, 100, 110)

	e := newTestExtractor(
		&fakeHistory{prices: prices},
		&fakeQuotes{quote: &yahoo.Quote{Symbol: "TEST", QuoteType: "EQUITY", Price: 110}},
	)

	rec, fail := e.Extract("TEST")
	require.Nil(t, fail)
	assert.Equal(t, 0.0, rec.TwoYearsAgoReturnPct)
}

func TestExtractHistoryFetchFailure(t *testing.T) {
	e := newTestExtractor(
		&fakeHistory{err: fmt.Errorf("connection refused")},
		&fakeQuotes{},
	)

	rec, fail := e.Extract("TEST")
	assert.Nil(t, rec)
	require.NotNil(t, fail)
	assert.Equal(t, ReasonHistoryFetch, fail.Reason)
	assert.Equal(t, "TEST", fail.Symbol)
}

func TestExtractShortHistoryRejected(t *testing.T) {
	e := newTestExtractor(
		&fakeHistory{prices: linearYear(2024, 10, 100, 110)},
		&fakeQuotes{},
	)

	rec, fail := e.Extract("TEST")
	assert.Nil(t, rec)
	require.NotNil(t, fail)
	assert.Equal(t, ReasonShortHistory, fail.Reason)
}

func TestExtractQuoteFetchFailure(t *testing.T) {
	e := newTestExtractor(
		&fakeHistory{prices: linearYear(2024, 250, 100, 110)},
		&fakeQuotes{err: fmt.Errorf("no quote data")},
	)

	rec, fail := e.Extract("TEST")
	assert.Nil(t, rec)
	require.NotNil(t, fail)
	assert.Equal(t, ReasonQuoteFetch, fail.Reason)
}

func TestExtractAnalystUpside(t *testing.T) {
	prices := linearYear(2024, 250, 100, 110)

	e := newTestExtractor(
		&fakeHistory{prices: prices},
		&fakeQuotes{quote: &yahoo.Quote{
			Symbol:     "TEST",
			QuoteType:  "EQUITY",
			Price:      100,
			TargetMean: floatPtr(120),
		}},
	)

	rec, fail := e.Extract("TEST")
	require.Nil(t, fail)
	assert.Equal(t, 20.00, rec.ForecastUpsidePct)
	assert.True(t, rec.HasAnalystTarget)
}

func TestExtractFundFallbackUpside(t *testing.T) {
	// 2024 return is 20%; with no analyst target the forecast is 0.7x that.
	prices := linearYear(2024, 250, 100, 120)

	e := newTestExtractor(
		&fakeHistory{prices: prices},
		&fakeQuotes{quote: &yahoo.Quote{Symbol: "SPY", QuoteType: "ETF", Price: 120}},
	)

	rec, fail := e.Extract("SPY")
	require.Nil(t, fail)
	assert.False(t, rec.HasAnalystTarget)
	assert.Equal(t, 14.00, rec.ForecastUpsidePct)
	assert.Equal(t, "fund", rec.AssetType)
}

func TestExtractDividendYieldConversion(t *testing.T) {
	prices := linearYear(2024, 250, 100, 110)

	tests := []struct {
		name  string
		yield *float64
		want  float64
	}{
		{
			name:  "fraction scaled to percent once",
			yield: floatPtr(0.0134),
			want:  1.34,
		},
		{
			name:  "missing yield defaults to zero",
			yield: nil,
			want:  0,
		},
		{
			name:  "negative yield clamped to zero",
			yield: floatPtr(-0.01),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(
				&fakeHistory{prices: prices},
				&fakeQuotes{quote: &yahoo.Quote{
					Symbol:        "TEST",
					QuoteType:     "EQUITY",
					Price:         110,
					DividendYield: tt.yield,
				}},
			)

			rec, fail := e.Extract("TEST")
			require.Nil(t, fail)
			assert.Equal(t, tt.want, rec.DividendYieldPct)
			assert.GreaterOrEqual(t, rec.DividendYieldPct, 0.0)
		})
	}
}

func TestExtractTrendFlag(t *testing.T) {
	// Rising series: latest price above the trailing average
	rising := linearYear(2024, 250, 100, 150)

	e := newTestExtractor(
		&fakeHistory{prices: rising},
		&fakeQuotes{quote: &yahoo.Quote{Symbol: "UP", QuoteType: "EQUITY", Price: 150}},
	)

	rec, fail := e.Extract("UP")
	require.Nil(t, fail)
	assert.True(t, rec.AboveSMA)
	assert.Greater(t, rec.SMA, 0.0)

	// Falling series: latest price below the trailing average
	falling := linearYear(2024, 250, 150, 100)

	e = newTestExtractor(
		&fakeHistory{prices: falling},
		&fakeQuotes{quote: &yahoo.Quote{Symbol: "DOWN", QuoteType: "EQUITY", Price: 100}},
	)

	rec, fail = e.Extract("DOWN")
	require.Nil(t, fail)
	assert.False(t, rec.AboveSMA)
}

func TestExtractIdempotent(t *testing.T) {
	prices := linearYear(2024, 250, 100, 120)
	quote := &yahoo.Quote{
		Symbol:        "TEST",
		Name:          "Test Corp",
		QuoteType:     "EQUITY",
		Price:         120,
		TargetMean:    floatPtr(140),
		DividendYield: floatPtr(0.02),
	}

	e := newTestExtractor(&fakeHistory{prices: prices}, &fakeQuotes{quote: quote})

	first, fail := e.Extract("TEST")
	require.Nil(t, fail)
	second, fail := e.Extract("TEST")
	require.Nil(t, fail)

	assert.Equal(t, first, second)
}
