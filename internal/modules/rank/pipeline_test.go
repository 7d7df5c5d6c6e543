package rank

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/market-hunter/internal/modules/metrics"
	"github.com/aristath/market-hunter/internal/modules/scoring"
)

type fakeDiscoverer struct {
	pool []string
}

func (f *fakeDiscoverer) Discover(indexSet string) []string {
	return f.pool
}

// fakeExtractor serves canned records and failures, and counts calls
type fakeExtractor struct {
	mu      sync.Mutex
	records map[string]*metrics.MetricRecord
	fail    map[string]metrics.FailureReason
	calls   int
}

func (f *fakeExtractor) Extract(symbol string) (*metrics.MetricRecord, *metrics.Failure) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if reason, ok := f.fail[symbol]; ok {
		return nil, &metrics.Failure{Symbol: symbol, Reason: reason, Err: fmt.Errorf("boom")}
	}
	if rec, ok := f.records[symbol]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, &metrics.Failure{Symbol: symbol, Reason: metrics.ReasonQuoteFetch}
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func record(symbol string, upside, priorReturn float64, above bool) *metrics.MetricRecord {
	return &metrics.MetricRecord{
		Symbol:             symbol,
		ForecastUpsidePct:  upside,
		PriorYearReturnPct: priorReturn,
		AboveSMA:           above,
	}
}

func newTestPipeline(d Discoverer, e Extractor) *Pipeline {
	return New(d, e, scoring.NewEngine(scoring.DefaultConfig()), Config{
		Workers:  4,
		CacheTTL: time.Hour,
	}, zerolog.Nop())
}

func TestRunSortsByScoreDescending(t *testing.T) {
	extractor := &fakeExtractor{
		records: map[string]*metrics.MetricRecord{
			"LOW":  record("LOW", 0, 0, false),      // 0
			"MID":  record("MID", 15, 5, true),      // 70
			"HIGH": record("HIGH", 15, 5, true),     // 70 + buy below
		},
	}
	extractor.records["HIGH"].Consensus = "buy" // 100

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"LOW", "MID", "HIGH"}}, extractor)
	result := p.Run(Options{IndexSet: "all", TopN: 10})

	require.Len(t, result.Records, 3)
	for i := 1; i < len(result.Records); i++ {
		assert.GreaterOrEqual(t, result.Records[i-1].Score, result.Records[i].Score)
	}
	assert.Equal(t, "HIGH", result.Records[0].Symbol)
}

func TestRunTieBreakOnPriorYearReturn(t *testing.T) {
	extractor := &fakeExtractor{
		records: map[string]*metrics.MetricRecord{
			"A": record("A", 15, 5, true),  // score 70, return 5
			"B": record("B", 15, 25, true), // score 70, return 25
		},
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"A", "B"}}, extractor)
	result := p.Run(Options{IndexSet: "all", TopN: 10})

	require.Len(t, result.Records, 2)
	assert.Equal(t, "B", result.Records[0].Symbol)
	assert.Equal(t, "A", result.Records[1].Symbol)
}

func TestRunTruncatesToTopN(t *testing.T) {
	records := make(map[string]*metrics.MetricRecord)
	var pool []string
	for i := 0; i < 20; i++ {
		sym := fmt.Sprintf("S%02d", i)
		pool = append(pool, sym)
		records[sym] = record(sym, 15, float64(i), true)
	}

	p := newTestPipeline(&fakeDiscoverer{pool: pool}, &fakeExtractor{records: records})
	result := p.Run(Options{IndexSet: "all", TopN: 5})

	assert.Equal(t, 20, result.Survived)
	assert.Len(t, result.Records, 5)
}

func TestRunTruncationBelowTopN(t *testing.T) {
	extractor := &fakeExtractor{
		records: map[string]*metrics.MetricRecord{
			"A": record("A", 0, 0, false),
		},
		fail: map[string]metrics.FailureReason{
			"B": metrics.ReasonHistoryFetch,
		},
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"A", "B"}}, extractor)
	result := p.Run(Options{IndexSet: "all", TopN: 30})

	// len(result) == min(topN, survivors)
	assert.Equal(t, 1, result.Survived)
	assert.Len(t, result.Records, 1)
}

func TestRunFailedSymbolAbsentScanContinues(t *testing.T) {
	extractor := &fakeExtractor{
		records: map[string]*metrics.MetricRecord{
			"GOOD":  record("GOOD", 15, 5, true),
			"OTHER": record("OTHER", 0, 1, false),
		},
		fail: map[string]metrics.FailureReason{
			"BAD": metrics.ReasonHistoryFetch,
		},
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"GOOD", "BAD", "OTHER"}}, extractor)
	result := p.Run(Options{IndexSet: "all", TopN: 10})

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.NotEqual(t, "BAD", rec.Symbol)
	}
	assert.Equal(t, 1, result.Failures[string(metrics.ReasonHistoryFetch)])
	assert.Empty(t, result.Warning)
}

func TestRunEmptyPool(t *testing.T) {
	p := newTestPipeline(&fakeDiscoverer{pool: nil}, &fakeExtractor{})
	result := p.Run(Options{IndexSet: "all", TopN: 10})

	assert.Empty(t, result.Records)
	assert.Equal(t, 0, result.PoolSize)
	assert.NotEmpty(t, result.Warning)
}

func TestRunZeroSurvivors(t *testing.T) {
	extractor := &fakeExtractor{
		fail: map[string]metrics.FailureReason{
			"A": metrics.ReasonShortHistory,
			"B": metrics.ReasonQuoteFetch,
		},
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"A", "B"}}, extractor)
	result := p.Run(Options{IndexSet: "all", TopN: 10})

	assert.Empty(t, result.Records)
	assert.Equal(t, "no symbols survived extraction", result.Warning)
	assert.Equal(t, 1, result.Failures[string(metrics.ReasonShortHistory)])
	assert.Equal(t, 1, result.Failures[string(metrics.ReasonQuoteFetch)])
}

func TestRunPoolLimitTruncatesCandidates(t *testing.T) {
	records := make(map[string]*metrics.MetricRecord)
	var pool []string
	for i := 0; i < 10; i++ {
		sym := fmt.Sprintf("S%d", i)
		pool = append(pool, sym)
		records[sym] = record(sym, 0, 0, false)
	}

	extractor := &fakeExtractor{records: records}
	p := newTestPipeline(&fakeDiscoverer{pool: pool}, extractor)
	result := p.Run(Options{IndexSet: "all", PoolLimit: 3, TopN: 10})

	assert.Equal(t, 3, result.PoolSize)
	assert.Equal(t, 3, extractor.callCount())
}

func TestRunServesFromCacheUntilRefresh(t *testing.T) {
	extractor := &fakeExtractor{
		records: map[string]*metrics.MetricRecord{
			"A": record("A", 0, 0, false),
		},
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"A"}}, extractor)

	first := p.Run(Options{IndexSet: "all", TopN: 10})
	second := p.Run(Options{IndexSet: "all", TopN: 10})

	assert.Equal(t, 1, extractor.callCount(), "second run must hit the cache")
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.RunID, second.RunID)

	third := p.Run(Options{IndexSet: "all", TopN: 10, Refresh: true})
	assert.Equal(t, 2, extractor.callCount())
	assert.False(t, third.FromCache)
	assert.NotEqual(t, first.RunID, third.RunID)
}

func TestRunProgressCallback(t *testing.T) {
	records := map[string]*metrics.MetricRecord{
		"A": record("A", 0, 0, false),
		"B": record("B", 0, 0, false),
	}

	p := newTestPipeline(&fakeDiscoverer{pool: []string{"A", "B"}}, &fakeExtractor{records: records})

	var mu sync.Mutex
	var seen []int
	p.SetProgress(func(done, total int, symbol string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, done)
		assert.Equal(t, 2, total)
	})

	p.Run(Options{IndexSet: "all", TopN: 10})

	assert.Len(t, seen, 2)
}
