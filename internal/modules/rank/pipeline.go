// Package rank orchestrates the scan: discover tickers, extract and score
// each symbol best-effort, sort, and truncate to the top N.
package rank

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/market-hunter/internal/modules/metrics"
	"github.com/aristath/market-hunter/internal/modules/scoring"
	"github.com/aristath/market-hunter/pkg/formulas"
)

// Discoverer produces the candidate pool for an index set
type Discoverer interface {
	Discover(indexSet string) []string
}

// Extractor derives metrics for one symbol
type Extractor interface {
	Extract(symbol string) (*metrics.MetricRecord, *metrics.Failure)
}

// Scorer assigns a score and label to a metric record
type Scorer interface {
	Score(rec metrics.MetricRecord) scoring.ScoredRecord
}

// Options select what one run scans
type Options struct {
	IndexSet  string
	PoolLimit int // 0 scans the whole pool
	TopN      int
	Refresh   bool // bypass the cache
}

// Result is the externally visible artifact of one run
type Result struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	IndexSet    string                 `json:"index_set"`
	PoolSize    int                    `json:"pool_size"`
	Survived    int                    `json:"survived"`
	Records     []scoring.ScoredRecord `json:"records"`
	Failures    map[string]int         `json:"failures,omitempty"` // counts by reason
	ScoreMean   float64                `json:"score_mean"`
	ScoreStdDev float64                `json:"score_stddev"`
	Warning     string                 `json:"warning,omitempty"`
	FromCache   bool                   `json:"from_cache,omitempty"`
}

// ProgressFunc receives per-symbol progress during a run
type ProgressFunc func(done, total int, symbol string)

// Config holds pipeline configuration
type Config struct {
	Workers  int
	CacheTTL time.Duration
}

// Pipeline runs the scan end to end. Per-symbol failures never fail a run;
// they only shrink it.
type Pipeline struct {
	discoverer Discoverer
	extractor  Extractor
	scorer     Scorer
	cache      *Cache
	workers    int
	progress   ProgressFunc
	log        zerolog.Logger
}

// New creates a pipeline
func New(discoverer Discoverer, extractor Extractor, scorer Scorer, cfg Config, log zerolog.Logger) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}

	return &Pipeline{
		discoverer: discoverer,
		extractor:  extractor,
		scorer:     scorer,
		cache:      NewCache(cfg.CacheTTL),
		workers:    cfg.Workers,
		log:        log.With().Str("component", "rank").Logger(),
	}
}

// SetProgress registers a progress callback. Must be called before Run.
func (p *Pipeline) SetProgress(fn ProgressFunc) {
	p.progress = fn
}

// InvalidateCache drops cached results, forcing the next run to recompute
func (p *Pipeline) InvalidateCache() {
	p.cache.Invalidate()
}

// Run executes one scan. It never returns an error: all failure modes
// degrade to fewer records, and zero survivors is reported via Warning.
func (p *Pipeline) Run(opts Options) *Result {
	if opts.TopN <= 0 {
		opts.TopN = 30
	}

	key := fmt.Sprintf("%s|%d|%d", opts.IndexSet, opts.PoolLimit, opts.TopN)
	if !opts.Refresh {
		if cached := p.cache.Get(key); cached != nil {
			p.log.Debug().Str("key", key).Msg("Serving scan from cache")
			hit := *cached
			hit.FromCache = true
			return &hit
		}
	}

	start := time.Now()

	pool := p.discoverer.Discover(opts.IndexSet)
	if opts.PoolLimit > 0 && len(pool) > opts.PoolLimit {
		pool = pool[:opts.PoolLimit]
	}

	result := &Result{
		RunID:       uuid.New().String(),
		GeneratedAt: start,
		IndexSet:    opts.IndexSet,
		PoolSize:    len(pool),
		Records:     []scoring.ScoredRecord{},
		Failures:    make(map[string]int),
	}

	if len(pool) == 0 {
		result.Warning = "no candidate symbols discovered"
		p.log.Warn().Str("index_set", opts.IndexSet).Msg("Scan found no candidates")
		return result
	}

	p.log.Info().
		Str("index_set", opts.IndexSet).
		Int("pool", len(pool)).
		Int("workers", p.workers).
		Msg("Starting scan")

	// Extract concurrently into a slice indexed by discovery position so
	// the tie-break order stays deterministic regardless of completion
	// order.
	scored := make([]*scoring.ScoredRecord, len(pool))
	failures := make([]*metrics.Failure, len(pool))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	jobs := make(chan int)

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				symbol := pool[i]

				rec, fail := p.extractor.Extract(symbol)
				if fail != nil {
					failures[i] = fail
				} else {
					s := p.scorer.Score(*rec)
					scored[i] = &s
				}

				mu.Lock()
				done++
				n := done
				mu.Unlock()

				if p.progress != nil {
					p.progress(n, len(pool), symbol)
				}
			}
		}()
	}

	for i := range pool {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range pool {
		if fail := failures[i]; fail != nil {
			result.Failures[string(fail.Reason)]++
			p.log.Debug().Str("symbol", fail.Symbol).Str("reason", string(fail.Reason)).Msg("Symbol dropped")
			continue
		}
		if scored[i] != nil {
			result.Records = append(result.Records, *scored[i])
		}
	}

	result.Survived = len(result.Records)

	if result.Survived == 0 {
		result.Warning = "no symbols survived extraction"
		p.log.Warn().Int("pool", len(pool)).Msg("Scan produced no usable records")
		return result
	}

	// Stable sort: score descending, then prior-year return descending,
	// then discovery order.
	sort.SliceStable(result.Records, func(a, b int) bool {
		if result.Records[a].Score != result.Records[b].Score {
			return result.Records[a].Score > result.Records[b].Score
		}
		return result.Records[a].PriorYearReturnPct > result.Records[b].PriorYearReturnPct
	})

	if len(result.Records) > opts.TopN {
		result.Records = result.Records[:opts.TopN]
	}

	scores := make([]float64, len(result.Records))
	for i, rec := range result.Records {
		scores[i] = float64(rec.Score)
	}
	result.ScoreMean = formulas.Round2(formulas.Mean(scores))
	result.ScoreStdDev = formulas.Round2(formulas.StdDev(scores))

	p.cache.Set(key, result)

	p.log.Info().
		Str("run_id", result.RunID).
		Int("pool", result.PoolSize).
		Int("survived", result.Survived).
		Int("top", len(result.Records)).
		Dur("duration", time.Since(start)).
		Msg("Scan completed")

	return result
}
