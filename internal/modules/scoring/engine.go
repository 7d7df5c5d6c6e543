// Package scoring maps metric records to a bounded buy score and label.
package scoring

import (
	"strings"

	"github.com/aristath/market-hunter/internal/modules/metrics"
)

// Weights are the fixed rule weights. They sum to 100 so the score is
// capped by construction.
type Weights struct {
	Momentum  int // price above its trailing moving average
	Upside    int // forecast upside beyond the threshold
	Consensus int // analyst recommendation contains "buy"
}

// Config holds score engine configuration
type Config struct {
	Weights            Weights
	UpsideThresholdPct float64
}

// DefaultConfig is the canonical rule set
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Momentum:  30,
			Upside:    40,
			Consensus: 30,
		},
		UpsideThresholdPct: 10.0,
	}
}

// Labels by score threshold
const (
	LabelExcellent = "excellent"
	LabelBullish   = "bullish"
	LabelNeutral   = "neutral"
)

// ScoredRecord is a MetricRecord plus its score and label. Immutable after
// creation.
type ScoredRecord struct {
	metrics.MetricRecord

	Score int    `json:"score"`
	Label string `json:"label"`
}

// Engine is a stateless, deterministic scorer
type Engine struct {
	cfg Config
}

// NewEngine creates a score engine
func NewEngine(cfg Config) *Engine {
	if cfg.Weights == (Weights{}) {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Score applies the weighted rules to a metric record
func (e *Engine) Score(rec metrics.MetricRecord) ScoredRecord {
	score := 0

	if rec.AboveSMA {
		score += e.cfg.Weights.Momentum
	}

	if rec.ForecastUpsidePct > e.cfg.UpsideThresholdPct {
		score += e.cfg.Weights.Upside
	}

	if strings.Contains(strings.ToLower(rec.Consensus), "buy") {
		score += e.cfg.Weights.Consensus
	}

	return ScoredRecord{
		MetricRecord: rec,
		Score:        score,
		Label:        LabelFor(score),
	}
}

// LabelFor maps a score to its categorical label. Pure function of the
// score so repeated calls always agree.
func LabelFor(score int) string {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 50:
		return LabelBullish
	default:
		return LabelNeutral
	}
}
