package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/market-hunter/internal/modules/metrics"
)

func TestScoreAllRulesSatisfied(t *testing.T) {
	e := NewEngine(DefaultConfig())

	// Current price 110 above moving average 100, 20% upside, strong buy:
	// every weighted rule fires and the weights sum to exactly 100.
	rec := metrics.MetricRecord{
		Symbol:            "TEST",
		LatestClose:       110,
		SMA:               100,
		AboveSMA:          true,
		ForecastUpsidePct: 20,
		Consensus:         "strong_buy",
	}

	scored := e.Score(rec)
	assert.Equal(t, 100, scored.Score)
	assert.Equal(t, LabelExcellent, scored.Label)
}

func TestScoreRuleCombinations(t *testing.T) {
	e := NewEngine(DefaultConfig())

	tests := []struct {
		name      string
		rec       metrics.MetricRecord
		wantScore int
		wantLabel string
	}{
		{
			name:      "nothing fires",
			rec:       metrics.MetricRecord{},
			wantScore: 0,
			wantLabel: LabelNeutral,
		},
		{
			name:      "momentum only",
			rec:       metrics.MetricRecord{AboveSMA: true},
			wantScore: 30,
			wantLabel: LabelNeutral,
		},
		{
			name:      "upside only",
			rec:       metrics.MetricRecord{ForecastUpsidePct: 15},
			wantScore: 40,
			wantLabel: LabelNeutral,
		},
		{
			name:      "upside at threshold does not fire",
			rec:       metrics.MetricRecord{ForecastUpsidePct: 10},
			wantScore: 0,
			wantLabel: LabelNeutral,
		},
		{
			name:      "momentum plus consensus",
			rec:       metrics.MetricRecord{AboveSMA: true, Consensus: "buy"},
			wantScore: 60,
			wantLabel: LabelBullish,
		},
		{
			name:      "camel-case strongBuy also counts",
			rec:       metrics.MetricRecord{Consensus: "strongBuy"},
			wantScore: 30,
			wantLabel: LabelNeutral,
		},
		{
			name:      "hold does not count",
			rec:       metrics.MetricRecord{AboveSMA: true, ForecastUpsidePct: 15, Consensus: "hold"},
			wantScore: 70,
			wantLabel: LabelBullish,
		},
		{
			name:      "momentum plus upside plus buy",
			rec:       metrics.MetricRecord{AboveSMA: true, ForecastUpsidePct: 15, Consensus: "buy"},
			wantScore: 100,
			wantLabel: LabelExcellent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := e.Score(tt.rec)
			assert.Equal(t, tt.wantScore, scored.Score)
			assert.Equal(t, tt.wantLabel, scored.Label)
			assert.GreaterOrEqual(t, scored.Score, 0)
			assert.LessOrEqual(t, scored.Score, 100)
		})
	}
}

func TestLabelForIsPureInScore(t *testing.T) {
	for score := 0; score <= 100; score++ {
		first := LabelFor(score)
		second := LabelFor(score)
		assert.Equal(t, first, second, "label must be deterministic for score %d", score)
	}

	assert.Equal(t, LabelExcellent, LabelFor(80))
	assert.Equal(t, LabelBullish, LabelFor(79))
	assert.Equal(t, LabelBullish, LabelFor(50))
	assert.Equal(t, LabelNeutral, LabelFor(49))
}

func TestScoreDeterministic(t *testing.T) {
	e := NewEngine(DefaultConfig())

	rec := metrics.MetricRecord{
		Symbol:            "TEST",
		AboveSMA:          true,
		ForecastUpsidePct: 12.5,
		Consensus:         "buy",
	}

	first := e.Score(rec)
	second := e.Score(rec)
	assert.Equal(t, first, second)
}
