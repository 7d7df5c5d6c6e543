package yahoo

import "time"

// Quote contains the descriptive and analyst fields the scanner reads for
// one symbol. Optional fields keep their "missing" state as nil pointers;
// the caller decides the default policy.
type Quote struct {
	Symbol         string   `json:"symbol"`
	Name           string   `json:"name"`
	QuoteType      string   `json:"quote_type"` // EQUITY, ETF, MUTUALFUND, ...
	Sector         string   `json:"sector,omitempty"`
	Price          float64  `json:"price"`
	TargetMean     *float64 `json:"target_mean,omitempty"`     // analyst mean target price
	Recommendation string   `json:"recommendation,omitempty"`  // recommendationKey, e.g. "buy"
	DividendYield  *float64 `json:"dividend_yield,omitempty"`  // fraction, e.g. 0.0134
}

// HistoricalPrice represents a single daily data point
type HistoricalPrice struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	AdjClose float64   `json:"adj_close"`
}

// NewsHeadline is the most recent news item for a symbol
type NewsHeadline struct {
	Symbol      string    `json:"symbol"`
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}
