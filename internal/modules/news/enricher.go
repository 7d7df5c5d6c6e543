// Package news attaches the most recent headline to each ranked symbol.
package news

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/market-hunter/internal/clients/yahoo"
)

// HeadlineFetcher provides the most recent news item for a symbol
type HeadlineFetcher interface {
	GetLatestHeadline(symbol string) (*yahoo.NewsHeadline, error)
}

// Enricher fetches one headline per symbol, best effort
type Enricher struct {
	fetcher HeadlineFetcher
	delay   time.Duration // fixed pause between fetches to avoid throttling
	log     zerolog.Logger
}

// NewEnricher creates a news enricher
func NewEnricher(fetcher HeadlineFetcher, delay time.Duration, log zerolog.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		delay:   delay,
		log:     log.With().Str("component", "news").Logger(),
	}
}

// Enrich returns at most one headline per symbol. Symbols whose fetch
// fails or returns nothing are simply absent; the map keeps no ordering
// beyond lookup by symbol.
func (e *Enricher) Enrich(symbols []string) map[string]yahoo.NewsHeadline {
	feed := make(map[string]yahoo.NewsHeadline, len(symbols))

	for i, symbol := range symbols {
		if i > 0 && e.delay > 0 {
			time.Sleep(e.delay)
		}

		headline, err := e.fetcher.GetLatestHeadline(symbol)
		if err != nil {
			e.log.Debug().Err(err).Str("symbol", symbol).Msg("Headline fetch failed, skipping")
			continue
		}
		if headline == nil {
			continue
		}

		feed[symbol] = *headline
	}

	e.log.Info().Int("symbols", len(symbols)).Int("headlines", len(feed)).Msg("News feed assembled")

	return feed
}
