// Package tickers discovers the candidate symbol pool from public listings.
package tickers

import (
	"strings"

	"github.com/rs/zerolog"
)

// Source produces candidate symbols from one external listing
type Source interface {
	Name() string
	Discover() ([]string, error)
}

// Registry assembles the candidate pool from a set of sources
type Registry struct {
	sources map[string]Source
	log     zerolog.Logger
}

// NewRegistry creates a registry over the given sources
func NewRegistry(log zerolog.Logger, sources ...Source) *Registry {
	m := make(map[string]Source, len(sources))
	for _, src := range sources {
		m[src.Name()] = src
	}

	return &Registry{
		sources: m,
		log:     log.With().Str("component", "tickers").Logger(),
	}
}

// sourcesFor maps an index-set selector to source names
func sourcesFor(indexSet string) []string {
	switch strings.ToLower(strings.TrimSpace(indexSet)) {
	case "sp500":
		return []string{"sp500"}
	case "nasdaq":
		return []string{"nasdaq100"}
	case "etf":
		return []string{"etf-leaders"}
	case "both":
		return []string{"sp500", "nasdaq100"}
	default: // "all" and anything unrecognized scan everything
		return []string{"sp500", "nasdaq100", "etf-leaders"}
	}
}

// Discover returns the deduplicated union of the selected sources, in
// first-seen order. A failing source is skipped; when every source fails
// the result is an empty pool, not an error.
func (r *Registry) Discover(indexSet string) []string {
	seen := make(map[string]bool)
	var pool []string

	for _, name := range sourcesFor(indexSet) {
		src, ok := r.sources[name]
		if !ok {
			continue
		}

		symbols, err := src.Discover()
		if err != nil {
			r.log.Warn().Err(err).Str("source", name).Msg("Ticker source failed, skipping")
			continue
		}

		added := 0
		for _, sym := range symbols {
			sym = strings.ToUpper(strings.TrimSpace(sym))
			if sym == "" || seen[sym] {
				continue
			}
			seen[sym] = true
			pool = append(pool, sym)
			added++
		}

		r.log.Info().Str("source", name).Int("symbols", added).Msg("Ticker source discovered")
	}

	return pool
}
