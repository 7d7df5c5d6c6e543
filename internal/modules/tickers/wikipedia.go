package tickers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// WikipediaSource scrapes an index constituents table from a Wikipedia page
type WikipediaSource struct {
	name      string
	url       string
	symbolCol int // zero-based column of the ticker cell
	client    *http.Client
	log       zerolog.Logger
}

// NewSP500Source lists the S&P 500 constituents
func NewSP500Source(log zerolog.Logger) *WikipediaSource {
	return newWikipediaSource("sp500",
		"https://en.wikipedia.org/wiki/List_of_S%26P_500_companies", 0, log)
}

// NewNasdaq100Source lists the Nasdaq-100 constituents. The ticker sits in
// the second column of that table, after the company name.
func NewNasdaq100Source(log zerolog.Logger) *WikipediaSource {
	return newWikipediaSource("nasdaq100",
		"https://en.wikipedia.org/wiki/Nasdaq-100", 1, log)
}

func newWikipediaSource(name, url string, symbolCol int, log zerolog.Logger) *WikipediaSource {
	return &WikipediaSource{
		name:      name,
		url:       url,
		symbolCol: symbolCol,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("source", name).Logger(),
	}
}

// Name returns the source name
func (s *WikipediaSource) Name() string {
	return s.name
}

// Discover scrapes the constituents table and returns the raw ticker column
func (s *WikipediaSource) Discover() ([]string, error) {
	req, err := http.NewRequest("GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "market-hunter/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		// Page layout changes occasionally; fall back to the first wikitable
		table = doc.Find("table.wikitable").First()
	}
	if table.Length() == 0 {
		return nil, fmt.Errorf("no constituents table found at %s", s.url)
	}

	var symbols []string
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= s.symbolCol {
			return // header row or malformed row
		}

		sym := strings.TrimSpace(cells.Eq(s.symbolCol).Text())
		if sym != "" {
			symbols = append(symbols, sym)
		}
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("constituents table at %s had no ticker cells", s.url)
	}

	return symbols, nil
}
