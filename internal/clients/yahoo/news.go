package yahoo

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// rssFeed mirrors the Yahoo Finance per-symbol headline RSS document
type rssFeed struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title   string `xml:"title"`
			Link    string `xml:"link"`
			Source  string `xml:"source"`
			PubDate string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

// GetLatestHeadline fetches the single most recent news item for a symbol
// from the Yahoo Finance headline feed. Returns nil when the feed is empty.
func (c *Client) GetLatestHeadline(symbol string) (*NewsHeadline, error) {
	baseURL := "https://feeds.finance.yahoo.com/rss/2.0/headline"

	params := url.Values{}
	params.Add("s", NormalizeSymbol(symbol))
	params.Add("region", "US")
	params.Add("lang", "en-US")

	req, err := http.NewRequest("GET", baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headline feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("headline feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	if len(feed.Channel.Items) == 0 {
		return nil, nil
	}

	item := feed.Channel.Items[0]

	publisher := item.Source
	if publisher == "" {
		publisher = "Yahoo Finance"
	}

	published, err := time.Parse(time.RFC1123, item.PubDate)
	if err != nil {
		// Some feeds emit the zone as a numeric offset
		published, _ = time.Parse(time.RFC1123Z, item.PubDate)
	}

	return &NewsHeadline{
		Symbol:      symbol,
		Title:       item.Title,
		Publisher:   publisher,
		Link:        item.Link,
		PublishedAt: published,
	}, nil
}
