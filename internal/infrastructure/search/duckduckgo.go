package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/search"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com"

// DuckDuckGoStrategy scrapes the HTML-only DuckDuckGo frontend. It exists
// as an alternative to Google News for queries that are not news-shaped.
type DuckDuckGoStrategy struct {
	client  *http.Client
	baseURL string
}

var _ search.Strategy = (*DuckDuckGoStrategy)(nil)

// NewDuckDuckGoStrategy wires an HTTP client; baseURL is overridable for tests.
func NewDuckDuckGoStrategy(client *http.Client, baseURL string) *DuckDuckGoStrategy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = duckDuckGoBaseURL
	}
	return &DuckDuckGoStrategy{client: client, baseURL: baseURL}
}

// Name identifies the strategy inside the registry.
func (d *DuckDuckGoStrategy) Name() string {
	return "duckduckgo"
}

// Search fetches one result page and extracts up to req.Limit topics.
func (d *DuckDuckGoStrategy) Search(ctx context.Context, req search.Request) ([]domain.Topic, error) {
	pageURL := fmt.Sprintf("%s/html/?q=%s", d.baseURL, url.QueryEscape(req.Query))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	var topics []domain.Topic
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if req.Limit > 0 && len(topics) >= req.Limit {
			return false
		}

		title := strings.TrimSpace(sel.Find("h2.result__title a").First().Text())
		if title == "" {
			return true
		}

		topics = append(topics, domain.Topic{
			Query:   req.Query,
			Title:   title,
			Snippet: truncateRunes(strings.TrimSpace(sel.Find("a.result__snippet").First().Text()), snippetMaxRunes),
			Source:  "DuckDuckGo",
		})
		return true
	})

	return topics, nil
}
