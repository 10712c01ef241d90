package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/search"
)

const (
	googleNewsBaseURL = "https://news.google.com"
	snippetMaxRunes   = 200

	// Google News serves an empty feed to unidentified clients.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// GoogleNewsStrategy queries the Google News RSS search endpoint and maps
// feed items to topic candidates.
type GoogleNewsStrategy struct {
	client  *http.Client
	parser  *rss.Parser
	baseURL string
}

var _ search.Strategy = (*GoogleNewsStrategy)(nil)

// NewGoogleNewsStrategy wires an HTTP client; baseURL is overridable for tests.
func NewGoogleNewsStrategy(client *http.Client, baseURL string) *GoogleNewsStrategy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = googleNewsBaseURL
	}
	return &GoogleNewsStrategy{client: client, parser: &rss.Parser{}, baseURL: baseURL}
}

// Name identifies the strategy inside the registry.
func (g *GoogleNewsStrategy) Name() string {
	return "googlenews"
}

// Search fetches the RSS feed for one query and returns up to req.Limit topics.
func (g *GoogleNewsStrategy) Search(ctx context.Context, req search.Request) ([]domain.Topic, error) {
	feedURL := fmt.Sprintf("%s/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en", g.baseURL, url.QueryEscape(req.Query))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("User-Agent", browserUserAgent)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed status %s", resp.Status)
	}

	// The rss parser keeps per-item <source> elements, which the universal
	// gofeed parser folds away.
	feed, err := g.parser.Parse(io.LimitReader(resp.Body, 1<<22))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	limit := req.Limit
	if limit <= 0 || limit > len(feed.Items) {
		limit = len(feed.Items)
	}

	topics := make([]domain.Topic, 0, limit)
	for _, item := range feed.Items[:limit] {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		topics = append(topics, domain.Topic{
			Query:   req.Query,
			Title:   title,
			Snippet: truncateRunes(stripHTML(item.Description), snippetMaxRunes),
			Source:  itemSource(item),
		})
	}

	return topics, nil
}

func itemSource(item *rss.Item) string {
	if item.Source != nil {
		if src := strings.TrimSpace(item.Source.Title); src != "" {
			return src
		}
	}
	return "Google News"
}

// stripHTML flattens markup-bearing descriptions to plain text.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
