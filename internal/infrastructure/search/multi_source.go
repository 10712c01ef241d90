package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/history"
	"AutoPoster/internal/ports"
	"AutoPoster/internal/search"
)

// MultiSource implements ports.TopicSource by fanning the configured
// queries out to one registered search strategy. Individual query
// failures degrade the pool instead of aborting the run.
type MultiSource struct {
	registry *search.Registry
	cfg      config.SearchConfig
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ ports.TopicSource = (*MultiSource)(nil)

// NewMultiSource wires the strategy registry with config-defined queries.
// Queries are spaced out to one per second to stay polite upstream.
func NewMultiSource(reg *search.Registry, cfg config.SearchConfig, log *slog.Logger) *MultiSource {
	return &MultiSource{
		registry: reg,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		logger:   log,
	}
}

// FetchTrending executes every configured query and returns a deduplicated,
// capped candidate pool. When every query yields nothing, the configured
// fallback topics (if any) stand in.
func (s *MultiSource) FetchTrending(ctx context.Context) ([]domain.Topic, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("search registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.cfg.Strategy)
	if err != nil {
		return nil, err
	}

	s.debug("fetch trending", "strategy", strategy.Name(), "queries", len(s.cfg.Queries))

	seen := map[string]struct{}{}
	var pool []domain.Topic

	for _, query := range s.cfg.Queries {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		results, err := strategy.Search(ctx, search.Request{Query: query, Limit: s.cfg.ResultsPerQuery})
		if err != nil {
			s.warn("query failed", "query", query, "error", fmt.Errorf("%w: %v", domain.ErrSearchFailed, err))
			continue
		}
		if len(results) == 0 {
			s.debug("query returned no results", "query", query)
			continue
		}

		for _, topic := range results {
			key := history.NormalizeTitle(topic.Title)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			pool = append(pool, topic)
		}
	}

	if len(pool) == 0 && len(s.cfg.Fallback) > 0 {
		s.warn("all queries empty, using fallback topics", "count", len(s.cfg.Fallback))
		pool = fallbackTopics(s.cfg.Fallback)
	}

	if s.cfg.MaxCandidates > 0 && len(pool) > s.cfg.MaxCandidates {
		pool = pool[:s.cfg.MaxCandidates]
	}

	s.debug("candidate pool assembled", "candidates", len(pool))
	return pool, nil
}

func fallbackTopics(cfg []config.FallbackTopic) []domain.Topic {
	topics := make([]domain.Topic, 0, len(cfg))
	for _, f := range cfg {
		topics = append(topics, domain.Topic{
			Title:   f.Title,
			Snippet: f.Snippet,
			Source:  f.Source,
		})
	}
	return topics
}

func (s *MultiSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *MultiSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
