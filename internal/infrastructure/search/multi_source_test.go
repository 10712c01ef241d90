package search

import (
	"context"
	"errors"
	"testing"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/search"
)

// stubStrategy returns canned results per query.
type stubStrategy struct {
	name    string
	results map[string][]domain.Topic
	errs    map[string]error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Search(_ context.Context, req search.Request) ([]domain.Topic, error) {
	if err := s.errs[req.Query]; err != nil {
		return nil, err
	}
	return s.results[req.Query], nil
}

func newSource(strategy *stubStrategy, cfg config.SearchConfig) *MultiSource {
	reg := search.NewRegistry()
	reg.Register(strategy)
	cfg.Strategy = strategy.name
	return NewMultiSource(reg, cfg, nil)
}

func TestFetchTrendingAbsorbsQueryFailures(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{
		name: "stub",
		results: map[string][]domain.Topic{
			"good": {{Title: "Topic A"}, {Title: "Topic B"}},
		},
		errs: map[string]error{"bad": errors.New("engine down")},
	}
	source := newSource(strategy, config.SearchConfig{
		Queries:         []string{"bad", "good"},
		ResultsPerQuery: 3,
		MaxCandidates:   5,
	})

	pool, err := source.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("FetchTrending error: %v", err)
	}
	if len(pool) != 2 {
		t.Fatalf("expected failing query to degrade, not abort; got %d topics", len(pool))
	}
}

func TestFetchTrendingDeduplicatesAndCaps(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{
		name: "stub",
		results: map[string][]domain.Topic{
			"q1": {{Title: "Kotlin 2.1"}, {Title: "Compose 1.8"}},
			"q2": {{Title: "KOTLIN  2.1"}, {Title: "Android 16"}, {Title: "Wear OS 6"}},
		},
	}
	source := newSource(strategy, config.SearchConfig{
		Queries:         []string{"q1", "q2"},
		ResultsPerQuery: 3,
		MaxCandidates:   3,
	})

	pool, err := source.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("FetchTrending error: %v", err)
	}

	if len(pool) != 3 {
		t.Fatalf("expected cap at 3 candidates, got %d", len(pool))
	}
	for _, topic := range pool {
		if topic.Title == "KOTLIN  2.1" {
			t.Fatal("case/whitespace duplicate survived")
		}
	}
	if pool[0].Title != "Kotlin 2.1" || pool[2].Title != "Android 16" {
		t.Fatalf("unexpected pool order: %+v", pool)
	}
}

func TestFetchTrendingFallsBackWhenEmpty(t *testing.T) {
	t.Parallel()

	strategy := &stubStrategy{name: "stub"}
	source := newSource(strategy, config.SearchConfig{
		Queries:         []string{"q1"},
		ResultsPerQuery: 3,
		MaxCandidates:   5,
		Fallback: []config.FallbackTopic{
			{Title: "Kotlin 2.0 and the future of Android development", Snippet: "major improvements", Source: "Android Weekly"},
		},
	})

	pool, err := source.FetchTrending(context.Background())
	if err != nil {
		t.Fatalf("FetchTrending error: %v", err)
	}
	if len(pool) != 1 || pool[0].Source != "Android Weekly" {
		t.Fatalf("expected fallback topics, got %+v", pool)
	}
}

func TestFetchTrendingUnknownStrategy(t *testing.T) {
	t.Parallel()

	source := NewMultiSource(search.NewRegistry(), config.SearchConfig{Strategy: "missing", Queries: []string{"q"}}, nil)
	if _, err := source.FetchTrending(context.Background()); err == nil {
		t.Fatal("expected error for unregistered strategy")
	}
}
