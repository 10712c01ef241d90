package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/history"
	"AutoPoster/internal/persona"
	"AutoPoster/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.TopicSource
	History   ports.HistoryStore
	Generator ports.ContentGenerator
	Publisher ports.Publisher
	Persona   persona.Persona
	Window    history.WindowPolicy
	Logger    *slog.Logger
	Out       io.Writer
	Now       func() time.Time
}

// Pipeline implements the search-select-draft-publish workflow. One call
// to Run is one complete posting attempt; runs never overlap because
// scheduling happens outside the process.
type Pipeline struct {
	source    ports.TopicSource
	history   ports.HistoryStore
	generator ports.ContentGenerator
	publisher ports.Publisher
	persona   persona.Persona
	window    history.WindowPolicy
	logger    *slog.Logger
	out       io.Writer
	now       func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	return &Pipeline{
		source:    deps.Source,
		history:   deps.History,
		generator: deps.Generator,
		publisher: deps.Publisher,
		persona:   deps.Persona,
		window:    deps.Window,
		logger:    deps.Logger,
		out:       deps.Out,
		now:       deps.Now,
	}
}

// Run executes one posting attempt. In dry-run mode the drafted post is
// only previewed: the publisher is never called and history never changes.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (domain.RunResult, error) {
	result := domain.RunResult{RunID: uuid.NewString()}

	entries, err := p.history.Load(ctx)
	if err != nil {
		return result, fmt.Errorf("load history: %w", err)
	}
	p.info("history loaded", "entries", len(entries))

	pool, err := p.source.FetchTrending(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch trending: %w", err)
	}
	result.Candidates = len(pool)

	now := p.now()
	fresh := make([]domain.Topic, 0, len(pool))
	for _, topic := range pool {
		if history.IsDuplicate(topic.Title, entries, p.window, now) {
			p.info("topic filtered as duplicate", "title", topic.Title)
			continue
		}
		fresh = append(fresh, topic)
	}
	result.Filtered = result.Candidates - len(fresh)

	if len(fresh) == 0 {
		result.Status = domain.StatusNoNovelTopics
		return result, fmt.Errorf("%w: %d candidates, all within the history window", domain.ErrNoNovelTopics, result.Candidates)
	}

	post, err := p.generator.SelectAndDraft(ctx, fresh, p.persona)
	if err != nil {
		return result, fmt.Errorf("select and draft: %w", err)
	}
	result.TopicTitle = post.ChosenTopic.Title
	p.info("post drafted", "topic", post.ChosenTopic.Title, "chars", len(post.Body), "hashtags", len(post.Hashtags))

	if dryRun {
		result.Status = domain.StatusDryRun
		p.renderPreview(post)
		return result, nil
	}

	postID, err := p.publisher.Publish(ctx, post)
	if err != nil {
		return result, fmt.Errorf("publish: %w", err)
	}
	result.PostID = postID
	result.Status = domain.StatusPosted
	p.info("post published", "post_id", postID)

	entry := domain.HistoryEntry{
		ID:         result.RunID,
		Timestamp:  now,
		TopicTitle: post.ChosenTopic.Title,
		PostText:   post.Body,
		PostID:     postID,
		Posted:     true,
	}
	if err := p.history.Append(ctx, entry); err != nil {
		// The share is already live; report the bookkeeping failure loudly
		// so the next run knows its dedup context is incomplete.
		return result, fmt.Errorf("post %s published but history append failed: %w", postID, err)
	}

	return result, nil
}

func (p *Pipeline) renderPreview(post domain.GeneratedPost) {
	sep := strings.Repeat("=", 60)
	fmt.Fprintf(p.out, "%s\nDRY RUN - post preview (topic: %s)\n%s\n%s\n%s\n",
		sep, post.ChosenTopic.Title, sep, post.Body, sep)
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
