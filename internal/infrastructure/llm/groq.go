package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/history"
	"AutoPoster/internal/persona"
	"AutoPoster/internal/ports"
)

const (
	selectTemperature = 0.5
	draftTemperature  = 0.8

	// One extra attempt per model call before the run is declared failed.
	maxAttempts = 2
)

// GroqGenerator implements ports.ContentGenerator against an
// OpenAI-compatible chat completions endpoint.
type GroqGenerator struct {
	endpoint   string
	model      string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.ContentGenerator = (*GroqGenerator)(nil)

// NewGroqGenerator builds a client from configuration.
func NewGroqGenerator(cfg config.GroqConfig, log *slog.Logger) *GroqGenerator {
	return &GroqGenerator{
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}
}

// SelectAndDraft asks the model to pick one candidate and draft the post.
// The chosen topic must be a verbatim member of candidates; anything else
// fails the run rather than silently substituting a topic.
func (g *GroqGenerator) SelectAndDraft(ctx context.Context, candidates []domain.Topic, p persona.Persona) (domain.GeneratedPost, error) {
	if g == nil || g.apiKey == "" || g.endpoint == "" || g.model == "" {
		return domain.GeneratedPost{}, fmt.Errorf("%w: generator misconfigured", domain.ErrGenerationFailed)
	}
	if len(candidates) == 0 {
		return domain.GeneratedPost{}, fmt.Errorf("%w: empty candidate pool", domain.ErrGenerationFailed)
	}

	sel, err := withRetry(ctx, g.logger, "select topic", func() (domain.TopicSelection, error) {
		return g.selectTopic(ctx, candidates, p)
	})
	if err != nil {
		return domain.GeneratedPost{}, err
	}

	post, err := withRetry(ctx, g.logger, "draft post", func() (domain.GeneratedPost, error) {
		return g.draftPost(ctx, sel, p)
	})
	if err != nil {
		return domain.GeneratedPost{}, err
	}

	return post, nil
}

// withRetry runs fn up to maxAttempts times, keeping the last error.
func withRetry[T any](ctx context.Context, logger *slog.Logger, step string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if logger != nil && attempt < maxAttempts {
			logger.Warn("retrying model call", "step", step, "attempt", attempt, "error", err)
		}
	}
	return zero, lastErr
}

type topicPickerResponse struct {
	SelectedTopic string `json:"selected_topic"`
	WhySelected   string `json:"why_selected"`
	PostAngle     string `json:"post_angle"`
	PostType      string `json:"post_type"`
}

func (g *GroqGenerator) selectTopic(ctx context.Context, candidates []domain.Topic, p persona.Persona) (domain.TopicSelection, error) {
	raw, err := g.chat(ctx, p.System(), persona.TopicPickerPrompt(candidates, p), selectTemperature)
	if err != nil {
		return domain.TopicSelection{}, err
	}

	var picked topicPickerResponse
	if err := json.Unmarshal([]byte(stripFences(raw)), &picked); err != nil {
		return domain.TopicSelection{}, fmt.Errorf("%w: unparseable selection: %v", domain.ErrGenerationFailed, err)
	}
	if picked.SelectedTopic == "" || picked.PostAngle == "" {
		return domain.TopicSelection{}, fmt.Errorf("%w: selection missing required fields", domain.ErrGenerationFailed)
	}

	want := history.NormalizeTitle(picked.SelectedTopic)
	for _, c := range candidates {
		if history.NormalizeTitle(c.Title) == want {
			return domain.TopicSelection{
				Topic:    c,
				Reason:   picked.WhySelected,
				Angle:    picked.PostAngle,
				PostType: picked.PostType,
			}, nil
		}
	}

	return domain.TopicSelection{}, fmt.Errorf("%w: model chose %q, not a supplied candidate", domain.ErrGenerationFailed, picked.SelectedTopic)
}

func (g *GroqGenerator) draftPost(ctx context.Context, sel domain.TopicSelection, p persona.Persona) (domain.GeneratedPost, error) {
	raw, err := g.chat(ctx, p.System(), persona.PostGeneratorPrompt(sel, p), draftTemperature)
	if err != nil {
		return domain.GeneratedPost{}, err
	}

	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, `"`) && strings.HasSuffix(body, `"`) && len(body) > 1 {
		body = body[1 : len(body)-1]
	}
	if body == "" {
		return domain.GeneratedPost{}, fmt.Errorf("%w: empty draft", domain.ErrGenerationFailed)
	}
	if limit := p.MaxPostChars; limit > 0 && len([]rune(body)) > limit {
		return domain.GeneratedPost{}, fmt.Errorf("%w: draft exceeds %d characters", domain.ErrGenerationFailed, limit)
	}

	hashtags := extractHashtags(body)
	if len(hashtags) == 0 {
		return domain.GeneratedPost{}, fmt.Errorf("%w: draft carries no hashtags", domain.ErrGenerationFailed)
	}
	if bad := offVocabulary(hashtags, p.Hashtags); bad != "" {
		return domain.GeneratedPost{}, fmt.Errorf("%w: hashtag %s outside persona vocabulary", domain.ErrGenerationFailed, bad)
	}

	return domain.GeneratedPost{
		ChosenTopic: sel.Topic,
		Body:        body,
		Hashtags:    hashtags,
	}, nil
}

// chat performs one completion request and returns the first choice.
func (g *GroqGenerator) chat(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
		"max_tokens":  g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: api error %s: %s", domain.ErrGenerationFailed, resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", domain.ErrGenerationFailed)
	}

	return parsed.Choices[0].Message.Content, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// wrap around JSON despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[3:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// offVocabulary returns the first tag not in the persona vocabulary,
// compared case-insensitively. An empty vocabulary accepts any tag.
func offVocabulary(tags, vocabulary []string) string {
	if len(vocabulary) == 0 {
		return ""
	}
	allowed := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		allowed[strings.ToLower(v)] = struct{}{}
	}
	for _, tag := range tags {
		if _, ok := allowed[strings.ToLower(tag)]; !ok {
			return tag
		}
	}
	return ""
}

// extractHashtags pulls the trailing hashtag line off the drafted body.
func extractHashtags(body string) []string {
	lines := strings.Split(body, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		var tags []string
		for _, f := range fields {
			if strings.HasPrefix(f, "#") && len(f) > 1 {
				tags = append(tags, f)
			}
		}
		if len(tags) == len(fields) {
			return tags
		}
		return nil
	}
	return nil
}
