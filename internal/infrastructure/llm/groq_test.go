package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"AutoPoster/internal/config"
	"AutoPoster/internal/domain"
	"AutoPoster/internal/persona"
)

const draftedPost = "Hot take: coroutines are not magic.\n\nThey are structured concurrency done right.\n\nWhat tripped you up first?\n\n#AndroidDev #Kotlin #JetpackCompose"

func completion(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

// chatServer answers the first request with selection and the second with
// the draft, recording incoming payloads.
func chatServer(t *testing.T, responses ...string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	call := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		requests = append(requests, body)
		if call >= len(responses) {
			t.Errorf("unexpected extra model call %d", call+1)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(responses[call]))
		call++
	}))
	return server, &requests
}

func testGenerator(endpoint string) *GroqGenerator {
	return NewGroqGenerator(config.GroqConfig{
		Endpoint:  endpoint,
		Model:     "llama-3.3-70b-versatile",
		APIKey:    "test-key",
		MaxTokens: 1024,
	}, nil)
}

func candidates() []domain.Topic {
	return []domain.Topic{
		{Title: "Kotlin Coroutines 2025", Snippet: "structured concurrency", Source: "Google News"},
		{Title: "Jetpack Compose Updates", Snippet: "new release", Source: "Google News"},
	}
}

func TestSelectAndDraft(t *testing.T) {
	t.Parallel()

	selection := `{"selected_topic":"Kotlin Coroutines 2025","why_selected":"hot","post_angle":"practical tips","post_type":"technical_tip"}`
	server, requests := chatServer(t, completion(selection), completion(draftedPost))
	defer server.Close()

	post, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if err != nil {
		t.Fatalf("SelectAndDraft error: %v", err)
	}

	if post.ChosenTopic.Title != "Kotlin Coroutines 2025" {
		t.Fatalf("unexpected chosen topic: %s", post.ChosenTopic.Title)
	}
	if post.Body != draftedPost {
		t.Fatalf("unexpected body: %q", post.Body)
	}
	if len(post.Hashtags) != 3 || post.Hashtags[0] != "#AndroidDev" {
		t.Fatalf("unexpected hashtags: %v", post.Hashtags)
	}
	if len(*requests) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(*requests))
	}
	if (*requests)[0]["model"] != "llama-3.3-70b-versatile" {
		t.Fatalf("unexpected model: %v", (*requests)[0]["model"])
	}
}

func TestSelectionToleratesCodeFences(t *testing.T) {
	t.Parallel()

	selection := "```json\n{\"selected_topic\":\"Jetpack Compose Updates\",\"why_selected\":\"fresh\",\"post_angle\":\"release notes\",\"post_type\":\"trend_analysis\"}\n```"
	server, _ := chatServer(t, completion(selection), completion(draftedPost))
	defer server.Close()

	post, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if err != nil {
		t.Fatalf("SelectAndDraft error: %v", err)
	}
	if post.ChosenTopic.Title != "Jetpack Compose Updates" {
		t.Fatalf("unexpected chosen topic: %s", post.ChosenTopic.Title)
	}
}

func TestFabricatedTopicFailsGeneration(t *testing.T) {
	t.Parallel()

	fabricated := `{"selected_topic":"Flutter vs Compose in 2026","why_selected":"x","post_angle":"y","post_type":"hot_take"}`
	// The invalid selection is retried once, then the run fails.
	server, requests := chatServer(t, completion(fabricated), completion(fabricated))
	defer server.Close()

	_, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if len(*requests) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(*requests))
	}
}

func TestSelectionMatchIgnoresCaseAndWhitespace(t *testing.T) {
	t.Parallel()

	selection := `{"selected_topic":"  kotlin   coroutines 2025 ","why_selected":"x","post_angle":"y","post_type":"technical_tip"}`
	server, _ := chatServer(t, completion(selection), completion(draftedPost))
	defer server.Close()

	post, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if err != nil {
		t.Fatalf("SelectAndDraft error: %v", err)
	}
	if post.ChosenTopic.Title != "Kotlin Coroutines 2025" {
		t.Fatalf("unexpected chosen topic: %s", post.ChosenTopic.Title)
	}
}

func TestUnparseableSelectionFails(t *testing.T) {
	t.Parallel()

	server, _ := chatServer(t, completion("I'd pick the Kotlin topic!"), completion("still not JSON"))
	defer server.Close()

	_, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestOverlongDraftFails(t *testing.T) {
	t.Parallel()

	selection := `{"selected_topic":"Kotlin Coroutines 2025","why_selected":"x","post_angle":"y","post_type":"technical_tip"}`
	long := strings.Repeat("a", 4000) + "\n\n#AndroidDev"
	server, _ := chatServer(t, completion(selection), completion(long), completion(long))
	defer server.Close()

	_, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestOffVocabularyHashtagsFailGeneration(t *testing.T) {
	t.Parallel()

	selection := `{"selected_topic":"Kotlin Coroutines 2025","why_selected":"x","post_angle":"y","post_type":"technical_tip"}`
	draft := "Solid post body.\n\n#AndroidDev #CryptoMoon"
	server, _ := chatServer(t, completion(selection), completion(draft), completion(draft))
	defer server.Close()

	_, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "#CryptoMoon") {
		t.Fatalf("error should name the offending tag: %v", err)
	}
}

func TestOffVocabulary(t *testing.T) {
	t.Parallel()

	vocab := []string{"#AndroidDev", "#Kotlin"}
	if bad := offVocabulary([]string{"#androiddev", "#KOTLIN"}, vocab); bad != "" {
		t.Fatalf("vocabulary match must ignore case, flagged %q", bad)
	}
	if bad := offVocabulary([]string{"#AndroidDev", "#Rust"}, vocab); bad != "#Rust" {
		t.Fatalf("expected #Rust flagged, got %q", bad)
	}
	if bad := offVocabulary([]string{"#Anything"}, nil); bad != "" {
		t.Fatalf("empty vocabulary must accept any tag, flagged %q", bad)
	}
}

func TestAPIErrorFailsGeneration(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testGenerator(server.URL).SelectAndDraft(context.Background(), candidates(), persona.Default())
	if !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestExtractHashtags(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want int
	}{
		{"trailing line", "body\n\n#A #B #C", 3},
		{"no hashtags", "plain body text", 0},
		{"mixed last line", "body\nclosing words #A", 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractHashtags(tc.body); len(got) != tc.want {
				t.Fatalf("extractHashtags(%q) = %v, want %d tags", tc.body, got, tc.want)
			}
		})
	}
}
