package domain

import "time"

// Topic is a single search hit gathered during one run. Topics are
// ephemeral: they live for the duration of a run and are never persisted
// individually.
type Topic struct {
	Query   string
	Title   string
	Snippet string
	Source  string
}

// TopicSelection is the structured answer of the topic-picker model call.
type TopicSelection struct {
	Topic    Topic
	Reason   string
	Angle    string
	PostType string
}

// GeneratedPost is the drafted content for one run, produced by the
// content generator and consumed by the publisher.
type GeneratedPost struct {
	ChosenTopic Topic
	Body        string
	Hashtags    []string
}

// HistoryEntry records one past posting decision for deduplication and
// audit. Entries are appended in chronological order.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	TopicTitle string    `json:"topic_title"`
	PostText   string    `json:"post_text"`
	PostID     string    `json:"post_id,omitempty"`
	Posted     bool      `json:"posted"`
}

// RunStatus enumerates terminal states of a single pipeline run.
type RunStatus string

const (
	StatusPosted        RunStatus = "posted"
	StatusDryRun        RunStatus = "dry-run"
	StatusNoNovelTopics RunStatus = "no-novel-topics"
)

// RunResult summarizes one pipeline execution.
type RunResult struct {
	RunID      string
	Status     RunStatus
	TopicTitle string
	PostID     string
	Candidates int
	Filtered   int
}
