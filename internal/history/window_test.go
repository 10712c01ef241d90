package history

import (
	"testing"
	"time"

	"AutoPoster/internal/domain"
)

func entry(title string, age time.Duration, now time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{TopicTitle: title, Timestamp: now.Add(-age), Posted: true}
}

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"Jetpack Compose Updates", "jetpack compose updates"},
		{"  Jetpack   Compose\tUpdates ", "jetpack compose updates"},
		{"JETPACK COMPOSE UPDATES", "jetpack compose updates"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := NormalizeTitle(tc.in); got != tc.want {
			t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsDuplicate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 8, 12, 0, 0, 0, time.UTC)
	entries := []domain.HistoryEntry{
		entry("Kotlin 2.0 Released", 48*time.Hour, now),
		entry("Jetpack Compose Updates", 24*time.Hour, now),
	}
	policy := DefaultWindow()

	if !IsDuplicate("Jetpack Compose Updates", entries, policy, now) {
		t.Fatal("exact title should be a duplicate")
	}
	if !IsDuplicate("  jetpack   COMPOSE updates ", entries, policy, now) {
		t.Fatal("case/whitespace variant should be a duplicate")
	}
	if IsDuplicate("Android 15 Deep Dive", entries, policy, now) {
		t.Fatal("absent title should not be a duplicate")
	}
	if IsDuplicate("", entries, policy, now) {
		t.Fatal("empty title should never match")
	}
}

func TestWindowByCount(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entries := []domain.HistoryEntry{
		entry("oldest", 3*time.Hour, now),
		entry("middle", 2*time.Hour, now),
		entry("newest", time.Hour, now),
	}

	policy := WindowPolicy{MaxEntries: 2}
	if IsDuplicate("oldest", entries, policy, now) {
		t.Fatal("entry outside the count window must not match")
	}
	if !IsDuplicate("newest", entries, policy, now) {
		t.Fatal("entry inside the count window must match")
	}
}

func TestWindowByAge(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entries := []domain.HistoryEntry{
		entry("stale", 90*24*time.Hour, now),
		entry("fresh", 24*time.Hour, now),
	}

	policy := WindowPolicy{MaxAge: 30 * 24 * time.Hour}
	if IsDuplicate("stale", entries, policy, now) {
		t.Fatal("entry older than MaxAge must not match")
	}
	if !IsDuplicate("fresh", entries, policy, now) {
		t.Fatal("recent entry must match")
	}

	got := Window(entries, policy, now)
	if len(got) != 1 || got[0].TopicTitle != "fresh" {
		t.Fatalf("unexpected window: %+v", got)
	}
}

func TestWindowUnbounded(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entries := []domain.HistoryEntry{entry("ancient", 1000*24*time.Hour, now)}

	if !IsDuplicate("ancient", entries, WindowPolicy{}, now) {
		t.Fatal("zero policy disables both bounds")
	}
}
