package history

import (
	"strings"
	"time"

	"AutoPoster/internal/domain"
)

// WindowPolicy bounds how far back deduplication looks. An entry is part
// of the window when it is among the MaxEntries most recent entries AND
// not older than MaxAge. A zero field disables that bound.
type WindowPolicy struct {
	MaxEntries int
	MaxAge     time.Duration
}

// DefaultWindow keeps roughly a year of weekly posts in scope.
func DefaultWindow() WindowPolicy {
	return WindowPolicy{MaxEntries: 50, MaxAge: 365 * 24 * time.Hour}
}

// NormalizeTitle lower-cases a topic title and collapses all runs of
// whitespace to single spaces, so cosmetic variants compare equal.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Window returns the subset of entries the policy considers, assuming the
// slice is in chronological order.
func Window(entries []domain.HistoryEntry, policy WindowPolicy, now time.Time) []domain.HistoryEntry {
	windowed := entries
	if policy.MaxEntries > 0 && len(windowed) > policy.MaxEntries {
		windowed = windowed[len(windowed)-policy.MaxEntries:]
	}
	if policy.MaxAge <= 0 {
		return windowed
	}
	cutoff := now.Add(-policy.MaxAge)
	for i, e := range windowed {
		if !e.Timestamp.Before(cutoff) {
			return windowed[i:]
		}
	}
	return nil
}

// IsDuplicate reports whether title matches any entry inside the lookback
// window under the normalization rule. Matching is exact after
// normalization; no fuzzy or semantic similarity is attempted.
func IsDuplicate(title string, entries []domain.HistoryEntry, policy WindowPolicy, now time.Time) bool {
	want := NormalizeTitle(title)
	if want == "" {
		return false
	}
	for _, e := range Window(entries, policy, now) {
		if NormalizeTitle(e.TopicTitle) == want {
			return true
		}
	}
	return false
}
