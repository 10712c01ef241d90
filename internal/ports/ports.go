package ports

import (
	"context"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/persona"
)

// TopicSource gathers fresh topic candidates from upstream search engines.
// Per-query failures are absorbed by implementations; the returned pool
// may therefore be smaller than the configured query fan-out implies.
type TopicSource interface {
	FetchTrending(ctx context.Context) ([]domain.Topic, error)
}

// HistoryStore persists the append-only posting log across runs.
type HistoryStore interface {
	Load(ctx context.Context) ([]domain.HistoryEntry, error)
	Append(ctx context.Context, entry domain.HistoryEntry) error
}

// ContentGenerator selects one topic from the candidate pool and drafts
// the post. Implementations must never return a topic that is not a
// member of candidates.
type ContentGenerator interface {
	SelectAndDraft(ctx context.Context, candidates []domain.Topic, p persona.Persona) (domain.GeneratedPost, error)
}

// Publisher submits the final post to the social network and returns the
// upstream post identifier.
type Publisher interface {
	Publish(ctx context.Context, post domain.GeneratedPost) (string, error)
}

// CredentialProvider hands out the bearer credential and actor URN for
// the posting endpoint. Acquisition and refresh happen out-of-band.
type CredentialProvider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Credentials carries everything the publisher needs to authenticate.
type Credentials struct {
	AccessToken string
	AuthorURN   string
}
