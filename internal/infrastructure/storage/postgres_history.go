package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/ports"
)

// PostgresHistory persists the posting log in Postgres, for deployments
// where the binary runs on throwaway CI machines and a flat file would
// not survive between runs.
type PostgresHistory struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HistoryStore = (*PostgresHistory)(nil)

// NewPostgresHistory wires a sql.DB implementation.
func NewPostgresHistory(db *sql.DB) *PostgresHistory {
	return &PostgresHistory{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// OpenPostgresHistory dials the DSN and verifies the connection.
func OpenPostgresHistory(ctx context.Context, dsn string) (*PostgresHistory, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", domain.ErrHistoryUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", domain.ErrHistoryUnavailable, err)
	}
	return NewPostgresHistory(db), nil
}

// Load returns all recorded entries in chronological order.
func (r *PostgresHistory) Load(ctx context.Context) ([]domain.HistoryEntry, error) {
	query, args, err := r.builder.
		Select("id", "posted_at", "topic_title", "post_text", "post_id", "posted").
		From("posting_history").
		OrderBy("posted_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query history: %v", domain.ErrHistoryUnavailable, err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var postID sql.NullString
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.TopicTitle, &e.PostText, &postID, &e.Posted); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", domain.ErrHistoryUnavailable, err)
		}
		e.PostID = postID.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows iteration: %v", domain.ErrHistoryUnavailable, err)
	}

	return entries, nil
}

// Append inserts one entry.
func (r *PostgresHistory) Append(ctx context.Context, entry domain.HistoryEntry) error {
	query, args, err := r.builder.
		Insert("posting_history").
		Columns("id", "posted_at", "topic_title", "post_text", "post_id", "posted").
		Values(entry.ID, entry.Timestamp, entry.TopicTitle, entry.PostText, entry.PostID, entry.Posted).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool.
func (r *PostgresHistory) Close() error {
	return r.db.Close()
}
