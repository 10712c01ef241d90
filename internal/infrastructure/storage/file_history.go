package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"AutoPoster/internal/domain"
	"AutoPoster/internal/ports"
)

// FileHistory keeps the posting log in a single JSON file. One process at
// a time is assumed; external scheduling guarantees non-overlapping runs
// instead of file locking.
type FileHistory struct {
	path        string
	keepEntries int
}

var _ ports.HistoryStore = (*FileHistory)(nil)

// NewFileHistory points at the history file. keepEntries bounds file
// growth; zero keeps everything.
func NewFileHistory(path string, keepEntries int) *FileHistory {
	return &FileHistory{path: path, keepEntries: keepEntries}
}

type historyFile struct {
	Entries []domain.HistoryEntry `json:"entries"`
}

// Load returns all recorded entries in chronological order. A missing
// file is an empty history; an unreadable or corrupt one aborts the run.
func (s *FileHistory) Load(_ context.Context) ([]domain.HistoryEntry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrHistoryUnavailable, s.path, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var hf historyFile
	if err := json.Unmarshal(raw, &hf); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrHistoryUnavailable, s.path, err)
	}

	return hf.Entries, nil
}

// Append adds one entry and rewrites the file atomically via temp+rename.
// The log is trimmed to the most recent keepEntries records.
func (s *FileHistory) Append(ctx context.Context, entry domain.HistoryEntry) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if s.keepEntries > 0 && len(entries) > s.keepEntries {
		entries = entries[len(entries)-s.keepEntries:]
	}

	raw, err := json.MarshalIndent(historyFile{Entries: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history: %w", err)
	}

	return nil
}
