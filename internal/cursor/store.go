package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"resultscrawler/internal/domain"
	"resultscrawler/internal/ports"
)

// Store persists the last fully processed entry. The location is either a
// file path or an inline JSON literal (anything starting with "{"); inline
// cursors are read-only, matching the original script's resume-uploads flow.
type Store struct {
	location string
	logger   *slog.Logger
}

var _ ports.CursorStore = (*Store)(nil)

func NewStore(location string, logger *slog.Logger) *Store {
	return &Store{location: location, logger: logger}
}

// Load reads the cursor. A missing file or unparsable cursor is logged and
// reported as no cursor, which forces a full resync rather than a crash.
func (s *Store) Load(ctx context.Context) (*domain.Entry, error) {
	raw, ok := s.read()
	if !ok {
		return nil, nil
	}

	var entry domain.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.warn("cursor unparsable, treating as no cursor", "location", s.location, "err", err)
		return nil, nil
	}

	s.debug("cursor loaded", "date", entry.Date, "title", entry.Title, "url", entry.URL)
	return &entry, nil
}

func (s *Store) read() ([]byte, bool) {
	if s.inline() {
		return []byte(s.location), true
	}

	raw, err := os.ReadFile(s.location)
	if err != nil {
		if !os.IsNotExist(err) {
			s.warn("cursor unreadable, treating as no cursor", "location", s.location, "err", err)
		} else {
			s.debug("no cursor stored", "location", s.location)
		}
		return nil, false
	}
	return raw, true
}

// Save rewrites the cursor, creating the parent directory on first write.
// With an inline literal there is nothing durable to rewrite.
func (s *Store) Save(ctx context.Context, entry domain.Entry) error {
	if s.inline() {
		s.debug("inline cursor configured, not persisting", "title", entry.Title)
		return nil
	}

	if dir := filepath.Dir(s.location); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cursor dir %s: %w", dir, err)
		}
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}
	if err := os.WriteFile(s.location, raw, 0o644); err != nil {
		return fmt.Errorf("write cursor %s: %w", s.location, err)
	}

	s.debug("cursor saved", "title", entry.Title, "location", s.location)
	return nil
}

func (s *Store) inline() bool {
	return strings.HasPrefix(strings.TrimSpace(s.location), "{")
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
