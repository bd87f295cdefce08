package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"resultscrawler/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	path  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Open opens (or creates) the mirror database and ensures its schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return db, nil
}

// TreeStore mirrors the hierarchical store into a single nodes table, one row
// per leaf, JSON-encoded values, slash-delimited paths as primary keys.
type TreeStore struct {
	db *sql.DB
}

var _ ports.TreeStore = (*TreeStore)(nil)

func NewTreeStore(db *sql.DB) *TreeStore {
	return &TreeStore{db: db}
}

// Update merges fields into the subtree at path; slash-delimited field keys
// address deep children, same as the remote store's multi-location update.
func (s *TreeStore) Update(ctx context.Context, path string, fields map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update %s: begin: %w", path, err)
	}
	defer tx.Rollback()

	for key, value := range fields {
		if err := upsert(ctx, tx, join(path, key), value); err != nil {
			return fmt.Errorf("update %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update %s: commit: %w", path, err)
	}
	return nil
}

// Set replaces the whole subtree at path with a single value.
func (s *TreeStore) Set(ctx context.Context, path string, value any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set %s: begin: %w", path, err)
	}
	defer tx.Rollback()

	query, args, err := sq.Delete("nodes").
		Where(sq.Or{sq.Eq{"path": path}, sq.Like{"path": path + "/%"}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("set %s: build delete: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set %s: clear subtree: %w", path, err)
	}

	if err := upsert(ctx, tx, path, value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set %s: commit: %w", path, err)
	}
	return nil
}

// Push inserts value under a freshly generated child key and returns the key.
func (s *TreeStore) Push(ctx context.Context, path string, value any) (string, error) {
	key := strings.ReplaceAll(uuid.NewString(), "-", "")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("push %s: begin: %w", path, err)
	}
	defer tx.Rollback()

	if err := upsert(ctx, tx, join(path, key), value); err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("push %s: commit: %w", path, err)
	}
	return key, nil
}

// Get reads one leaf back into dst; used by the mirror's consumers and tests.
func (s *TreeStore) Get(ctx context.Context, path string, dst any) error {
	query, args, err := sq.Select("value").From("nodes").Where(sq.Eq{"path": path}).ToSql()
	if err != nil {
		return fmt.Errorf("get %s: build query: %w", path, err)
	}

	var raw string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("get %s: decode: %w", path, err)
	}
	return nil
}

// CountUnder reports how many leaves exist below a path prefix.
func (s *TreeStore) CountUnder(ctx context.Context, path string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("nodes").
		Where(sq.Like{"path": path + "/%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("count %s: build query: %w", path, err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", path, err)
	}
	return n, nil
}

func upsert(ctx context.Context, tx *sql.Tx, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	query, args, err := sq.Insert("nodes").
		Columns("path", "value").
		Values(path, string(raw)).
		Suffix("ON CONFLICT(path) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", path, err)
	}
	return nil
}

func join(base, key string) string {
	return strings.Trim(base, "/") + "/" + strings.Trim(key, "/")
}
