package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"resultscrawler/internal/ports"
)

// BlobStore keeps the mirror's binary assets on the local filesystem, one
// file per object path, rooted at dir.
type BlobStore struct {
	dir string
}

var _ ports.BlobStore = (*BlobStore)(nil)

func NewBlobStore(dir string) *BlobStore {
	return &BlobStore{dir: dir}
}

func (b *BlobStore) Upload(ctx context.Context, path, contentType string, data []byte) error {
	full := filepath.Join(b.dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", path, err)
	}
	return nil
}
