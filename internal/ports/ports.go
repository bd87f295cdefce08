package ports

import (
	"context"

	"resultscrawler/internal/domain"
)

// ListingSource walks the paginated results listing and returns entries
// newest-first, pages concatenated in fetch order.
type ListingSource interface {
	Walk(ctx context.Context, pageURL string, depth int) ([]domain.Entry, error)
}

// PayloadFetcher downloads the binary payload referenced by an entry.
// In lenient mode a rejected payload comes back as (nil, nil).
type PayloadFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DocumentParser turns a downloaded payload into structured records. The
// parser is an external collaborator; an error means "no records produced".
type DocumentParser interface {
	Parse(ctx context.Context, payload []byte) (domain.SubjectMap, []domain.PersonRecord, error)
}

// CursorStore persists the last fully processed entry between runs.
// Load returns (nil, nil) when no usable cursor exists.
type CursorStore interface {
	Load(ctx context.Context) (*domain.Entry, error)
	Save(ctx context.Context, entry domain.Entry) error
}

// TreeStore is a hierarchical key-value store with slash-delimited paths.
type TreeStore interface {
	// Update merges fields into the subtree at path; map keys may themselves
	// be slash-delimited relative paths (multi-location update).
	Update(ctx context.Context, path string, fields map[string]any) error
	// Set replaces the value at path wholesale.
	Set(ctx context.Context, path string, value any) error
	// Push appends value under path with a freshly generated child key.
	Push(ctx context.Context, path string, value any) (string, error)
}

// BlobStore uploads binary assets.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
}

// SyncTarget is one destination for a processed payload. Implementations keep
// run-scoped state (the sticky upload-disabled flag) across entries.
type SyncTarget interface {
	Name() string
	SyncRecords(ctx context.Context, records []domain.PersonRecord, provenance domain.Entry) error
	SyncSubjects(ctx context.Context, subjects domain.SubjectMap) error
	UploadAssets(ctx context.Context, records []domain.PersonRecord) error
}
