package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"resultscrawler/internal/domain"
	"resultscrawler/internal/ports"
)

type fakeSource struct {
	entries []domain.Entry
	err     error
}

func (f *fakeSource) Walk(ctx context.Context, pageURL string, depth int) ([]domain.Entry, error) {
	return f.entries, f.err
}

type fakeFetcher struct {
	fetched []string
	failFor map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.fetched = append(f.fetched, url)
	if f.failFor[url] {
		return nil, nil
	}
	return []byte("payload:" + url), nil
}

type fakeParser struct {
	records []domain.PersonRecord
	err     error
}

func (f *fakeParser) Parse(ctx context.Context, payload []byte) (domain.SubjectMap, []domain.PersonRecord, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return domain.SubjectMap{"101": "Mathematics I"}, f.records, nil
}

type memCursor struct {
	entry *domain.Entry
	saved []domain.Entry
}

func (m *memCursor) Load(ctx context.Context) (*domain.Entry, error) { return m.entry, nil }

func (m *memCursor) Save(ctx context.Context, e domain.Entry) error {
	copied := e
	m.entry = &copied
	m.saved = append(m.saved, e)
	return nil
}

func newPipeline(src *fakeSource, fetcher *fakeFetcher, parser *fakeParser, cur *memCursor, target *Target) *Pipeline {
	return NewPipeline(PipelineDeps{
		Source:     src,
		Fetcher:    fetcher,
		Parser:     parser,
		Cursor:     cur,
		Targets:    []ports.SyncTarget{target},
		ResultsURL: "http://example.org/results.htm",
		ScrapDepth: 2,
	})
}

func TestRunProcessesNewEntriesOldestFirst(t *testing.T) {
	t.Parallel()

	all := entries() // E1 newest, E3 oldest
	cur := &memCursor{entry: &all[2]}
	fetcher := &fakeFetcher{}
	tree := newFakeTree()
	target := NewTarget("test", tree, nil, nil)

	p := newPipeline(&fakeSource{entries: all}, fetcher, &fakeParser{records: []domain.PersonRecord{record("1001")}}, cur, target)
	require.NoError(t, p.Run(context.Background()))

	// Cursor E3 selects [E1, E2]; processing order is oldest-first.
	require.Equal(t, []string{all[1].URL, all[0].URL}, fetcher.fetched)
	require.Equal(t, []domain.Entry{all[1], all[0]}, cur.saved)
	require.Equal(t, all[0], *cur.entry)
}

func TestRunEmptyDiffPerformsZeroFetches(t *testing.T) {
	t.Parallel()

	all := entries()
	cur := &memCursor{entry: &all[0]}
	fetcher := &fakeFetcher{}

	p := newPipeline(&fakeSource{entries: all}, fetcher, &fakeParser{}, cur, NewTarget("test", newFakeTree(), nil, nil))
	require.NoError(t, p.Run(context.Background()))

	require.Empty(t, fetcher.fetched)
	require.Empty(t, cur.saved)
	require.Equal(t, all[0], *cur.entry)
}

func TestRunStopsBatchAtUnavailablePayload(t *testing.T) {
	t.Parallel()

	all := entries()
	cur := &memCursor{}
	fetcher := &fakeFetcher{failFor: map[string]bool{all[1].URL: true}}

	p := newPipeline(&fakeSource{entries: all}, fetcher, &fakeParser{records: []domain.PersonRecord{record("1001")}}, cur, NewTarget("test", newFakeTree(), nil, nil))
	require.NoError(t, p.Run(context.Background()))

	// E2's payload was rejected: E3 completed, the cursor stays at E3, and E2
	// plus everything newer is retried on the next run.
	require.Equal(t, []domain.Entry{all[2]}, cur.saved)
	require.Equal(t, all[2], *cur.entry)
	require.Equal(t, []string{all[2].URL, all[1].URL}, fetcher.fetched)
}

func TestRunParseFailureSkipsWithoutAdvancing(t *testing.T) {
	t.Parallel()

	all := entries()[:1]
	cur := &memCursor{}

	p := newPipeline(&fakeSource{entries: all}, &fakeFetcher{}, &fakeParser{err: errors.New("unreadable pdf")}, cur, NewTarget("test", newFakeTree(), nil, nil))
	require.NoError(t, p.Run(context.Background()))
	require.Empty(t, cur.saved)
}

func TestRunAbortsBatchOnSyncFailure(t *testing.T) {
	t.Parallel()

	all := entries()
	cur := &memCursor{}
	tree := newFakeTree()
	tree.failAll = true

	p := newPipeline(&fakeSource{entries: all}, &fakeFetcher{}, &fakeParser{records: []domain.PersonRecord{record("1001")}}, cur, NewTarget("test", tree, nil, nil))
	require.Error(t, p.Run(context.Background()))
	require.Empty(t, cur.saved, "cursor must not advance past a failed sync")
}

func TestRunUploadFailureDoesNotStopStoreWrites(t *testing.T) {
	t.Parallel()

	all := entries()
	cur := &memCursor{}
	tree := newFakeTree()
	blobs := &fakeBlobs{failAfter: 0}
	target := NewTarget("test", tree, blobs, nil)

	p := newPipeline(&fakeSource{entries: all}, &fakeFetcher{}, &fakeParser{records: []domain.PersonRecord{record("1001")}}, cur, target)
	require.NoError(t, p.Run(context.Background()))

	// All three entries fully processed despite the dead blob store.
	require.Len(t, cur.saved, 3)
	require.Empty(t, blobs.uploaded)
	require.Len(t, tree.keysUnder("students/164/2018/1001/results/"), 3)
}

func TestRunForceAllReprocessesEverything(t *testing.T) {
	t.Parallel()

	all := entries()
	cur := &memCursor{entry: &all[0]}
	fetcher := &fakeFetcher{}

	p := NewPipeline(PipelineDeps{
		Source:     &fakeSource{entries: all},
		Fetcher:    fetcher,
		Parser:     &fakeParser{records: []domain.PersonRecord{record("1001")}},
		Cursor:     cur,
		Targets:    []ports.SyncTarget{NewTarget("test", newFakeTree(), nil, nil)},
		ResultsURL: "http://example.org/results.htm",
		ForceAll:   true,
	})
	require.NoError(t, p.Run(context.Background()))
	require.Len(t, fetcher.fetched, 3)
}
