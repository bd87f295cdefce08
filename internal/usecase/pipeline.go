package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"resultscrawler/internal/ports"
)

// PipelineDeps wires all driven adapters into the crawl-diff-sync pipeline.
type PipelineDeps struct {
	Source  ports.ListingSource
	Fetcher ports.PayloadFetcher
	Parser  ports.DocumentParser
	Cursor  ports.CursorStore
	Targets []ports.SyncTarget
	Logger  *slog.Logger

	ResultsURL string
	ScrapDepth int
	ForceAll   bool
	SkipData   bool
	SkipImages bool
}

// Pipeline orchestrates one crawl run: walk the listing, diff against the
// cursor, then process the new entries oldest-first, advancing the cursor
// only after an entry fully completes.
type Pipeline struct {
	deps PipelineDeps
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Run executes one full batch. A fetch or parse failure skips the entry
// without advancing the cursor, so the entry is retried next run. A sync or
// cursor failure aborts the remaining batch; the cursor then reflects the
// last fully processed entry and nothing is rolled back.
func (p *Pipeline) Run(ctx context.Context) error {
	cursor, err := p.deps.Cursor.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}

	all, err := p.deps.Source.Walk(ctx, p.deps.ResultsURL, p.deps.ScrapDepth)
	if err != nil {
		return fmt.Errorf("walk listing: %w", err)
	}

	batch := Diff(all, cursor, p.deps.ForceAll)
	p.info("new result pdfs found", "count", len(batch), "listed", len(all))

	// Oldest first, so an interrupted run never leaves the cursor pointing
	// past an unprocessed gap.
	for i := len(batch) - 1; i >= 0; i-- {
		entry := batch[i]
		p.info("processing entry", "position", len(batch)-i, "total", len(batch), "title", entry.Title, "date", entry.Date)

		// The batch stops at the first fetch or parse failure: advancing the
		// cursor past this entry would lose it, and re-syncing the newer
		// entries ahead of it would duplicate their result writes next run.
		payload, err := p.deps.Fetcher.Fetch(ctx, entry.URL)
		if err != nil || payload == nil {
			p.warn("payload unavailable, stopping batch, entry will be retried next run", "url", entry.URL, "err", err)
			return nil
		}

		subjects, records, err := p.deps.Parser.Parse(ctx, payload)
		if err != nil {
			p.warn("parse failed, stopping batch, entry will be retried next run", "url", entry.URL, "err", err)
			return nil
		}
		p.info("payload parsed", "subjects", len(subjects), "records", len(records), "url", entry.URL)

		for _, target := range p.deps.Targets {
			p.info("dumping into target", "target", target.Name())
			if !p.deps.SkipData {
				if err := target.SyncRecords(ctx, records, entry); err != nil {
					return fmt.Errorf("target %s: %w", target.Name(), err)
				}
				if err := target.SyncSubjects(ctx, subjects); err != nil {
					return fmt.Errorf("target %s: %w", target.Name(), err)
				}
			}
			if !p.deps.SkipImages {
				if err := target.UploadAssets(ctx, records); err != nil {
					return fmt.Errorf("target %s: %w", target.Name(), err)
				}
			}
		}

		if err := p.deps.Cursor.Save(ctx, entry); err != nil {
			return fmt.Errorf("save cursor: %w", err)
		}
	}

	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.deps.Logger != nil {
		p.deps.Logger.Warn(msg, args...)
	}
}
