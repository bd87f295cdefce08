package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"resultscrawler/internal/config"
	"resultscrawler/internal/cursor"
	"resultscrawler/internal/infrastructure/docparse"
	"resultscrawler/internal/infrastructure/fetch"
	"resultscrawler/internal/infrastructure/firebase"
	"resultscrawler/internal/infrastructure/listing"
	"resultscrawler/internal/infrastructure/sqlite"
	"resultscrawler/internal/ports"
	"resultscrawler/internal/usecase"
)

// Application wires configuration to the pipeline and owns adapter lifetimes.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	client := resty.New().SetTimeout(60 * time.Second)

	source := listing.NewWalker(client, baseLogger.With("component", "walker"))
	fetcher := fetch.NewFetcher(client, false, baseLogger.With("component", "fetcher"))
	parser := docparse.New(client, cfg.ParserURL)
	cursorStore := cursor.NewStore(cfg.LastJSON, baseLogger.With("component", "cursor"))

	application := &Application{cfg: cfg}

	targets, err := application.buildTargets(client, baseLogger)
	if err != nil {
		return nil, err
	}

	application.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Fetcher:    fetcher,
		Parser:     parser,
		Cursor:     cursorStore,
		Targets:    targets,
		Logger:     baseLogger.With("component", "pipeline"),
		ResultsURL: cfg.ResultsURL,
		ScrapDepth: cfg.ScrapDepth,
		ForceAll:   cfg.ForceAll,
		SkipData:   cfg.SkipData,
		SkipImages: cfg.SkipImages,
	})

	return application, nil
}

func (a *Application) buildTargets(client *resty.Client, baseLogger *slog.Logger) ([]ports.SyncTarget, error) {
	var targets []ports.SyncTarget

	if a.cfg.Store == "firebase" || a.cfg.Store == "both" {
		tree := firebase.NewTreeStore(client, a.cfg.Firebase.URL, a.cfg.Firebase.Token)
		blobs := firebase.NewBlobStore(client, a.cfg.Firebase.Bucket, a.cfg.Firebase.Token)
		targets = append(targets, usecase.NewTarget("firebase", tree, blobs, baseLogger.With("target", "firebase")))
	}

	if a.cfg.Store == "sqlite" || a.cfg.Store == "both" {
		db, err := sqlite.Open(a.cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open mirror store: %w", err)
		}
		a.db = db
		targets = append(targets, usecase.NewTarget("sqlite",
			sqlite.NewTreeStore(db),
			sqlite.NewBlobStore(a.cfg.SQLite.PhotosDir),
			baseLogger.With("target", "sqlite")))
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("unknown store %q (want firebase, sqlite or both)", a.cfg.Store)
	}
	return targets, nil
}

// Run executes one crawl.
func (a *Application) Run(ctx context.Context) error {
	return a.pipeline.Run(ctx)
}

// Close releases adapter resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
