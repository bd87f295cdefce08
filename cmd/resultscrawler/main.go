package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resultscrawler/internal/app"
	"resultscrawler/internal/config"
	"resultscrawler/internal/logging"
)

const version = "0.1"

func main() {
	// Load .env file if it exists; real env vars still win inside config.Load.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	// Flag defaults come from config.Load (defaults <- yaml <- env), so a flag
	// left unset keeps its environment override.
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:           "resultscrawler",
		Short:         "Incremental crawler syncing published exam results into a hierarchical store",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&cfg.Production, "production", cfg.Production, "disable file logging")
	flags.StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "log file path")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flags.StringVar(&cfg.LastJSON, "last-json", cfg.LastJSON, "cursor file path, or an inline JSON literal")
	flags.StringVar(&cfg.ResultsURL, "results-url", cfg.ResultsURL, "root of the results listing")
	flags.IntVar(&cfg.ScrapDepth, "scrap-depth", cfg.ScrapDepth, "how many older listing pages to follow")
	flags.BoolVar(&cfg.ForceAll, "force-all", cfg.ForceAll, "ignore the cursor and reprocess everything")
	flags.BoolVar(&cfg.SkipImages, "skip-images", cfg.SkipImages, "skip photo uploads")
	flags.BoolVar(&cfg.SkipData, "skip-data", cfg.SkipData, "skip record and subject writes")
	flags.StringVar(&cfg.Store, "store", cfg.Store, "sync target: firebase, sqlite or both")
	flags.StringVar(&cfg.ParserURL, "parser-url", cfg.ParserURL, "document parser service endpoint")
	flags.StringVar(&cfg.Firebase.URL, "firebase-url", cfg.Firebase.URL, "realtime database root URL")
	flags.StringVar(&cfg.Firebase.Bucket, "firebase-bucket", cfg.Firebase.Bucket, "storage bucket name")
	flags.StringVar(&cfg.Firebase.Token, "firebase-token", cfg.Firebase.Token, "database/storage auth token")
	flags.StringVar(&cfg.SQLite.Path, "sqlite-path", cfg.SQLite.Path, "local mirror database path")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logPath := cfg.LogPath
	if cfg.Production {
		logPath = ""
	}
	logger := logging.New(cfg.LogLevel, logPath)

	mode := "local"
	if cfg.Production {
		mode = "server"
	}
	logger.Info("crawler started", "version", version, "mode", mode, "store", cfg.Store)
	defer logger.Info("crawler ended", "version", version)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "err", err)
		return err
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		// One top-level catch: the remaining batch is dropped, the cursor
		// keeps the last fully processed entry, and the exit code is nonzero.
		logger.Error("run aborted", "err", err)
		return err
	}
	return nil
}
