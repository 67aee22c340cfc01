package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/claude/coachdesk/internal/client"
	"github.com/claude/coachdesk/internal/config"
	"github.com/claude/coachdesk/internal/importer"
	"github.com/claude/coachdesk/internal/ingest"
	"github.com/claude/coachdesk/internal/ingest/alpha"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/google/uuid"
)

func main() {
	configPath := flag.String("config", "", "path to config file (import straight into the database)")
	serverURL := flag.String("server", "", "CoachDesk server URL (import through the REST API)")
	apiKey := flag.String("key", os.Getenv("COACHDESK_API_KEY"), "API key (default $COACHDESK_API_KEY)")
	customer := flag.String("customer", "", "customer ID the exports belong to (required)")
	path := flag.String("path", "", "Alpha Progression CSV export or folder of exports (required)")
	stateDir := flag.String("state", "", "state directory for skipping imported files (default ~/.coachdesk-import)")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without importing")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *customer == "" || *path == "" || (!*dryRun && (*configPath == "") == (*serverURL == "")) {
		fmt.Fprintf(os.Stderr, "Usage: coachdesk-import -customer <ID> -path <exports> (-config config.yaml | -server <URL>) [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	customerID, err := uuid.Parse(*customer)
	if err != nil {
		log.Error("invalid customer ID", "customer", *customer)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ingestFn importer.IngestFunc
	switch {
	case *dryRun:
		log.Info("DRY RUN mode: files are parsed, nothing is imported")
	case *serverURL != "":
		ingestFn = client.New(*serverURL, *apiKey).ImportAlpha
		log.Info("importing through server", "server", *serverURL)
	default:
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		log.Info("database connected")

		provider := alpha.NewProvider(db, log)
		ingestFn = func(ctx context.Context, customerID uuid.UUID, r io.Reader) (*ingest.Result, error) {
			return provider.Ingest(ctx, r, customerID)
		}
	}

	// Dry runs ignore the state so they always report every file.
	var state *importer.State
	if !*dryRun {
		dir := *stateDir
		if dir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				log.Error("failed to get home directory", "error", err)
				os.Exit(1)
			}
			dir = filepath.Join(homeDir, ".coachdesk-import")
		}
		state, err = importer.OpenState(dir)
		if err != nil {
			log.Error("failed to open state database", "error", err)
			os.Exit(1)
		}
		defer state.Close()
	}

	stats, err := importer.New(ingestFn, state, log, *dryRun).Import(ctx, customerID, *path)
	printStats(log, stats)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_received", stats.SessionsReceived,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_skipped", stats.WorkoutsSkipped,
	)
}
