// Package importer sends a folder of Alpha Progression CSV exports to
// CoachDesk, either straight into the database or through the REST API.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/coachdesk/internal/ingest"
	"github.com/claude/coachdesk/internal/ingest/alpha"
	"github.com/google/uuid"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsReceived int
	WorkoutsInserted int64
	WorkoutsSkipped  int64
}

// IngestFunc imports one export for a customer.
type IngestFunc func(ctx context.Context, customerID uuid.UUID, r io.Reader) (*ingest.Result, error)

// Importer walks export files and hands each new one to an IngestFunc.
type Importer struct {
	ingest IngestFunc
	state  *State
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates an Importer. state may be nil to import every file; in dry-run
// mode files are only parsed and ingest may be nil.
func New(fn IngestFunc, state *State, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{ingest: fn, state: state, log: log, dryRun: dryRun}
}

// Import processes path, a CSV file or a directory searched recursively
// for *.csv files, in name order.
func (imp *Importer) Import(ctx context.Context, customerID uuid.UUID, path string) (*Stats, error) {
	files, err := exportFiles(path)
	if err != nil {
		return &imp.stats, err
	}
	if len(files) == 0 {
		imp.log.Warn("no CSV exports found", "path", path)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		if err := imp.importFile(ctx, customerID, f); err != nil {
			return &imp.stats, err
		}
	}
	return &imp.stats, nil
}

// importFile returns an error only for failures that should stop the run;
// a file the server rejects is counted and skipped.
func (imp *Importer) importFile(ctx context.Context, customerID uuid.UUID, path string) error {
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	if imp.state != nil {
		done, err := imp.state.Imported(customerID, hash)
		if err != nil {
			return err
		}
		if done {
			imp.log.Info("skipping already imported export", "file", path)
			imp.stats.FilesSkipped++
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if imp.dryRun {
		sessions, err := alpha.Parse(f)
		if err != nil {
			imp.log.Warn("parse failed", "file", path, "error", err)
			imp.stats.FilesErrored++
			return nil
		}
		imp.stats.FilesProcessed++
		imp.stats.SessionsReceived += len(sessions)
		return nil
	}

	res, err := imp.ingest(ctx, customerID, f)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		imp.log.Warn("import failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	imp.stats.FilesProcessed++
	imp.stats.SessionsReceived += res.SessionsReceived
	imp.stats.WorkoutsInserted += res.WorkoutsInserted
	imp.stats.WorkoutsSkipped += res.WorkoutsSkipped
	imp.log.Info("imported export", "file", filepath.Base(path),
		"sessions", res.SessionsReceived, "inserted", res.WorkoutsInserted, "skipped", res.WorkoutsSkipped)

	if imp.state != nil {
		return imp.state.MarkImported(customerID, hash, filepath.Base(path), res.WorkoutsInserted)
	}
	return nil
}

func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}
