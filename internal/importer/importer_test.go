package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/coachdesk/internal/ingest"
	"github.com/google/uuid"
)

const pushCSV = `"Push";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;100;6;1
`

const pullCSV = `"Pull";"2026-02-18 6:10 h";"0:58 hr"
"1. Barbell Row · Barbell · 8 reps"
#;KG;REPS;RIR
1;70;8;2
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingIngest remembers what it was sent and fails for bodies in fail.
type recordingIngest struct {
	bodies []string
	fail   map[string]bool
}

func (r *recordingIngest) ingest(ctx context.Context, customerID uuid.UUID, body io.Reader) (*ingest.Result, error) {
	data, _ := io.ReadAll(body)
	if r.fail[string(data)] {
		return nil, errors.New("rejected")
	}
	r.bodies = append(r.bodies, string(data))
	return &ingest.Result{SessionsReceived: 1, WorkoutsInserted: 1}, nil
}

// TestImportDirectory verifies every CSV below the folder is sent once in
// name order and other files are ignored.
func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", pullCSV)
	writeFile(t, dir, "2026/a.CSV", pushCSV)
	writeFile(t, dir, "notes.txt", "not an export")

	rec := &recordingIngest{}
	stats, err := New(rec.ingest, nil, discardLogger(), false).Import(context.Background(), uuid.New(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.bodies) != 2 || rec.bodies[0] != pushCSV || rec.bodies[1] != pullCSV {
		t.Errorf("sent %d bodies in wrong order", len(rec.bodies))
	}
	if stats.FilesProcessed != 2 || stats.WorkoutsInserted != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestImportSkipsKnownFiles verifies the state database skips content that
// was already imported for the same customer, even under another name.
func TestImportSkipsKnownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "exports/push.csv", pushCSV)

	state, err := OpenState(filepath.Join(dir, "state"))
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	customer := uuid.New()
	rec := &recordingIngest{}
	if _, err := New(rec.ingest, state, discardLogger(), false).Import(context.Background(), customer, filepath.Join(dir, "exports")); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "exports/push-copy.csv", pushCSV)
	stats, err := New(rec.ingest, state, discardLogger(), false).Import(context.Background(), customer, filepath.Join(dir, "exports"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.bodies) != 1 || stats.FilesSkipped != 2 || stats.FilesProcessed != 0 {
		t.Errorf("bodies = %d, stats = %+v", len(rec.bodies), stats)
	}

	// Another customer gets the content once; the second copy is skipped.
	stats, err = New(rec.ingest, state, discardLogger(), false).Import(context.Background(), uuid.New(), filepath.Join(dir, "exports"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.bodies) != 2 || stats.FilesProcessed != 1 || stats.FilesSkipped != 1 {
		t.Errorf("bodies = %d, stats = %+v", len(rec.bodies), stats)
	}
}

// TestImportRejectedFileRetried verifies a rejected file is counted, not
// recorded, and sent again next run.
func TestImportRejectedFileRetried(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "push.csv", pushCSV)
	state, err := OpenState(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	customer := uuid.New()
	rec := &recordingIngest{fail: map[string]bool{pushCSV: true}}
	stats, err := New(rec.ingest, state, discardLogger(), false).Import(context.Background(), customer, path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("stats = %+v", stats)
	}

	rec.fail = nil
	stats, _ = New(rec.ingest, state, discardLogger(), false).Import(context.Background(), customer, path)
	if stats.FilesProcessed != 1 || len(rec.bodies) != 1 {
		t.Errorf("second run stats = %+v", stats)
	}
}

// TestImportDryRun verifies dry runs parse locally and send nothing.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "push.csv", pushCSV+"\n"+pullCSV)

	stats, err := New(nil, nil, discardLogger(), true).Import(context.Background(), uuid.New(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesProcessed != 1 || stats.SessionsReceived != 2 || stats.WorkoutsInserted != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestImportMissingPath verifies a missing path is an error.
func TestImportMissingPath(t *testing.T) {
	_, err := New(nil, nil, discardLogger(), true).Import(context.Background(), uuid.New(), "/nonexistent/exports")
	if err == nil {
		t.Fatal("expected error")
	}
}
