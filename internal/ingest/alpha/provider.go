package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/coachdesk/internal/ingest"
	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
)

// WorkoutWriter stores imported workouts, skipping ones already present.
type WorkoutWriter interface {
	InsertWorkouts(ctx context.Context, rows []models.WorkoutRow) (int64, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	db  WorkoutWriter
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression import provider.
func NewProvider(db WorkoutWriter, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a CSV export and stores one workout per session for the
// customer. Sessions imported before are skipped.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, customerID uuid.UUID) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	if len(sessions) == 0 {
		result.Message = "no sessions found"
		return result, nil
	}

	rows := make([]models.WorkoutRow, 0, len(sessions))
	for _, s := range sessions {
		result.ExercisesReceived += len(s.Exercises)
		rows = append(rows, s.Workout(customerID))
	}

	inserted, err := p.db.InsertWorkouts(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("inserting workouts: %w", err)
	}
	result.WorkoutsInserted = inserted
	result.WorkoutsSkipped = int64(len(rows)) - inserted

	p.log.Info("alpha import complete",
		"customer", customerID,
		"sessions", result.SessionsReceived,
		"inserted", inserted,
		"skipped", result.WorkoutsSkipped,
	)
	return result, nil
}
