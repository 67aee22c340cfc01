package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrExerciseIndex is returned when an exercise index is outside the workout.
var ErrExerciseIndex = errors.New("exercise index out of range")

// SourceManual marks workouts created through the API.
const SourceManual = "manual"

const workoutColumns = `id, customer_id, name, date, is_template, exercises, notes, source, created_at, updated_at`

// WorkoutFilter selects workouts for a customer. Dated workouts are filtered
// by [Start, End); templates ignore the range.
type WorkoutFilter struct {
	Templates bool
	Start     *time.Time
	End       *time.Time
}

// CreateWorkout inserts a workout or template.
func (db *DB) CreateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Source == "" {
		w.Source = SourceManual
	}
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO workouts (id, customer_id, name, date, is_template, exercises, notes, source)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING `+workoutColumns,
		w.ID, w.CustomerID, w.Name, w.Date, w.IsTemplate, nonNil(w.Exercises), w.Notes, w.Source)
	out, err := scanWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("inserting workout: %w", err)
	}
	return out, nil
}

// InsertWorkouts batch-inserts imported workouts. Rows that already exist for
// the same customer, source, name and date are skipped. Returns count inserted.
func (db *DB) InsertWorkouts(ctx context.Context, rows []models.WorkoutRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO workouts (id, customer_id, name, date, is_template, exercises, notes, source) VALUES `
	args := make([]any, 0, len(rows)*8)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, r.ID, r.CustomerID, r.Name, r.Date, r.IsTemplate,
			nonNil(r.Exercises), r.Notes, r.Source)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workouts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkouts lists a customer's workouts, newest first, or templates by name.
func (db *DB) QueryWorkouts(ctx context.Context, customerID uuid.UUID, f WorkoutFilter) ([]models.WorkoutRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if f.Templates {
		rows, err = db.Pool.Query(ctx,
			`SELECT `+workoutColumns+`
			 FROM workouts
			 WHERE customer_id = $1 AND is_template
			 ORDER BY name`,
			customerID)
	} else {
		rows, err = db.Pool.Query(ctx,
			`SELECT `+workoutColumns+`
			 FROM workouts
			 WHERE customer_id = $1 AND NOT is_template
			   AND ($2::date IS NULL OR date >= $2)
			   AND ($3::date IS NULL OR date < $3)
			 ORDER BY date DESC, created_at DESC`,
			customerID, f.Start, f.End)
	}
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutRow
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		result = append(result, *w)
	}
	return result, rows.Err()
}

// GetWorkout retrieves a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRow, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id)
	w, err := scanWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("querying workout %s: %w", id, notFound(err))
	}
	return w, nil
}

// UpdateWorkout replaces a workout's name, date, template flag, exercises and notes.
func (db *DB) UpdateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error) {
	row := db.Pool.QueryRow(ctx,
		`UPDATE workouts SET
		 name = $2, date = $3, is_template = $4, exercises = $5, notes = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+workoutColumns,
		w.ID, w.Name, w.Date, w.IsTemplate, nonNil(w.Exercises), w.Notes)
	out, err := scanWorkout(row)
	if err != nil {
		return nil, fmt.Errorf("updating workout %s: %w", w.ID, notFound(err))
	}
	return out, nil
}

// DeleteWorkout removes a workout.
func (db *DB) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting workout %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting workout %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteWorkoutExercise removes the exercise at index (0-based) and returns
// the updated workout. The read and write happen in one transaction.
func (db *DB) DeleteWorkoutExercise(ctx context.Context, id uuid.UUID, index int) (*models.WorkoutRow, error) {
	var out *models.WorkoutRow
	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		var exercises []string
		err := tx.QueryRow(ctx,
			`SELECT exercises FROM workouts WHERE id = $1 FOR UPDATE`, id).Scan(&exercises)
		if err != nil {
			return notFound(err)
		}
		exercises, err = RemoveExercise(exercises, index)
		if err != nil {
			return err
		}
		out, err = scanWorkout(tx.QueryRow(ctx,
			`UPDATE workouts SET exercises = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+workoutColumns,
			id, exercises))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("deleting exercise %d of workout %s: %w", index, id, err)
	}
	return out, nil
}

// RemoveExercise returns exercises without the entry at index.
func RemoveExercise(exercises []string, index int) ([]string, error) {
	if index < 0 || index >= len(exercises) {
		return nil, ErrExerciseIndex
	}
	out := make([]string, 0, len(exercises)-1)
	out = append(out, exercises[:index]...)
	return append(out, exercises[index+1:]...), nil
}

func scanWorkout(row scanner) (*models.WorkoutRow, error) {
	var w models.WorkoutRow
	if err := row.Scan(&w.ID, &w.CustomerID, &w.Name, &w.Date, &w.IsTemplate,
		&w.Exercises, &w.Notes, &w.Source, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

// nonNil keeps a NOT NULL text[] column from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
