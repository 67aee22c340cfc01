package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/coachdesk/internal/exercise"
	"github.com/google/uuid"
)

// TrainingSummaryPeriod holds the training load of one period's dated workouts.
type TrainingSummaryPeriod struct {
	Period    string          `json:"period"`
	Workouts  int             `json:"workouts"`
	Exercises int             `json:"exercises"`
	Volume    exercise.Volume `json:"volume"`
}

// GetTrainingSummary decodes every exercise of the customer's workouts in
// [start, end) and sums their volume per week or month, newest period first.
func (db *DB) GetTrainingSummary(ctx context.Context, customerID uuid.UUID, start, end time.Time, bucket string) ([]TrainingSummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period, exercises
		 FROM workouts
		 WHERE customer_id = $2 AND NOT is_template AND date >= $3 AND date < $4
		 ORDER BY period DESC`,
		truncInterval(bucket), customerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	var result []TrainingSummaryPeriod
	for rows.Next() {
		var (
			periodTime time.Time
			exercises  []string
		)
		if err := rows.Scan(&periodTime, &exercises); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		key := periodTime.Format("2006-01-02")
		if len(result) == 0 || result[len(result)-1].Period != key {
			result = append(result, TrainingSummaryPeriod{Period: key})
		}
		addWorkout(&result[len(result)-1], exercises)
	}
	return result, rows.Err()
}

func addWorkout(p *TrainingSummaryPeriod, exercises []string) {
	p.Workouts++
	for _, r := range exercise.DecodeAll(exercises) {
		if r.IsPlaceholder() {
			continue
		}
		p.Exercises++
		p.Volume.Add(r.Volume())
	}
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "week", "1 week":
		return "week"
	default:
		return "month"
	}
}
