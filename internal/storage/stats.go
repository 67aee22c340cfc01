package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CustomerStats holds aggregate counts for one customer.
type CustomerStats struct {
	Workouts      int64             `json:"workouts"`
	Templates     int64             `json:"templates"`
	Messages      int64             `json:"messages"`
	WeightEntries int64             `json:"weight_entries"`
	Meals         int64             `json:"meals"`
	FirstWorkout  *time.Time        `json:"first_workout"`
	LastWorkout   *time.Time        `json:"last_workout"`
	WorkoutNames  []WorkoutNameStat `json:"workout_names"`
}

// WorkoutNameStat counts dated workouts sharing a name.
type WorkoutNameStat struct {
	Name      string `json:"name"`
	Count     int64  `json:"count"`
	Exercises int64  `json:"exercises"`
}

// GetCustomerStats returns aggregate statistics for a customer's stored data.
func (db *DB) GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*CustomerStats, error) {
	stats := &CustomerStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT
		   COUNT(*) FILTER (WHERE NOT is_template),
		   COUNT(*) FILTER (WHERE is_template),
		   MIN(date), MAX(date)
		 FROM workouts WHERE customer_id = $1`, customerID,
	).Scan(&stats.Workouts, &stats.Templates, &stats.FirstWorkout, &stats.LastWorkout)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT
		   (SELECT COUNT(*) FROM messages WHERE customer_id = $1),
		   (SELECT COUNT(*) FROM weight_entries WHERE customer_id = $1),
		   (SELECT COUNT(*) FROM meals WHERE customer_id = $1)`, customerID,
	).Scan(&stats.Messages, &stats.WeightEntries, &stats.Meals)
	if err != nil {
		return nil, fmt.Errorf("counting tracking data: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT name, COUNT(*), COALESCE(SUM(cardinality(exercises)), 0)
		 FROM workouts
		 WHERE customer_id = $1 AND NOT is_template
		 GROUP BY name
		 ORDER BY COUNT(*) DESC, name`, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by name: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s WorkoutNameStat
		if err := rows.Scan(&s.Name, &s.Count, &s.Exercises); err != nil {
			return nil, fmt.Errorf("scanning workout name stat: %w", err)
		}
		stats.WorkoutNames = append(stats.WorkoutNames, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
