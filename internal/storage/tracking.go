package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
)

// InsertWeightEntry records a weigh-in.
func (db *DB) InsertWeightEntry(ctx context.Context, e models.WeightEntry) (*models.WeightEntry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO weight_entries (id, customer_id, date, weight_kg, note)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, customer_id, date, weight_kg, note`,
		e.ID, e.CustomerID, e.Date, e.WeightKg, e.Note,
	).Scan(&e.ID, &e.CustomerID, &e.Date, &e.WeightKg, &e.Note)
	if err != nil {
		return nil, fmt.Errorf("inserting weight entry: %w", err)
	}
	return &e, nil
}

// QueryWeightEntries returns a customer's weigh-ins in date order.
func (db *DB) QueryWeightEntries(ctx context.Context, customerID uuid.UUID) ([]models.WeightEntry, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, customer_id, date, weight_kg, note
		 FROM weight_entries
		 WHERE customer_id = $1
		 ORDER BY date ASC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("querying weight entries: %w", err)
	}
	defer rows.Close()

	var result []models.WeightEntry
	for rows.Next() {
		var e models.WeightEntry
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Date, &e.WeightKg, &e.Note); err != nil {
			return nil, fmt.Errorf("scanning weight entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertMeal logs a meal.
func (db *DB) InsertMeal(ctx context.Context, m models.Meal) (*models.Meal, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO meals (id, customer_id, date, name, calories, protein_g, carbs_g, fat_g)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id, customer_id, date, name, calories, protein_g, carbs_g, fat_g`,
		m.ID, m.CustomerID, m.Date, m.Name, m.Calories, m.ProteinG, m.CarbsG, m.FatG,
	).Scan(&m.ID, &m.CustomerID, &m.Date, &m.Name, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG)
	if err != nil {
		return nil, fmt.Errorf("inserting meal: %w", err)
	}
	return &m, nil
}

// QueryMeals returns the meals a customer logged on one day.
func (db *DB) QueryMeals(ctx context.Context, customerID uuid.UUID, day time.Time) ([]models.Meal, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, customer_id, date, name, calories, protein_g, carbs_g, fat_g
		 FROM meals
		 WHERE customer_id = $1 AND date = $2::date
		 ORDER BY name`,
		customerID, day)
	if err != nil {
		return nil, fmt.Errorf("querying meals: %w", err)
	}
	defer rows.Close()

	var result []models.Meal
	for rows.Next() {
		var m models.Meal
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.Date, &m.Name, &m.Calories, &m.ProteinG, &m.CarbsG, &m.FatG); err != nil {
			return nil, fmt.Errorf("scanning meal: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
