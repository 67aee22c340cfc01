package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
)

const customerColumns = `id, name, email, language,
	start_weight_kg, target_weight_kg, goal_start_date, goal_target_date,
	target_calories, target_protein_g, target_carbs_g, target_fat_g, created_at`

// CreateCustomer inserts a customer. A zero ID is replaced with a new one.
func (db *DB) CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	args := append([]any{c.ID, c.Name, c.Email, c.Language}, customerGoalArgs(c)...)
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO customers (id, name, email, language,
		 start_weight_kg, target_weight_kg, goal_start_date, goal_target_date,
		 target_calories, target_protein_g, target_carbs_g, target_fat_g)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+customerColumns,
		args...)
	out, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("inserting customer: %w", err)
	}
	return out, nil
}

// UpdateCustomer replaces a customer's profile, goal and nutrition target.
func (db *DB) UpdateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	args := append([]any{c.ID, c.Name, c.Email, c.Language}, customerGoalArgs(c)...)
	row := db.Pool.QueryRow(ctx,
		`UPDATE customers SET
		 name = $2, email = $3, language = $4,
		 start_weight_kg = $5, target_weight_kg = $6, goal_start_date = $7, goal_target_date = $8,
		 target_calories = $9, target_protein_g = $10, target_carbs_g = $11, target_fat_g = $12
		 WHERE id = $1
		 RETURNING `+customerColumns,
		args...)
	out, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("updating customer %s: %w", c.ID, notFound(err))
	}
	return out, nil
}

// GetCustomer returns one customer.
func (db *DB) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("querying customer %s: %w", id, notFound(err))
	}
	return c, nil
}

// ListCustomers returns all customers ordered by name.
func (db *DB) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY name, created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var result []models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func customerGoalArgs(c models.Customer) []any {
	var (
		startKg, targetKg     *float64
		startDate, targetDate *time.Time
		calories              *int
		protein, carbs, fat   *float64
	)
	if g := c.Goal; g != nil {
		startKg, targetKg = &g.StartWeightKg, &g.TargetWeightKg
		startDate, targetDate = &g.StartDate, &g.TargetDate
	}
	if n := c.NutritionTarget; n != nil {
		calories = &n.Calories
		protein, carbs, fat = &n.ProteinG, &n.CarbsG, &n.FatG
	}
	return []any{startKg, targetKg, startDate, targetDate, calories, protein, carbs, fat}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row scanner) (*models.Customer, error) {
	var (
		c                     models.Customer
		startKg, targetKg     *float64
		startDate, targetDate *time.Time
		calories              *int
		protein, carbs, fat   *float64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Language,
		&startKg, &targetKg, &startDate, &targetDate,
		&calories, &protein, &carbs, &fat, &c.CreatedAt); err != nil {
		return nil, err
	}
	if startKg != nil && targetKg != nil && startDate != nil && targetDate != nil {
		c.Goal = &models.WeightGoal{
			StartWeightKg:  *startKg,
			TargetWeightKg: *targetKg,
			StartDate:      *startDate,
			TargetDate:     *targetDate,
		}
	}
	if calories != nil {
		c.NutritionTarget = &models.NutritionTarget{Calories: *calories}
		if protein != nil {
			c.NutritionTarget.ProteinG = *protein
		}
		if carbs != nil {
			c.NutritionTarget.CarbsG = *carbs
		}
		if fat != nil {
			c.NutritionTarget.FatG = *fat
		}
	}
	return &c, nil
}
