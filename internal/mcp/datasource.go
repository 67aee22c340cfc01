package mcp

import (
	"context"
	"time"

	"github.com/claude/coachdesk/internal/client"
	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and *client.Client (remote via REST API) satisfy this interface.
type DataSource interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*storage.CustomerStats, error)
	QueryWorkouts(ctx context.Context, customerID uuid.UUID, f storage.WorkoutFilter) ([]models.WorkoutRow, error)
	GetTrainingSummary(ctx context.Context, customerID uuid.UUID, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
	QueryWeightEntries(ctx context.Context, customerID uuid.UUID) ([]models.WeightEntry, error)
	QueryMeals(ctx context.Context, customerID uuid.UUID, day time.Time) ([]models.Meal, error)
}

// Compile-time checks: both backends satisfy DataSource.
var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*client.Client)(nil)
)
