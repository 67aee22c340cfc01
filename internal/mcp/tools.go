package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/exercise"
	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/progress"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the given number of days
// back from now.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// customerID reads the required customer_id argument.
func customerID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	s, err := req.RequireString("customer_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("customer_id parameter is required")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("customer_id must be a UUID (see list_customers)")
	}
	return id, nil
}

// queryFailed logs err and turns it into a tool error.
func (h *handlers) queryFailed(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, storage.ErrNotFound) {
		return mcp.NewToolResultError("customer not found")
	}
	h.log.Error("mcp "+tool, "error", err)
	return mcp.NewToolResultError("query failed: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Tool definitions ---

var toolListCustomers = mcp.NewTool("list_customers",
	mcp.WithDescription("List all customers with their IDs, preferred language, weight goal and nutrition target. Use the IDs with the other tools."),
)

var toolGetCustomerStats = mcp.NewTool("get_customer_stats",
	mcp.WithDescription("Counts of workouts, templates, messages, weigh-ins and meals for a customer, the date range of their workouts and their most frequent workout names."),
	mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer ID")),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("A customer's workouts with every exercise decoded into name, sets, reps, weight or cardio duration, distance and intensity, plus notes and computed volume."),
	mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer ID")),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 14 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("name", mcp.Description("Filter by workout name (partial match, e.g. 'push')")),
	mcp.WithBoolean("templates", mcp.Description("Return the customer's workout templates instead of dated workouts. Dates are ignored.")),
)

var toolDecodeExercise = mcp.NewTool("decode_exercise",
	mcp.WithDescription("Decode one exercise string into its fields, show its canonical form and the volume it describes."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Exercise string, e.g. 'Squat 5x5 @ 100kg - belt'")),
)

var toolGetWeightProgress = mcp.NewTool("get_weight_progress",
	mcp.WithDescription("Progress toward the customer's weight goal: current weight, percent complete, required and actual weekly rate, on-track flag and projected date."),
	mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer ID")),
)

var toolGetNutritionSummary = mcp.NewTool("get_nutrition_summary",
	mcp.WithDescription("Meals logged on a day and their calorie and macro totals compared with the customer's daily target."),
	mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer ID")),
	mcp.WithString("date", mcp.Description("Day (YYYY-MM-DD). Defaults to today.")),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	mcp.WithDescription("Weekly or monthly training load for a customer: workouts, exercises, sets, reps, tonnage and cardio minutes and distance per period."),
	mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer ID")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 month'."), mcp.Enum("1 week", "1 month")),
)

// --- Tool handlers ---

func (h *handlers) listCustomers(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	customers, err := h.ds.ListCustomers(ctx)
	if err != nil {
		return h.queryFailed("list_customers", err), nil
	}
	return jsonResult(customers)
}

func (h *handlers) getCustomerStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := customerID(req)
	if errResult != nil {
		return errResult, nil
	}
	stats, err := h.ds.GetCustomerStats(ctx, id)
	if err != nil {
		return h.queryFailed("get_customer_stats", err), nil
	}
	return jsonResult(stats)
}

// decodedExercise is one exercise string as the tools present it.
type decodedExercise struct {
	Text      string          `json:"text"`
	Exercise  exercise.Record `json:"exercise"`
	Canonical string          `json:"canonical"`
	Volume    exercise.Volume `json:"volume"`
}

func decode(text string) decodedExercise {
	r := exercise.Decode(text)
	return decodedExercise{Text: text, Exercise: r, Canonical: exercise.Encode(r), Volume: r.Volume()}
}

type decodedWorkout struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Date       string            `json:"date,omitempty"`
	IsTemplate bool              `json:"is_template"`
	Source     string            `json:"source"`
	Notes      string            `json:"notes,omitempty"`
	Exercises  []decodedExercise `json:"exercises"`
	Volume     exercise.Volume   `json:"volume"`
}

func decodeWorkout(w models.WorkoutRow) decodedWorkout {
	out := decodedWorkout{
		ID:         w.ID,
		Name:       w.Name,
		IsTemplate: w.IsTemplate,
		Source:     w.Source,
		Notes:      w.Notes,
		Exercises:  []decodedExercise{},
	}
	if w.Date != nil {
		out.Date = w.Date.Format("2006-01-02")
	}
	for _, s := range w.Exercises {
		if strings.TrimSpace(s) == "" {
			continue
		}
		d := decode(s)
		out.Volume.Add(d.Volume)
		out.Exercises = append(out.Exercises, d)
	}
	return out
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := customerID(req)
	if errResult != nil {
		return errResult, nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 14)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	filter := storage.WorkoutFilter{Templates: req.GetBool("templates", false)}
	if !filter.Templates {
		filter.Start, filter.End = &start, &end
	}
	rows, err := h.ds.QueryWorkouts(ctx, id, filter)
	if err != nil {
		return h.queryFailed("get_workouts", err), nil
	}

	name := strings.ToLower(req.GetString("name", ""))
	workouts := make([]decodedWorkout, 0, len(rows))
	for _, w := range rows {
		if name != "" && !strings.Contains(strings.ToLower(w.Name), name) {
			continue
		}
		workouts = append(workouts, decodeWorkout(w))
	}
	return jsonResult(workouts)
}

func (h *handlers) decodeExercise(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil || strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text parameter is required"), nil
	}
	return jsonResult(decode(text))
}

func (h *handlers) getWeightProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := customerID(req)
	if errResult != nil {
		return errResult, nil
	}
	c, err := h.ds.GetCustomer(ctx, id)
	if err != nil {
		return h.queryFailed("get_weight_progress", err), nil
	}
	if c.Goal == nil {
		return mcp.NewToolResultError(c.Name + " has no weight goal"), nil
	}
	entries, err := h.ds.QueryWeightEntries(ctx, id)
	if err != nil {
		return h.queryFailed("get_weight_progress", err), nil
	}
	return jsonResult(progress.Evaluate(*c.Goal, entries, time.Now()))
}

func (h *handlers) getNutritionSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := customerID(req)
	if errResult != nil {
		return errResult, nil
	}
	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if s := req.GetString("date", ""); s != "" {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
		}
		day = d
	}

	c, err := h.ds.GetCustomer(ctx, id)
	if err != nil {
		return h.queryFailed("get_nutrition_summary", err), nil
	}
	meals, err := h.ds.QueryMeals(ctx, id, day)
	if err != nil {
		return h.queryFailed("get_nutrition_summary", err), nil
	}
	if meals == nil {
		meals = []models.Meal{}
	}
	return jsonResult(map[string]any{
		"date":   day.Format("2006-01-02"),
		"target": c.NutritionTarget,
		"meals":  meals,
		"totals": progress.Nutrition(c.NutritionTarget, meals),
	})
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := customerID(req)
	if errResult != nil {
		return errResult, nil
	}
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 182)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	bucket := req.GetString("bucket", "1 month")

	periods, err := h.ds.GetTrainingSummary(ctx, id, start, end, bucket)
	if err != nil {
		return h.queryFailed("get_training_summary", err), nil
	}
	return jsonResult(periods)
}
