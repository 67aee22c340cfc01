package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/claude/coachdesk/internal/chat"
	"github.com/claude/coachdesk/internal/ingest"
	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/claude/coachdesk/internal/translate"
	"github.com/google/uuid"
)

// Compile-time checks: Client backs chat sessions and their translation queue.
var (
	_ chat.MessageSource   = (*Client)(nil)
	_ translate.Translator = (*Client)(nil)
)

// ListCustomers returns every customer.
func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := c.get(ctx, "/api/v1/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCustomer returns one customer or an error wrapping storage.ErrNotFound.
func (c *Client) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var out models.Customer
	if err := c.get(ctx, "/api/v1/customers/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// workout is the API's workout shape. Only the stored strings are read
// back; decoding happens locally.
type workout struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	Name            string    `json:"name"`
	Date            *string   `json:"date"`
	IsTemplate      bool      `json:"is_template"`
	ExerciseStrings []string  `json:"exercise_strings"`
	Notes           string    `json:"notes"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (w workout) row() (models.WorkoutRow, error) {
	row := models.WorkoutRow{
		ID:         w.ID,
		CustomerID: w.CustomerID,
		Name:       w.Name,
		IsTemplate: w.IsTemplate,
		Exercises:  w.ExerciseStrings,
		Notes:      w.Notes,
		Source:     w.Source,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
	if w.Date != nil {
		d, err := time.Parse(dateLayout, *w.Date)
		if err != nil {
			return row, fmt.Errorf("workout %s: %w", w.ID, err)
		}
		row.Date = &d
	}
	return row, nil
}

// QueryWorkouts lists a customer's dated workouts in f's range, or its
// templates when f.Templates is set.
func (c *Client) QueryWorkouts(ctx context.Context, customerID uuid.UUID, f storage.WorkoutFilter) ([]models.WorkoutRow, error) {
	params := rangeParams(f.Start, f.End)
	if f.Templates {
		params.Set("template", "true")
	}
	var ws []workout
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/workouts", params, &ws); err != nil {
		return nil, err
	}
	rows := make([]models.WorkoutRow, 0, len(ws))
	for _, w := range ws {
		row, err := w.row()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// GetCustomerStats returns counts and the most frequent workout names.
func (c *Client) GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*storage.CustomerStats, error) {
	var out storage.CustomerStats
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTrainingSummary returns volume per week or month for [start, end).
func (c *Client) GetTrainingSummary(ctx context.Context, customerID uuid.UUID, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	params := rangeParams(&start, &end)
	params.Set("bucket", bucket)
	var out []storage.TrainingSummaryPeriod
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/training", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryWeightEntries returns a customer's weigh-ins.
func (c *Client) QueryWeightEntries(ctx context.Context, customerID uuid.UUID) ([]models.WeightEntry, error) {
	var out []models.WeightEntry
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/weight", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryMeals returns the meals logged on day.
func (c *Client) QueryMeals(ctx context.Context, customerID uuid.UUID, day time.Time) ([]models.Meal, error) {
	params := url.Values{"date": {day.UTC().Format(dateLayout)}}
	var out []models.Meal
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/meals", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QueryImportLogs returns the latest imports for a customer.
func (c *Client) QueryImportLogs(ctx context.Context, customerID uuid.UUID, limit int) ([]storage.ImportLog, error) {
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	var out []storage.ImportLog
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/imports", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type post struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// ListMessages returns a conversation newest first, replies attached.
func (c *Client) ListMessages(ctx context.Context, customerID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	if err := c.get(ctx, "/api/v1/customers/"+customerID.String()+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts a top-level message.
func (c *Client) SendMessage(ctx context.Context, customerID uuid.UUID, sender, body string) (*models.Message, error) {
	var out models.Message
	if err := c.post(ctx, "/api/v1/customers/"+customerID.String()+"/messages", post{sender, body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendReply answers a message.
func (c *Client) SendReply(ctx context.Context, messageID uuid.UUID, sender, body string) (*models.Reply, error) {
	var out models.Reply
	if err := c.post(ctx, "/api/v1/messages/"+messageID.String()+"/replies", post{sender, body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Translate asks the server to translate text into targetLang.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	req := struct {
		Text       string `json:"text"`
		TargetLang string `json:"targetLang"`
	}{text, targetLang}
	var resp struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := c.post(ctx, "/api/v1/translate", req, &resp); err != nil {
		return "", err
	}
	return resp.TranslatedText, nil
}

// ImportAlpha uploads an Alpha Progression CSV export. The server skips
// sessions it already has, so the upload is retried like a read.
func (c *Client) ImportAlpha(ctx context.Context, customerID uuid.UUID, csv io.Reader) (*ingest.Result, error) {
	data, err := io.ReadAll(csv)
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	path := "/api/v1/customers/" + customerID.String() + "/import/alpha"
	var out ingest.Result
	err = c.retry(ctx, func() error {
		return c.do(ctx, http.MethodPost, path, "text/csv", data, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
