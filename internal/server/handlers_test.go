package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/google/uuid"
)

const testKey = "test-key"

// memStore is an in-memory Store.
type memStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]models.Customer
	workouts  map[uuid.UUID]models.WorkoutRow
	messages  []models.Message
	weights   []models.WeightEntry
	meals     []models.Meal
	imports   []storage.ImportLog
}

func newMemStore() *memStore {
	return &memStore{
		customers: map[uuid.UUID]models.Customer{},
		workouts:  map[uuid.UUID]models.WorkoutRow{},
	}
}

func (m *memStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Customer
	for _, c := range m.customers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b models.Customer) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *memStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	m.customers[c.ID] = c
	return &c, nil
}

func (m *memStore) UpdateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	m.customers[c.ID] = c
	return &c, nil
}

func (m *memStore) QueryWorkouts(ctx context.Context, customerID uuid.UUID, f storage.WorkoutFilter) ([]models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WorkoutRow
	for _, w := range m.workouts {
		if w.CustomerID != customerID || w.IsTemplate != f.Templates {
			continue
		}
		if !f.Templates && ((f.Start != nil && w.Date.Before(*f.Start)) || (f.End != nil && !w.Date.Before(*f.End))) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (m *memStore) GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (m *memStore) CreateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w.ID = uuid.New()
	if w.Source == "" {
		w.Source = storage.SourceManual
	}
	m.workouts[w.ID] = w
	return &w, nil
}

func (m *memStore) UpdateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.workouts[w.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	w.CustomerID, w.Source = old.CustomerID, old.Source
	m.workouts[w.ID] = w
	return &w, nil
}

func (m *memStore) DeleteWorkout(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workouts[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.workouts, id)
	return nil
}

func (m *memStore) DeleteWorkoutExercise(ctx context.Context, id uuid.UUID, index int) (*models.WorkoutRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workouts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	ex, err := storage.RemoveExercise(w.Exercises, index)
	if err != nil {
		return nil, err
	}
	w.Exercises = ex
	m.workouts[id] = w
	return &w, nil
}

func (m *memStore) InsertWorkouts(ctx context.Context, rows []models.WorkoutRow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range rows {
		m.workouts[w.ID] = w
	}
	return int64(len(rows)), nil
}

func (m *memStore) ListMessages(ctx context.Context, customerID uuid.UUID) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.messages {
		if msg.CustomerID == customerID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) CreateMessage(ctx context.Context, customerID uuid.UUID, sender, body string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg := models.Message{ID: uuid.New(), CustomerID: customerID, Sender: sender, Body: body, CreatedAt: time.Now(), Replies: []models.Reply{}}
	m.messages = append(m.messages, msg)
	return &msg, nil
}

func (m *memStore) CreateReply(ctx context.Context, messageID uuid.UUID, sender, body string) (*models.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == messageID {
			r := models.Reply{ID: uuid.New(), MessageID: messageID, Sender: sender, Body: body, CreatedAt: time.Now()}
			m.messages[i].Replies = append(m.messages[i].Replies, r)
			return &r, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memStore) InsertWeightEntry(ctx context.Context, e models.WeightEntry) (*models.WeightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	m.weights = append(m.weights, e)
	return &e, nil
}

func (m *memStore) QueryWeightEntries(ctx context.Context, customerID uuid.UUID) ([]models.WeightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WeightEntry
	for _, e := range m.weights {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) InsertMeal(ctx context.Context, meal models.Meal) (*models.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meal.ID = uuid.New()
	m.meals = append(m.meals, meal)
	return &meal, nil
}

func (m *memStore) QueryMeals(ctx context.Context, customerID uuid.UUID, day time.Time) ([]models.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Meal
	for _, meal := range m.meals {
		if meal.CustomerID == customerID && meal.Date.Equal(day) {
			out = append(out, meal)
		}
	}
	return out, nil
}

func (m *memStore) GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*storage.CustomerStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &storage.CustomerStats{}
	for _, w := range m.workouts {
		if w.CustomerID != customerID {
			continue
		}
		if w.IsTemplate {
			s.Templates++
		} else {
			s.Workouts++
		}
	}
	return s, nil
}

func (m *memStore) GetTrainingSummary(ctx context.Context, customerID uuid.UUID, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error) {
	return nil, nil
}

func (m *memStore) InsertImportLog(ctx context.Context, l storage.ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imports = append(m.imports, l)
	return int64(len(m.imports)), nil
}

func (m *memStore) QueryImportLogs(ctx context.Context, customerID uuid.UUID, limit int) ([]storage.ImportLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.imports), nil
}

// upperTranslator upper-cases text, or fails when err is set.
type upperTranslator struct {
	err error
}

func (u upperTranslator) Translate(ctx context.Context, text, lang string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	return lang + ":" + strings.ToUpper(text), nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	db := newMemStore()
	return New(db, upperTranslator{}, testKey, slog.New(slog.NewTextHandler(io.Discard, nil))), db
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-API-Key", testKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return v
}

func createCustomer(t *testing.T, h http.Handler) models.Customer {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/customers", map[string]any{"name": "Dana", "language": "de"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer status = %d: %s", rec.Code, rec.Body)
	}
	return decode[models.Customer](t, rec)
}

// TestAPIRequiresKey verifies /api/v1 is protected while /healthz is not.
func TestAPIRequiresKey(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

// TestCustomerCRUD covers create, get, update with a goal, and 404s.
func TestCustomerCRUD(t *testing.T) {
	s, _ := newTestServer(t)
	c := createCustomer(t, s)

	rec := do(t, s, http.MethodGet, "/api/v1/customers/"+c.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	update := map[string]any{
		"name": "Dana K",
		"goal": map[string]any{
			"start_weight_kg": 90, "target_weight_kg": 80,
			"start_date": "2026-01-01T00:00:00Z", "target_date": "2026-03-26T00:00:00Z",
		},
	}
	rec = do(t, s, http.MethodPut, "/api/v1/customers/"+c.ID.String(), update)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body)
	}
	got := decode[models.Customer](t, rec)
	if got.Name != "Dana K" || got.Goal == nil || got.Goal.TargetWeightKg != 80 {
		t.Errorf("updated = %+v", got)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing customer status = %d, want 404", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/api/v1/customers/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/customers", map[string]any{"name": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", rec.Code)
	}
}

// TestWorkoutEncodesExercises verifies structured exercises are stored as
// codec strings, blank rows are dropped, and reads decode them again.
func TestWorkoutEncodesExercises(t *testing.T) {
	s, db := newTestServer(t)
	c := createCustomer(t, s)

	body := `{"name":"Push A","date":"2026-03-02","exercises":[
		{"name":"Bench Press","exercise_type":"sets","sets":"3","reps":"8","repType":"reps","weight":"50kg","notes":"slow tempo"},
		{"name":"","exercise_type":"sets"},
		{"name":"Rowing","exercise_type":"cardio","duration_minutes":"20","distance_km":"5","intensity":"Moderate"}
	]}`
	rec := do(t, s, http.MethodPost, "/api/v1/customers/"+c.ID.String()+"/workouts", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	created := decode[workoutJSON](t, rec)

	stored := db.workouts[created.ID].Exercises
	want := []string{"Bench Press 3x8 @ 50kg - slow tempo", "[CARDIO] Rowing | 20min | 5km | Moderate"}
	if !slices.Equal(stored, want) {
		t.Errorf("stored = %q, want %q", stored, want)
	}
	if created.Date == nil || *created.Date != "2026-03-02" {
		t.Errorf("date = %v", created.Date)
	}
	if len(created.Exercises) != 2 || created.Exercises[1].Cardio.DistanceKm != "5" {
		t.Errorf("decoded = %+v", created.Exercises)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/workouts/"+created.ID.String()+"/exercises/0", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete exercise status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[workoutJSON](t, rec); !slices.Equal(got.ExerciseStrings, want[1:]) {
		t.Errorf("after delete = %q", got.ExerciseStrings)
	}

	rec = do(t, s, http.MethodDelete, "/api/v1/workouts/"+created.ID.String()+"/exercises/5", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want 400", rec.Code)
	}
}

// TestWorkoutValidation verifies dates are required except for templates.
func TestWorkoutValidation(t *testing.T) {
	s, _ := newTestServer(t)
	c := createCustomer(t, s)
	path := "/api/v1/customers/" + c.ID.String() + "/workouts"

	rec := do(t, s, http.MethodPost, path, map[string]any{"name": "Legs"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing date status = %d, want 400", rec.Code)
	}
	rec = do(t, s, http.MethodPost, path, map[string]any{"name": "Legs", "is_template": true,
		"exercises": []map[string]any{{"name": "Squat", "exercise_type": "yoga"}}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad exercise_type status = %d, want 400", rec.Code)
	}
	rec = do(t, s, http.MethodPost, path, map[string]any{"name": "Legs", "is_template": true,
		"exercise_strings": []string{"Squat 5x5", " "}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("template status = %d: %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, path+"?template=true", nil)
	templates := decode[[]workoutJSON](t, rec)
	if len(templates) != 1 || templates[0].Date != nil || len(templates[0].ExerciseStrings) != 1 {
		t.Errorf("templates = %+v", templates)
	}
	rec = do(t, s, http.MethodGet, path, nil)
	if got := decode[[]workoutJSON](t, rec); len(got) != 0 {
		t.Errorf("dated workouts = %d, want 0", len(got))
	}
}

// TestMessagesAndReplies covers posting, replying and listing.
func TestMessagesAndReplies(t *testing.T) {
	s, _ := newTestServer(t)
	c := createCustomer(t, s)
	path := "/api/v1/customers/" + c.ID.String() + "/messages"

	rec := do(t, s, http.MethodPost, path, map[string]string{"sender": "trainer", "body": " Hi Dana "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("send status = %d: %s", rec.Code, rec.Body)
	}
	msg := decode[models.Message](t, rec)
	if msg.Body != "Hi Dana" {
		t.Errorf("body = %q", msg.Body)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/messages/"+msg.ID.String()+"/replies", map[string]string{"sender": "customer", "body": "Hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("reply status = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/messages/"+uuid.NewString()+"/replies", map[string]string{"sender": "customer", "body": "Hello"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("reply to missing status = %d, want 404", rec.Code)
	}
	rec = do(t, s, http.MethodPost, path, map[string]string{"sender": "admin", "body": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad sender status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodGet, path, nil)
	msgs := decode[[]models.Message](t, rec)
	if len(msgs) != 1 || len(msgs[0].Replies) != 1 {
		t.Errorf("messages = %+v", msgs)
	}
}

// TestTranslateEndpoint covers the {text, targetLang} contract.
func TestTranslateEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	s.SetLanguages([]string{"de", "es"})

	rec := do(t, s, http.MethodPost, "/api/v1/translate", map[string]string{"text": "good job", "targetLang": "de"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[translateResponse](t, rec); got.TranslatedText != "de:GOOD JOB" {
		t.Errorf("translatedText = %q", got.TranslatedText)
	}

	rec = do(t, s, http.MethodPost, "/api/v1/translate", map[string]string{"text": "good job", "targetLang": "fr"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported lang status = %d, want 400", rec.Code)
	}
	rec = do(t, s, http.MethodPost, "/api/v1/translate", map[string]string{"text": " ", "targetLang": "de"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", rec.Code)
	}
}

// TestTranslateUnavailable verifies 503 without a provider and 502 on provider failure.
func TestTranslateUnavailable(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(newMemStore(), nil, testKey, log)
	rec := do(t, s, http.MethodPost, "/api/v1/translate", map[string]string{"text": "hi there", "targetLang": "de"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}

	s = New(newMemStore(), upperTranslator{err: errors.New("quota exceeded")}, testKey, log)
	rec = do(t, s, http.MethodPost, "/api/v1/translate", map[string]string{"text": "hi there", "targetLang": "de"})
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

// TestProgressAndNutrition verifies weigh-ins feed the progress report and
// meals feed the day totals.
func TestProgressAndNutrition(t *testing.T) {
	s, db := newTestServer(t)
	c := createCustomer(t, s)
	base := "/api/v1/customers/" + c.ID.String()

	rec := do(t, s, http.MethodGet, base+"/progress", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("no goal status = %d, want 404", rec.Code)
	}

	start := time.Now().UTC().AddDate(0, 0, -14).Truncate(24 * time.Hour)
	c.Goal = &models.WeightGoal{StartWeightKg: 90, TargetWeightKg: 80, StartDate: start, TargetDate: start.AddDate(0, 0, 70)}
	c.NutritionTarget = &models.NutritionTarget{Calories: 2000, ProteinG: 150}
	db.customers[c.ID] = c

	for _, w := range []map[string]any{
		{"date": start.Format(dateLayout), "weight_kg": 90},
		{"date": start.AddDate(0, 0, 14).Format(dateLayout), "weight_kg": 88},
	} {
		if rec := do(t, s, http.MethodPost, base+"/weight", w); rec.Code != http.StatusCreated {
			t.Fatalf("add weight status = %d: %s", rec.Code, rec.Body)
		}
	}
	rec = do(t, s, http.MethodPost, base+"/weight", map[string]any{"weight_kg": -1})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative weight status = %d, want 400", rec.Code)
	}

	rec = do(t, s, http.MethodGet, base+"/progress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d: %s", rec.Code, rec.Body)
	}
	report := decode[map[string]any](t, rec)
	if report["percent_complete"] != 20.0 || report["entries"] != 2.0 {
		t.Errorf("report = %v", report)
	}

	meal := map[string]any{"date": "2026-03-02", "name": "Oats", "calories": 500, "protein_g": 30}
	if rec := do(t, s, http.MethodPost, base+"/meals", meal); rec.Code != http.StatusCreated {
		t.Fatalf("add meal status = %d: %s", rec.Code, rec.Body)
	}
	rec = do(t, s, http.MethodGet, base+"/nutrition?date=2026-03-02", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("nutrition status = %d", rec.Code)
	}
	var day struct {
		Totals struct {
			Calories int `json:"calories"`
			Percent  struct {
				Calories float64 `json:"calories"`
				Protein  float64 `json:"protein"`
			} `json:"percent_of_target"`
		} `json:"totals"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&day); err != nil {
		t.Fatal(err)
	}
	if day.Totals.Calories != 500 || day.Totals.Percent.Calories != 25 || day.Totals.Percent.Protein != 20 {
		t.Errorf("totals = %+v", day.Totals)
	}
}

// TestAlphaImport verifies the CSV import creates workouts and logs the import.
func TestAlphaImport(t *testing.T) {
	s, db := newTestServer(t)
	c := createCustomer(t, s)

	csv := `"Push";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;100;6;1
`
	rec := do(t, s, http.MethodPost, "/api/v1/customers/"+c.ID.String()+"/import/alpha", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if len(db.workouts) != 1 || len(db.imports) != 1 || db.imports[0].Status != "success" {
		t.Errorf("workouts = %d, imports = %+v", len(db.workouts), db.imports)
	}
	for _, w := range db.workouts {
		if !slices.Equal(w.Exercises, []string{"Bench Press (Barbell) 1x6 @ 100kg - 1 RIR"}) {
			t.Errorf("exercises = %q", w.Exercises)
		}
	}
}
