package server

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/claude/coachdesk/internal/ingest/alpha"
	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/claude/coachdesk/internal/translate"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Store is the persistence the API needs. *storage.DB satisfies it.
type Store interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, c models.Customer) (*models.Customer, error)

	QueryWorkouts(ctx context.Context, customerID uuid.UUID, f storage.WorkoutFilter) ([]models.WorkoutRow, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (*models.WorkoutRow, error)
	CreateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error)
	UpdateWorkout(ctx context.Context, w models.WorkoutRow) (*models.WorkoutRow, error)
	DeleteWorkout(ctx context.Context, id uuid.UUID) error
	DeleteWorkoutExercise(ctx context.Context, id uuid.UUID, index int) (*models.WorkoutRow, error)
	InsertWorkouts(ctx context.Context, rows []models.WorkoutRow) (int64, error)

	ListMessages(ctx context.Context, customerID uuid.UUID) ([]models.Message, error)
	CreateMessage(ctx context.Context, customerID uuid.UUID, sender, body string) (*models.Message, error)
	CreateReply(ctx context.Context, messageID uuid.UUID, sender, body string) (*models.Reply, error)

	InsertWeightEntry(ctx context.Context, e models.WeightEntry) (*models.WeightEntry, error)
	QueryWeightEntries(ctx context.Context, customerID uuid.UUID) ([]models.WeightEntry, error)
	InsertMeal(ctx context.Context, m models.Meal) (*models.Meal, error)
	QueryMeals(ctx context.Context, customerID uuid.UUID, day time.Time) ([]models.Meal, error)

	GetCustomerStats(ctx context.Context, customerID uuid.UUID) (*storage.CustomerStats, error)
	GetTrainingSummary(ctx context.Context, customerID uuid.UUID, start, end time.Time, bucket string) ([]storage.TrainingSummaryPeriod, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, customerID uuid.UUID, limit int) ([]storage.ImportLog, error)
}

// Compile-time check: *storage.DB satisfies Store.
var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db         Store
	alpha      *alpha.Provider
	translator translate.Translator
	languages  []string
	log        *slog.Logger
	apiKey     string
	router     chi.Router
}

// New creates a new Server with all routes configured. tr may be nil, in
// which case the translate endpoint answers 503.
func New(db Store, tr translate.Translator, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:         db,
		alpha:      alpha.NewProvider(db, log),
		translator: tr,
		log:        log,
		apiKey:     apiKey,
		router:     chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetLanguages restricts the translate endpoint to the given target languages.
func (s *Server) SetLanguages(langs []string) {
	s.languages = slices.Clone(langs)
}

// Mount attaches another handler, such as the MCP endpoint, under pattern.
// It is served behind the same API key as the REST routes.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.With(APIKeyAuth(s.apiKey)).Mount(pattern, h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		r.Get("/customers", s.handleListCustomers)
		r.Post("/customers", s.handleCreateCustomer)
		r.Route("/customers/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetCustomer)
			r.Put("/", s.handleUpdateCustomer)

			r.Get("/workouts", s.handleListWorkouts)
			r.Post("/workouts", s.handleCreateWorkout)
			r.Post("/import/alpha", s.handleAlphaImport)
			r.Get("/imports", s.handleImportLogs)
			r.Get("/stats", s.handleStats)
			r.Get("/training", s.handleTrainingSummary)

			r.Get("/messages", s.handleListMessages)
			r.Post("/messages", s.handleSendMessage)

			r.Get("/weight", s.handleListWeight)
			r.Post("/weight", s.handleAddWeight)
			r.Get("/progress", s.handleProgress)
			r.Get("/meals", s.handleListMeals)
			r.Post("/meals", s.handleAddMeal)
			r.Get("/nutrition", s.handleNutrition)
		})

		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Put("/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)
		r.Delete("/workouts/{id}/exercises/{index}", s.handleDeleteExercise)

		r.Post("/messages/{id}/replies", s.handleSendReply)

		r.Post("/translate", s.handleTranslate)
	})
}
