package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/exercise"
	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// workoutJSON is a workout as the editor sees it: exercises decoded into
// records alongside the stored strings.
type workoutJSON struct {
	ID              uuid.UUID         `json:"id"`
	CustomerID      uuid.UUID         `json:"customer_id"`
	Name            string            `json:"name"`
	Date            *string           `json:"date"`
	IsTemplate      bool              `json:"is_template"`
	Exercises       []exercise.Record `json:"exercises"`
	ExerciseStrings []string          `json:"exercise_strings"`
	Notes           string            `json:"notes"`
	Source          string            `json:"source"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// workoutRequest creates or replaces a workout. Exercises are encoded;
// blank editor rows are dropped. ExerciseStrings is used as-is when
// Exercises is absent.
type workoutRequest struct {
	Name            string            `json:"name"`
	Date            string            `json:"date"`
	IsTemplate      bool              `json:"is_template"`
	Exercises       []exercise.Record `json:"exercises"`
	ExerciseStrings []string          `json:"exercise_strings"`
	Notes           string            `json:"notes"`
}

func toWorkoutJSON(w models.WorkoutRow) workoutJSON {
	out := workoutJSON{
		ID:              w.ID,
		CustomerID:      w.CustomerID,
		Name:            w.Name,
		IsTemplate:      w.IsTemplate,
		Exercises:       exercise.DecodeAll(w.Exercises),
		ExerciseStrings: w.Exercises,
		Notes:           w.Notes,
		Source:          w.Source,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
	if out.ExerciseStrings == nil {
		out.ExerciseStrings = []string{}
	}
	if w.Date != nil {
		d := w.Date.Format(dateLayout)
		out.Date = &d
	}
	return out
}

// row validates the request and builds the stored form.
func (req workoutRequest) row() (models.WorkoutRow, error) {
	w := models.WorkoutRow{
		Name:       strings.TrimSpace(req.Name),
		IsTemplate: req.IsTemplate,
		Notes:      strings.TrimSpace(req.Notes),
	}
	if w.Name == "" {
		return w, errors.New("name is required")
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return w, err
		}
		w.Date = &d
	} else if !req.IsTemplate {
		return w, errors.New("date is required unless is_template is set")
	}

	if req.Exercises != nil {
		for i, rec := range req.Exercises {
			if rec.IsPlaceholder() {
				continue
			}
			if err := rec.Validate(); err != nil {
				return w, fmt.Errorf("exercise %d: %w", i, err)
			}
		}
		w.Exercises = exercise.EncodeAll(req.Exercises)
	} else {
		for _, s := range req.ExerciseStrings {
			if s = strings.TrimSpace(s); s != "" {
				w.Exercises = append(w.Exercises, s)
			}
		}
	}
	return w, nil
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	templates, _ := strconv.ParseBool(r.URL.Query().Get("template"))

	rows, err := s.db.QueryWorkouts(r.Context(), customerID, storage.WorkoutFilter{
		Templates: templates,
		Start:     start,
		End:       end,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]workoutJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, toWorkoutJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	row, err := req.row()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if _, err := s.db.GetCustomer(r.Context(), customerID); err != nil {
		s.writeError(w, err)
		return
	}
	row.CustomerID = customerID

	out, err := s.db.CreateWorkout(r.Context(), row)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkoutJSON(*out))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	row, err := s.db.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutJSON(*row))
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req workoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	row, err := req.row()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	row.ID = id

	out, err := s.db.UpdateWorkout(r.Context(), row)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutJSON(*out))
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.db.DeleteWorkout(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid index"})
		return
	}
	out, err := s.db.DeleteWorkoutExercise(r.Context(), id, index)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkoutJSON(*out))
}

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := s.db.GetCustomer(r.Context(), customerID); err != nil {
		s.writeError(w, err)
		return
	}

	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), r.Body, customerID)
	s.logImport(customerID, result, err, int(time.Since(start).Milliseconds()))
	if err != nil {
		s.log.Error("alpha import error", "customer", customerID, "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
