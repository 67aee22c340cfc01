package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.db.ListCustomers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = uuid.Nil
	if err := validateCustomer(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	out, err := s.db.CreateCustomer(r.Context(), c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := s.db.GetCustomer(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var c models.Customer
	if !decodeJSON(w, r, &c) {
		return
	}
	c.ID = id
	if err := validateCustomer(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	out, err := s.db.UpdateCustomer(r.Context(), c)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func validateCustomer(c *models.Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.New("name is required")
	}
	if g := c.Goal; g != nil {
		if g.StartWeightKg <= 0 || g.TargetWeightKg <= 0 {
			return errors.New("goal weights must be positive")
		}
		if !g.TargetDate.After(g.StartDate) {
			return errors.New("goal target_date must be after start_date")
		}
	}
	if n := c.NutritionTarget; n != nil {
		if n.Calories < 0 || n.ProteinG < 0 || n.CarbsG < 0 || n.FatG < 0 {
			return errors.New("nutrition targets must not be negative")
		}
	}
	return nil
}

// writeError maps storage errors to status codes and logs unexpected ones.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, storage.ErrExerciseIndex):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns the UTC calendar day.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", s)
		}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// parseTimeRange reads optional start/end query parameters. Missing values
// stay nil; a date-only end includes that whole day.
func parseTimeRange(r *http.Request) (start, end *time.Time, err error) {
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}
