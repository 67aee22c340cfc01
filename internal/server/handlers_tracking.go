package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/progress"
)

type weightRequest struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
	Note     string  `json:"note"`
}

type mealRequest struct {
	Date     string  `json:"date"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func (s *Server) handleListWeight(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entries, err := s.db.QueryWeightEntries(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.WeightEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddWeight(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req weightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be positive"})
		return
	}
	date, ok := dayOrToday(w, req.Date)
	if !ok {
		return
	}
	if _, err := s.db.GetCustomer(r.Context(), customerID); err != nil {
		s.writeError(w, err)
		return
	}
	e, err := s.db.InsertWeightEntry(r.Context(), models.WeightEntry{
		CustomerID: customerID,
		Date:       date,
		WeightKg:   req.WeightKg,
		Note:       strings.TrimSpace(req.Note),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := s.db.GetCustomer(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if c.Goal == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "customer has no weight goal"})
		return
	}
	entries, err := s.db.QueryWeightEntries(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress.Evaluate(*c.Goal, entries, time.Now()))
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	day, ok := dayOrToday(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	meals, err := s.db.QueryMeals(r.Context(), customerID, day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if meals == nil {
		meals = []models.Meal{}
	}
	writeJSON(w, http.StatusOK, meals)
}

func (s *Server) handleAddMeal(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req mealRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if req.Calories < 0 || req.ProteinG < 0 || req.CarbsG < 0 || req.FatG < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "nutrition values must not be negative"})
		return
	}
	date, ok := dayOrToday(w, req.Date)
	if !ok {
		return
	}
	if _, err := s.db.GetCustomer(r.Context(), customerID); err != nil {
		s.writeError(w, err)
		return
	}
	m, err := s.db.InsertMeal(r.Context(), models.Meal{
		CustomerID: customerID,
		Date:       date,
		Name:       req.Name,
		Calories:   req.Calories,
		ProteinG:   req.ProteinG,
		CarbsG:     req.CarbsG,
		FatG:       req.FatG,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleNutrition(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	day, ok := dayOrToday(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}
	c, err := s.db.GetCustomer(r.Context(), customerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	meals, err := s.db.QueryMeals(r.Context(), customerID, day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":   day.Format(dateLayout),
		"target": c.NutritionTarget,
		"totals": progress.Nutrition(c.NutritionTarget, meals),
	})
}

// dayOrToday parses s as a calendar day, defaulting to today (UTC).
func dayOrToday(w http.ResponseWriter, s string) (time.Time, bool) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}
	d, err := parseDate(s)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return time.Time{}, false
	}
	return d, true
}
