package alpha

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/coachdesk/internal/exercise"
	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
)

// Source tags workouts created by this importer.
const Source = "alpha"

// Record summarizes the working sets of an exercise as one editor row:
// set count, reps (a range when they differ), top weight, and the lowest
// RIR plus warm-up count as notes.
func (e Exercise) Record() exercise.Record {
	r := exercise.Blank()
	r.Name = e.Name
	if e.Equipment != "" && e.Equipment != "Bodyweight" {
		r.Name = fmt.Sprintf("%s (%s)", e.Name, e.Equipment)
	}

	var (
		working          []Set
		warmups          int
		minReps, maxReps int
		topWeight        float64
		bodyweight       bool
	)
	minRIR := -1.0
	for _, s := range e.Sets {
		if s.IsWarmup {
			warmups++
			continue
		}
		if len(working) == 0 || s.Reps < minReps {
			minReps = s.Reps
		}
		if s.Reps > maxReps {
			maxReps = s.Reps
		}
		if s.WeightKg > topWeight {
			topWeight = s.WeightKg
		}
		bodyweight = bodyweight || s.IsBodyweightPlus
		if s.RIR >= 0 && (minRIR < 0 || s.RIR < minRIR) {
			minRIR = s.RIR
		}
		working = append(working, s)
	}

	var notes []string
	if len(working) > 0 {
		r.Sets.Sets = strconv.Itoa(len(working))
		r.Sets.Reps = strconv.Itoa(minReps)
		if maxReps != minReps {
			r.Sets.Reps += "-" + strconv.Itoa(maxReps)
		}
		r.Sets.Weight = formatWeight(topWeight, bodyweight)
		if minRIR >= 0 {
			notes = append(notes, formatKg(minRIR)+" RIR")
		}
	}
	switch {
	case warmups == 1:
		notes = append(notes, "1 warm-up set")
	case warmups > 1:
		notes = append(notes, fmt.Sprintf("%d warm-up sets", warmups))
	}
	r.Notes = strings.Join(notes, ", ")
	return r
}

// Workout converts a session into a dated workout for a customer.
func (s Session) Workout(customerID uuid.UUID) models.WorkoutRow {
	records := make([]exercise.Record, 0, len(s.Exercises))
	for _, e := range s.Exercises {
		records = append(records, e.Record())
	}
	date := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
	return models.WorkoutRow{
		ID:         uuid.New(),
		CustomerID: customerID,
		Name:       s.Name,
		Date:       &date,
		Exercises:  exercise.EncodeAll(records),
		Notes:      s.Duration,
		Source:     Source,
	}
}

func formatWeight(kg float64, bodyweight bool) string {
	switch {
	case bodyweight && kg == 0:
		return "BW"
	case bodyweight:
		return "BW+" + formatKg(kg) + "kg"
	case kg == 0:
		return ""
	default:
		return formatKg(kg) + "kg"
	}
}

func formatKg(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
