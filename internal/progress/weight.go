// Package progress computes weight-goal and nutrition progress for a customer.
package progress

import (
	"math"
	"sort"
	"time"

	"github.com/claude/coachdesk/internal/models"
)

// Report summarizes a customer's progress toward a weight goal.
type Report struct {
	StartWeightKg    float64    `json:"start_weight_kg"`
	TargetWeightKg   float64    `json:"target_weight_kg"`
	CurrentWeightKg  *float64   `json:"current_weight_kg"`
	ChangeKg         float64    `json:"change_kg"`
	RemainingKg      float64    `json:"remaining_kg"`
	PercentComplete  float64    `json:"percent_complete"`
	Reached          bool       `json:"reached"`
	DaysElapsed      int        `json:"days_elapsed"`
	DaysRemaining    int        `json:"days_remaining"`
	RequiredWeeklyKg float64    `json:"required_weekly_kg"`
	ActualWeeklyKg   *float64   `json:"actual_weekly_kg"`
	OnTrack          bool       `json:"on_track"`
	ProjectedDate    *time.Time `json:"projected_date"`
	Entries          int        `json:"entries"`
}

// Evaluate compares weigh-ins against a goal as of now. Entries may be in any order.
func Evaluate(goal models.WeightGoal, entries []models.WeightEntry, now time.Time) Report {
	r := Report{
		StartWeightKg:  goal.StartWeightKg,
		TargetWeightKg: goal.TargetWeightKg,
		DaysElapsed:    max(0, daysBetween(goal.StartDate, now)),
		DaysRemaining:  max(0, daysBetween(now, goal.TargetDate)),
		Entries:        len(entries),
	}

	sorted := make([]models.WeightEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	current := goal.StartWeightKg
	if len(sorted) > 0 {
		current = sorted[len(sorted)-1].WeightKg
		r.CurrentWeightKg = &current
	}

	total := goal.TargetWeightKg - goal.StartWeightKg
	r.ChangeKg = round1(current - goal.StartWeightKg)
	r.Reached = reached(goal, current)
	if !r.Reached {
		r.RemainingKg = round1(math.Abs(goal.TargetWeightKg - current))
	}

	switch {
	case total == 0 || r.Reached:
		r.PercentComplete = 100
	default:
		r.PercentComplete = round1(clamp((current-goal.StartWeightKg)/total*100, 0, 100))
	}

	toGo := goal.TargetWeightKg - current
	if r.DaysRemaining > 0 && !r.Reached {
		r.RequiredWeeklyKg = round2(toGo / (float64(r.DaysRemaining) / 7))
	}

	if len(sorted) >= 2 {
		first, last := sorted[0], sorted[len(sorted)-1]
		if days := daysBetween(first.Date, last.Date); days > 0 {
			weekly := round2((last.WeightKg - first.WeightKg) / (float64(days) / 7))
			r.ActualWeeklyKg = &weekly

			if !r.Reached && weekly != 0 && math.Signbit(weekly) == math.Signbit(toGo) {
				weeks := toGo / weekly
				projected := dateOnly(last.Date).AddDate(0, 0, int(math.Ceil(weeks*7)))
				r.ProjectedDate = &projected
			}
		}
	}

	switch {
	case r.Reached:
		r.OnTrack = true
	case r.ProjectedDate != nil:
		r.OnTrack = !r.ProjectedDate.After(dateOnly(goal.TargetDate))
	}

	return r
}

func reached(goal models.WeightGoal, current float64) bool {
	switch {
	case goal.TargetWeightKg < goal.StartWeightKg:
		return current <= goal.TargetWeightKg
	case goal.TargetWeightKg > goal.StartWeightKg:
		return current >= goal.TargetWeightKg
	default:
		return true
	}
}

// daysBetween counts calendar days from a to b, negative when b is earlier.
func daysBetween(a, b time.Time) int {
	return int(math.Round(dateOnly(b).Sub(dateOnly(a)).Hours() / 24))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
