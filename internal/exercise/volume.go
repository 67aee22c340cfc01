package exercise

import (
	"regexp"
	"strconv"
	"strings"
)

const kgPerLb = 0.45359237

var leadingNumberRe = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*([a-zA-Z]*)`)

// Volume is the training load a record describes, as far as its free-text
// fields can be read as numbers.
type Volume struct {
	Sets          int     `json:"sets"`
	Reps          int     `json:"reps"`
	TonnageKg     float64 `json:"tonnage_kg"`
	CardioMinutes float64 `json:"cardio_minutes"`
	CardioKm      float64 `json:"cardio_km"`
}

// Add accumulates o into v.
func (v *Volume) Add(o Volume) {
	v.Sets += o.Sets
	v.Reps += o.Reps
	v.TonnageKg += o.TonnageKg
	v.CardioMinutes += o.CardioMinutes
	v.CardioKm += o.CardioKm
}

// Volume reads the record's numbers. Rep ranges count their lower bound,
// timed sets count no reps, and weights in lb are converted to kg. Fields
// that are not numeric contribute nothing.
func (r Record) Volume() Volume {
	if r.Kind == KindCardio {
		minutes, _ := leadingNumber(r.Cardio.DurationMinutes)
		km, _ := leadingNumber(r.Cardio.DistanceKm)
		return Volume{CardioMinutes: minutes, CardioKm: km}
	}

	sets, ok := leadingNumber(r.Sets.Sets)
	if !ok {
		return Volume{}
	}
	v := Volume{Sets: int(sets)}
	if r.Sets.RepType == RepTypeSeconds {
		return v
	}
	lower, _, _ := strings.Cut(r.Sets.Reps, "-")
	reps, ok := leadingNumber(lower)
	if !ok {
		return v
	}
	v.Reps = int(sets) * int(reps)
	if kg, ok := weightKg(r.Sets.Weight); ok {
		v.TonnageKg = float64(v.Reps) * kg
	}
	return v
}

func weightKg(s string) (float64, bool) {
	m := leadingNumberRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(m[2]) {
	case "", "kg", "kgs":
		return n, true
	case "lb", "lbs":
		return n * kgPerLb, true
	default:
		return 0, false
	}
}

func leadingNumber(s string) (float64, bool) {
	m := leadingNumberRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	return n, err == nil
}
