package exercise

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind discriminates the two exercise variants.
type Kind string

const (
	KindSets   Kind = "sets"
	KindCardio Kind = "cardio"
)

// RepType says whether reps count repetitions or seconds held.
type RepType string

const (
	RepTypeReps    RepType = "reps"
	RepTypeSeconds RepType = "seconds"
)

// SetScheme holds the fields of a sets-based exercise.
type SetScheme struct {
	Sets    string
	Reps    string
	RepType RepType
	Weight  string
}

// CardioScheme holds the fields of a cardio exercise.
type CardioScheme struct {
	DurationMinutes string
	DistanceKm      string
	Intensity       string
}

// Record is one exercise row of a workout. Kind selects which of Sets or
// Cardio is authoritative; the other is ignored by Encode.
type Record struct {
	Name   string
	Kind   Kind
	Sets   SetScheme
	Cardio CardioScheme
	Notes  string
}

// Blank returns the placeholder row an editor starts with.
func Blank() Record {
	return Record{Kind: KindSets, Sets: SetScheme{RepType: RepTypeReps}}
}

// IsPlaceholder reports whether the row was never filled in.
func (r Record) IsPlaceholder() bool {
	return strings.TrimSpace(r.Name) == ""
}

// Validate checks a record received from a client.
func (r Record) Validate() error {
	if r.IsPlaceholder() {
		return fmt.Errorf("exercise name is required")
	}
	switch r.Kind {
	case KindSets, KindCardio:
	default:
		return fmt.Errorf("unknown exercise_type %q", r.Kind)
	}
	switch r.Sets.RepType {
	case "", RepTypeReps, RepTypeSeconds:
	default:
		return fmt.Errorf("unknown repType %q", r.Sets.RepType)
	}
	if r.Kind == KindSets && strings.Contains(r.Sets.Weight, "-") {
		return fmt.Errorf("weight %q must not contain \"-\"", r.Sets.Weight)
	}
	return nil
}

// recordJSON is the flat wire form used by the editor forms.
type recordJSON struct {
	Name            string  `json:"name"`
	ExerciseType    Kind    `json:"exercise_type"`
	Sets            string  `json:"sets"`
	Reps            string  `json:"reps"`
	RepType         RepType `json:"repType"`
	Weight          string  `json:"weight,omitempty"`
	DurationMinutes string  `json:"duration_minutes,omitempty"`
	DistanceKm      string  `json:"distance_km,omitempty"`
	Intensity       string  `json:"intensity,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// MarshalJSON implements json.Marshaler using the flat field names.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Name:            r.Name,
		ExerciseType:    r.Kind,
		Sets:            r.Sets.Sets,
		Reps:            r.Sets.Reps,
		RepType:         r.Sets.RepType,
		Weight:          r.Sets.Weight,
		DurationMinutes: r.Cardio.DurationMinutes,
		DistanceKm:      r.Cardio.DistanceKm,
		Intensity:       r.Cardio.Intensity,
		Notes:           r.Notes,
	})
}

// UnmarshalJSON implements json.Unmarshaler. A missing exercise_type means sets.
func (r *Record) UnmarshalJSON(data []byte) error {
	var v recordJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	kind := v.ExerciseType
	if kind == "" {
		kind = KindSets
	}
	repType := v.RepType
	if repType == "" {
		repType = RepTypeReps
	}
	*r = Record{
		Name: v.Name,
		Kind: kind,
		Sets: SetScheme{
			Sets:    v.Sets,
			Reps:    v.Reps,
			RepType: repType,
			Weight:  v.Weight,
		},
		Cardio: CardioScheme{
			DurationMinutes: v.DurationMinutes,
			DistanceKm:      v.DistanceKm,
			Intensity:       v.Intensity,
		},
		Notes: v.Notes,
	}
	return nil
}
