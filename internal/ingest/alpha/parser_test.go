package alpha

import (
	"strings"
	"testing"

	"github.com/claude/coachdesk/internal/exercise"
)

const sampleCSV = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;1
"2. Sumo Squats · Smith machine · 10 reps";"WU1 · 35 kg · 8 reps"
#;KG;REPS;RIR
1;70;8;1
2;70;12;1
"3. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
3;+35;10;0
"4. Reverse Lunges · Dumbbells · 10 reps"
#;KG;REPS;RIR
1;10;10;1
2;10;10;1
3;10;10;0
"5. Standing Calf Raises · Machine · 12 reps";"WU1 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;157,5;11;1
2;157,5;11;0
3;157,5;10;0
"6. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;1
3;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps<br>WU3 · 77,5 kg · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;0
3;100;6;0
`

// TestParseSessions verifies a two-session export is split into sessions
// with their names, dates and durations.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	tests := []struct {
		name      string
		date      string
		duration  string
		exercises int
	}{
		{"Legs · Day 2 · Week 4 · Push-Pull-Legs", "2026-02-19 04:54", "1:02 hr", 6},
		{"Push · Day 1 · Week 4 · Push-Pull-Legs", "2026-02-17 05:04", "1:12 hr", 1},
	}
	for i, tt := range tests {
		s := sessions[i]
		if s.Name != tt.name || s.Duration != tt.duration || len(s.Exercises) != tt.exercises {
			t.Errorf("session %d = %q %q with %d exercises", i, s.Name, s.Duration, len(s.Exercises))
		}
		if got := s.Date.Format("2006-01-02 15:04"); got != tt.date {
			t.Errorf("session %d date = %s, want %s", i, got, tt.date)
		}
	}
}

// TestParseExercises checks each parsed exercise together with the editor
// row it becomes, so parser changes show up as changed workout strings.
func TestParseExercises(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, equipment string
		targetReps      int
		warmups, sets   int
		encoded         string
	}{
		{"Hack Squats", "Machine", 8, 2, 5, "Hack Squats (Machine) 3x8-10 @ 115kg - 1 RIR, 2 warm-up sets"},
		{"Sumo Squats", "Smith machine", 10, 1, 3, "Sumo Squats (Smith machine) 2x8-12 @ 70kg - 1 RIR, 1 warm-up set"},
		{"Hyperextensions on Roman Chair", "Bodyweight", 10, 1, 4, "Hyperextensions on Roman Chair 3x9-10 @ BW+35kg - 0 RIR, 1 warm-up set"},
		{"Reverse Lunges", "Dumbbells", 10, 0, 3, "Reverse Lunges (Dumbbells) 3x10 @ 10kg - 0 RIR"},
		{"Standing Calf Raises", "Machine", 12, 1, 4, "Standing Calf Raises (Machine) 3x10-11 @ 157.5kg - 0 RIR, 1 warm-up set"},
		{"Hanging Leg Raises", "Bodyweight", 12, 0, 3, "Hanging Leg Raises 3x12 @ BW - 0 RIR"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := sessions[0].Exercises[i]
			if ex.Name != tt.name || ex.Equipment != tt.equipment || ex.TargetReps != tt.targetReps {
				t.Errorf("exercise = %q / %q / %d reps", ex.Name, ex.Equipment, ex.TargetReps)
			}
			warmups := 0
			for _, s := range ex.Sets {
				if s.IsWarmup {
					warmups++
				}
			}
			if len(ex.Sets) != tt.sets || warmups != tt.warmups {
				t.Errorf("sets = %d (%d warm-up), want %d (%d)", len(ex.Sets), warmups, tt.sets, tt.warmups)
			}

			rec := ex.Record()
			if got := exercise.Encode(rec); got != tt.encoded {
				t.Errorf("encoded = %q, want %q", got, tt.encoded)
			}
			if err := rec.Validate(); err != nil {
				t.Errorf("imported row fails validation: %v", err)
			}
		})
	}
}

// TestParseNumbers covers the export's number formats: comma decimals,
// "+N" bodyweight weights and blank RIR.
func TestParseNumbers(t *testing.T) {
	floats := map[string]float64{"102,5": 102.5, "0,5": 0.5, "157,5": 157.5, "100": 100}
	for in, want := range floats {
		if got := parseEuropeanFloat(in); got != want {
			t.Errorf("parseEuropeanFloat(%q) = %v, want %v", in, got, want)
		}
	}

	weights := []struct {
		in   string
		kg   float64
		plus bool
	}{
		{"+35", 35, true},
		{"+0", 0, true},
		{"77,5", 77.5, false},
	}
	for _, tt := range weights {
		kg, plus := parseWeight(tt.in)
		if kg != tt.kg || plus != tt.plus {
			t.Errorf("parseWeight(%q) = %v, %v", tt.in, kg, plus)
		}
	}

	if parseRIR("") != -1 {
		t.Error("empty RIR should be untracked")
	}
	if parseRIR("0,5") != 0.5 {
		t.Error("half RIR lost")
	}
}

// TestParseWarmups verifies warm-up sets from the exercise header, and that a
// bodyweight warm-up summarizes as a bare BW row.
func TestParseWarmups(t *testing.T) {
	sets := parseWarmups("WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps")
	if len(sets) != 2 {
		t.Fatalf("warm-up sets = %d, want 2", len(sets))
	}
	if sets[0].WeightKg != 37.5 || sets[0].Reps != 9 || !sets[0].IsWarmup || sets[1].WeightKg != 72.5 {
		t.Errorf("warm-ups = %+v", sets)
	}

	bw := parseWarmups("WU1 · +0 kg · 8 reps")
	if len(bw) != 1 || !bw[0].IsBodyweightPlus || bw[0].WeightKg != 0 {
		t.Fatalf("bodyweight warm-up = %+v", bw)
	}
	bw = append(bw, Set{Number: 1, Reps: 10, RIR: 2, IsBodyweightPlus: true})
	ex := Exercise{Name: "Dips", Equipment: "Bodyweight", Sets: bw}
	if got := exercise.Encode(ex.Record()); got != "Dips 1x10 @ BW - 2 RIR, 1 warm-up set" {
		t.Errorf("encoded = %q", got)
	}
}

// TestParseRejects verifies empty input is fine and malformed input is not.
func TestParseRejects(t *testing.T) {
	sessions, err := Parse(strings.NewReader(""))
	if err != nil || len(sessions) != 0 {
		t.Errorf("empty input: %d sessions, err %v", len(sessions), err)
	}
	if _, err := Parse(strings.NewReader(`"1. Bench Press · Barbell · 6 reps"` + "\n1;100;6;0\n")); err == nil {
		t.Error("expected error for exercise without session")
	}
	if _, err := parseSessionDate("19.02.2026 4:54"); err == nil {
		t.Error("expected error for unknown date layout")
	}
}
