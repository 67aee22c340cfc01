// Package exercise converts workout exercise rows to and from the flat
// display strings stored in a workout's exercise list.
//
// Sets exercises look like "Bench Press 3x8 @ 50kg - slow tempo" and cardio
// exercises like "[CARDIO] Rowing | 20min | 5km | Moderate - easy pace".
// Decoding is best-effort pattern matching: text that matches no pattern is
// folded into the name, and names that contain the separators themselves
// ("@", "3x10", " - ", " | ") do not survive a round trip. Neither do weights
// containing "-" ("-10kg", "10-12kg"): the weight ends at the first "-".
// Record.Validate rejects those.
package exercise

import (
	"regexp"
	"strings"
)

const (
	cardioPrefix   = "[CARDIO]"
	notesSep       = " - "
	cardioFieldSep = " | "
	minutesSuffix  = "min"
	kmSuffix       = "km"
	secondsSuffix  = "s"
)

var (
	// weightRe matches: @ 50kg
	weightRe = regexp.MustCompile(`@\s*([^-]+)`)

	// setsRepsRe matches: 3x8, 4x8-12, 3x30s
	setsRepsRe = regexp.MustCompile(`(\d+)x([\d-]+)(s?)`)
)

// Encode renders a record as its display string. Empty optional fields are
// left out entirely.
func Encode(r Record) string {
	var b strings.Builder
	name := strings.TrimSpace(r.Name)
	notes := strings.TrimSpace(r.Notes)

	if r.Kind == KindCardio {
		b.WriteString(cardioPrefix)
		b.WriteString(" ")
		b.WriteString(name)
		if d := strings.TrimSpace(r.Cardio.DurationMinutes); d != "" {
			b.WriteString(cardioFieldSep + d + minutesSuffix)
		}
		if d := strings.TrimSpace(r.Cardio.DistanceKm); d != "" {
			b.WriteString(cardioFieldSep + d + kmSuffix)
		}
		if i := strings.TrimSpace(r.Cardio.Intensity); i != "" {
			b.WriteString(cardioFieldSep + i)
		}
	} else {
		b.WriteString(name)
		sets := strings.TrimSpace(r.Sets.Sets)
		reps := strings.TrimSpace(r.Sets.Reps)
		if sets != "" && reps != "" {
			b.WriteString(" " + sets + "x" + reps)
			if r.Sets.RepType == RepTypeSeconds {
				b.WriteString(secondsSuffix)
			}
		}
		if w := strings.TrimSpace(r.Sets.Weight); w != "" {
			b.WriteString(" @ " + w)
		}
	}

	if notes != "" {
		b.WriteString(notesSep + notes)
	}
	return b.String()
}

// Decode parses a display string back into a record. It never fails; fields
// whose pattern is not found are left empty.
func Decode(s string) Record {
	r := Blank()
	s = strings.TrimSpace(s)
	if s == "" {
		return r
	}

	if strings.HasPrefix(s, cardioPrefix) {
		r.Kind = KindCardio
		body, notes := splitNotes(strings.TrimSpace(strings.TrimPrefix(s, cardioPrefix)))
		r.Notes = notes

		segments := strings.Split(body, cardioFieldSep)
		r.Name = strings.TrimSpace(segments[0])
		for _, seg := range segments[1:] {
			seg = strings.TrimSpace(seg)
			switch {
			case strings.HasSuffix(seg, minutesSuffix):
				r.Cardio.DurationMinutes = strings.TrimSpace(strings.TrimSuffix(seg, minutesSuffix))
			case strings.HasSuffix(seg, kmSuffix):
				r.Cardio.DistanceKm = strings.TrimSpace(strings.TrimSuffix(seg, kmSuffix))
			case r.Cardio.Intensity == "":
				r.Cardio.Intensity = seg
			}
		}
		return r
	}

	body, notes := splitNotes(s)
	r.Notes = notes

	if m := weightRe.FindStringSubmatchIndex(body); m != nil {
		r.Sets.Weight = strings.TrimSpace(body[m[2]:m[3]])
		body = body[:m[0]] + body[m[1]:]
	}

	if m := setsRepsRe.FindStringSubmatchIndex(body); m != nil {
		r.Sets.Sets = body[m[2]:m[3]]
		r.Sets.Reps = body[m[4]:m[5]]
		if m[7] > m[6] {
			r.Sets.RepType = RepTypeSeconds
		}
		body = body[:m[0]] + body[m[1]:]
	}

	r.Name = strings.TrimSpace(body)
	return r
}

// splitNotes separates the main body from trailing notes. Only the first
// segment after the separator is kept as notes.
func splitNotes(s string) (body, notes string) {
	parts := strings.Split(s, notesSep)
	body = parts[0]
	if len(parts) > 1 {
		notes = strings.TrimSpace(parts[1])
	}
	return body, notes
}

// EncodeAll encodes the filled-in rows of an editor, dropping placeholders.
func EncodeAll(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if r.IsPlaceholder() {
			continue
		}
		out = append(out, Encode(r))
	}
	return out
}

// DecodeAll decodes a stored exercise list.
func DecodeAll(lines []string) []Record {
	out := make([]Record, 0, len(lines))
	for _, l := range lines {
		out = append(out, Decode(l))
	}
	return out
}
