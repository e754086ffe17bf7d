package transformers

import (
	"fmt"
	"time"
)

// Layouts tried in order when parsing an original date value. The substitute
// is rendered with whichever layout matched, so the column format survives.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

const (
	maxDateShiftDays  = 365
	maxBirthShiftDays = 3 * 365
	minAdultAgeYears  = 18
	maxAgeYears       = 100
)

// birthRef anchors the adult-age clamp. A fixed reference keeps the clamped
// result a pure function of the seed; clamping against the wall clock would
// make the same original map to different dates across runs.
var birthRef = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func parseDate(original string) (time.Time, string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, original); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unsupported date format %q", original)
}

// generateDate shifts the original date deterministically within a year in
// either direction, keeping the time-of-day part untouched.
func generateDate(req *Request) (string, error) {
	t, layout, err := parseDate(req.Original)
	if err != nil {
		return "", err
	}
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	shift := r.Intn(2*maxDateShiftDays+1) - maxDateShiftDays
	return fitLength(t.AddDate(0, 0, shift).Format(layout), req.MaxLength), nil
}

// generateDateOfBirth shifts within three years but clamps the result into a
// plausible adult birth-date range, so the semantic category is preserved.
func generateDateOfBirth(req *Request) (string, error) {
	t, layout, err := parseDate(req.Original)
	if err != nil {
		return "", err
	}
	r, err := req.Rand()
	if err != nil {
		return "", err
	}
	shift := r.Intn(2*maxBirthShiftDays+1) - maxBirthShiftDays
	res := t.AddDate(0, 0, shift)

	youngest := birthRef.AddDate(-minAdultAgeYears, 0, 0)
	oldest := birthRef.AddDate(-maxAgeYears, 0, 0)
	if res.After(youngest) {
		res = youngest.AddDate(0, 0, -r.Intn(maxBirthShiftDays))
	}
	if res.Before(oldest) {
		res = oldest.AddDate(0, 0, r.Intn(maxBirthShiftDays))
	}
	return fitLength(res.Format(layout), req.MaxLength), nil
}

func init() {
	register("Date", &Definition{
		Generate:    generateDate,
		CachePolicy: CacheDefault,
		Description: "Shifts a date deterministically within a year of the original.",
	})
	register("DateOfBirth", &Definition{
		Generate:    generateDateOfBirth,
		CachePolicy: CacheDefault,
		Description: "Shifts a birth date while keeping a plausible adult age range.",
	})
}
