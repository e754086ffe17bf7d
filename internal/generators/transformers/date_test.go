package transformers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateDate_preserves_layout(t *testing.T) {
	for _, original := range []string{
		"2023-04-07",
		"2023-04-07 10:30:00",
		"2023-04-07T10:30:00Z",
		"04/07/2023",
	} {
		res := generate(t, "Date", original, 0)
		_, layout, err := parseDate(original)
		require.NoError(t, err)
		_, err = time.Parse(layout, res)
		require.NoError(t, err, "generated %q does not match layout of %q", res, original)
	}
}

func TestGenerateDate_shift_within_a_year(t *testing.T) {
	original := "2023-04-07"
	res := generate(t, "Date", original, 0)

	origDate, _, err := parseDate(original)
	require.NoError(t, err)
	newDate, _, err := parseDate(res)
	require.NoError(t, err)

	diff := newDate.Sub(origDate)
	if diff < 0 {
		diff = -diff
	}
	require.LessOrEqual(t, diff, time.Duration(maxDateShiftDays)*24*time.Hour)
}

func TestGenerateDate_unsupported_format(t *testing.T) {
	def, ok := Get("Date")
	require.True(t, ok)
	_, err := def.Generate(newTestRequest(t, "April the 7th", 0))
	require.Error(t, err)
}

func TestGenerateDateOfBirth_stays_adult(t *testing.T) {
	for _, original := range []string{"2010-01-01", "1900-01-01", "1987-06-05"} {
		res := generate(t, "DateOfBirth", original, 0)
		dob, _, err := parseDate(res)
		require.NoError(t, err)

		require.False(t, dob.After(birthRef.AddDate(-minAdultAgeYears, 0, 0)), "dob %s younger than %d years", res, minAdultAgeYears)
		require.False(t, dob.Before(birthRef.AddDate(-maxAgeYears, 0, -maxBirthShiftDays)), "dob %s older than %d years", res, maxAgeYears)
	}
}

func TestGenerateDateOfBirth_clamp_is_clock_independent(t *testing.T) {
	// A minor's birth date always takes the clamp branch; the clamped result
	// must land in a window anchored on the fixed reference date, never on
	// time.Now(), or the mapping drifts between runs on different days.
	res := generate(t, "DateOfBirth", "2020-01-01", 0)
	dob, _, err := parseDate(res)
	require.NoError(t, err)

	youngest := birthRef.AddDate(-minAdultAgeYears, 0, 0)
	require.False(t, dob.After(youngest), "dob %s past the fixed adult boundary", res)
	require.False(t, dob.Before(youngest.AddDate(0, 0, -maxBirthShiftDays)), "dob %s shifted more than %d days below the boundary", res, maxBirthShiftDays)
}

func TestParseDate_round_trip(t *testing.T) {
	parsed, layout, err := parseDate("2023-04-07 10:30:00")
	require.NoError(t, err)
	require.Equal(t, "2006-01-02 15:04:05", layout)
	require.Equal(t, "2023-04-07 10:30:00", parsed.Format(layout))
}
