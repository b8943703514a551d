package shiftscan

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/pkg/contracts/domain"
)

func at(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func mustDate(t *testing.T, year int, month time.Month, day int) domain.Date {
	t.Helper()
	d, err := domain.NewDate(year, month, day)
	require.NoError(t, err)
	return d
}

func TestNormalizeDate(t *testing.T) {
	ref := at(2025, time.June, 10)

	tests := []struct {
		name  string
		token string
		want  domain.Date
	}{
		{name: "ordinal with abbreviation", token: "2nd Apr", want: domain.Date{Year: 2025, Month: time.April, Day: 2}},
		{name: "ordinal with full month", token: "3rd April", want: domain.Date{Year: 2025, Month: time.April, Day: 3}},
		{name: "plain day", token: "15 Jun", want: domain.Date{Year: 2025, Month: time.June, Day: 15}},
		{name: "sept spelling", token: "21st Sept", want: domain.Date{Year: 2025, Month: time.September, Day: 21}},
		{name: "surrounding whitespace", token: "  4th March ", want: domain.Date{Year: 2025, Month: time.March, Day: 4}},
		{name: "iso date", token: "2024-12-30", want: domain.Date{Year: 2024, Month: time.December, Day: 30}},
		{name: "iso timestamp", token: "2024-12-30 00:00:00", want: domain.Date{Year: 2024, Month: time.December, Day: 30}},
		{name: "rfc3339 timestamp", token: "2025-04-02T00:00:00Z", want: domain.Date{Year: 2025, Month: time.April, Day: 2}},
		{name: "special label", token: "APRIL FOOLS!", want: domain.Date{Year: 2025, Month: time.April, Day: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.token, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDateFormatErrors(t *testing.T) {
	ref := at(2025, time.June, 10)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "single word", token: "Monday"},
		{name: "three parts", token: "Monday 2nd April"},
		{name: "no digits", token: "second April"},
		{name: "unknown month", token: "2nd Foo"},
		{name: "lowercase month", token: "2nd april"},
		{name: "impossible day", token: "31st April"},
		{name: "invalid iso", token: "2025-02-30"},
		{name: "shift time", token: "09:00-17:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeDate(tt.token, ref)
			require.Error(t, err)
			var fe *FormatError
			assert.True(t, errors.As(err, &fe))
			assert.Equal(t, "date", fe.Kind)
		})
	}
}

func TestNormalizeDateYearInference(t *testing.T) {
	tests := []struct {
		name  string
		token string
		ref   time.Time
		want  int
	}{
		{name: "december read in february", token: "15 Dec", ref: at(2025, time.February, 3), want: 2024},
		{name: "december read in march", token: "31st Dec", ref: at(2025, time.March, 31), want: 2024},
		{name: "december read in april", token: "15 Dec", ref: at(2025, time.April, 1), want: 2025},
		{name: "january read in november", token: "2 Jan", ref: at(2025, time.November, 20), want: 2026},
		{name: "january read in october", token: "2nd January", ref: at(2025, time.October, 1), want: 2026},
		{name: "january read in september", token: "2 Jan", ref: at(2025, time.September, 30), want: 2025},
		{name: "other months use reference year", token: "5th Jul", ref: at(2025, time.January, 5), want: 2025},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.token, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Year)
		})
	}
}

func TestIsDateLike(t *testing.T) {
	ref := at(2025, time.June, 10)

	_, ok := IsDateLike("9:30", ref)
	assert.False(t, ok, "bare time")
	_, ok = IsDateLike("09:30:00", ref)
	assert.False(t, ok, "bare time with seconds")
	_, ok = IsDateLike("Emilie", ref)
	assert.False(t, ok)

	d, ok := IsDateLike("12th Jun", ref)
	assert.True(t, ok)
	assert.Equal(t, "12/06/2025", d.String())
}

func TestCustomSpecialDates(t *testing.T) {
	n := NewDateNormalizer(map[string]MonthDay{"XMAS": {Month: time.December, Day: 25}})

	d, err := n.Normalize("XMAS", at(2025, time.February, 1))
	require.NoError(t, err)
	// special labels take the reference year as-is
	assert.Equal(t, mustDate(t, 2025, time.December, 25), d)

	_, err = n.Normalize("APRIL FOOLS!", at(2025, time.February, 1))
	assert.Error(t, err)
}

func TestIsPast(t *testing.T) {
	ref := at(2025, time.April, 2)
	yesterday := mustDate(t, 2025, time.April, 1)
	today := mustDate(t, 2025, time.April, 2)
	tomorrow := mustDate(t, 2025, time.April, 3)

	assert.True(t, IsPast(yesterday, ref, PastStrict))
	assert.False(t, IsPast(today, ref, PastStrict))
	assert.False(t, IsPast(tomorrow, ref, PastStrict))

	assert.True(t, IsPast(yesterday, ref, PastInclusive))
	assert.True(t, IsPast(today, ref, PastInclusive))
	assert.False(t, IsPast(tomorrow, ref, PastInclusive))
}

func TestIsPastUsesReferenceLocation(t *testing.T) {
	sydney := time.FixedZone("AEST", 10*60*60)

	// 2 April 23:30 UTC is already 3 April in Sydney
	ref := time.Date(2025, time.April, 2, 23, 30, 0, 0, time.UTC).In(sydney)
	assert.True(t, IsPast(mustDate(t, 2025, time.April, 2), ref, PastStrict))
}
