package shiftscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractShiftDetails(t *testing.T) {
	prefixes := DefaultParams().RolePrefixes

	tests := []struct {
		name     string
		token    string
		start    string
		duration float64
		ok       bool
	}{
		{name: "plain range", token: "09:00-17:00", start: "09:00", duration: 8, ok: true},
		{name: "role prefix", token: "Open 09:00-17:00", start: "09:00", duration: 8, ok: true},
		{name: "multi word prefix", token: "DM Support 10:30-15:00", start: "10:30", duration: 4.5, ok: true},
		{name: "close prefix colon", token: "close: 16:00-22:00", start: "16:00", duration: 6, ok: true},
		{name: "overnight wrap", token: "23:00-01:00", start: "23:00", duration: 2, ok: true},
		{name: "single digit hours", token: "9:00-5:30", start: "09:00", duration: 20.5, ok: true},
		{name: "spaces around dash", token: "09:00 - 13:00", start: "09:00", duration: 4, ok: true},
		{name: "trailing text", token: "09:00-17:00 lunch 30m", start: "09:00", duration: 8, ok: true},
		{name: "embedded override", token: "Emilie (10:00-14:00)", start: "10:00", duration: 4, ok: true},
		{name: "embedded wins over outer", token: "open 09:00-17:00 (12:00-16:00)", start: "12:00", duration: 4, ok: true},
		{name: "zero length", token: "09:00-09:00", start: "09:00", duration: 0, ok: true},
		{name: "not a time", token: "n/a", ok: false},
		{name: "empty", token: "", ok: false},
		{name: "invalid hour", token: "25:00-26:00", ok: false},
		{name: "unknown prefix", token: "lunch 09:00-17:00", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractShiftDetails(tt.token, prefixes)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, ShiftTime{}, got)
				return
			}
			assert.Equal(t, tt.start, got.Start)
			assert.InDelta(t, tt.duration, got.DurationHours, 1e-9)
			assert.GreaterOrEqual(t, got.DurationHours, 0.0)
		})
	}
}

func TestIsShiftTimeLike(t *testing.T) {
	prefixes := DefaultParams().RolePrefixes

	assert.True(t, IsShiftTimeLike("09:00-17:00", prefixes))
	assert.True(t, IsShiftTimeLike("FLEX 11:00-19:00", prefixes))
	assert.False(t, IsShiftTimeLike("Emilie", prefixes))
	assert.False(t, IsShiftTimeLike("Emilie (10:00-14:00)", prefixes))
	assert.False(t, IsShiftTimeLike("2nd April", prefixes))
}

func TestEmbeddedShiftTime(t *testing.T) {
	st, raw, ok := EmbeddedShiftTime("Sam ( 8:00-12:00 )")
	assert.True(t, ok)
	assert.Equal(t, "8:00-12:00", raw)
	assert.Equal(t, "08:00", st.Start)
	assert.InDelta(t, 4.0, st.DurationHours, 1e-9)

	_, _, ok = EmbeddedShiftTime("Sam (off)")
	assert.False(t, ok)
}

func TestPrefixesLongestFirst(t *testing.T) {
	got := normalizedPrefixes([]string{"dm", " DM Support ", "", "open"})
	assert.Equal(t, []string{"dm support", "open", "dm"}, got)
}
