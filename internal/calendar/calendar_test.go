package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/pkg/contracts/domain"
)

var aest = time.FixedZone("AEST", 10*60*60)

func record(day int, employee, start string, hours float64) domain.ShiftRecord {
	return domain.ShiftRecord{
		SheetTitle:    "1/4-7/4",
		Date:          domain.Date{Year: 2025, Month: time.April, Day: day},
		ShiftTimeText: "09:00-17:00",
		StartTime:     start,
		DurationHours: hours,
		Employee:      employee,
		CellText:      "Emilie",
		Source:        domain.SourcePrimary,
	}
}

func TestStartEnd(t *testing.T) {
	tests := []struct {
		name  string
		rec   domain.ShiftRecord
		start time.Time
		end   time.Time
	}{
		{
			name:  "day shift",
			rec:   record(2, "Emilie", "09:00", 8),
			start: time.Date(2025, time.April, 2, 9, 0, 0, 0, aest),
			end:   time.Date(2025, time.April, 2, 17, 0, 0, 0, aest),
		},
		{
			name:  "overnight",
			rec:   record(2, "Emilie", "23:00", 2),
			start: time.Date(2025, time.April, 2, 23, 0, 0, 0, aest),
			end:   time.Date(2025, time.April, 3, 1, 0, 0, 0, aest),
		},
		{
			name:  "half hours",
			rec:   record(2, "Emilie", "10:30", 4.5),
			start: time.Date(2025, time.April, 2, 10, 30, 0, 0, aest),
			end:   time.Date(2025, time.April, 2, 15, 0, 0, 0, aest),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := StartEnd(tt.rec, aest)
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(start), "start %s", start)
			assert.True(t, tt.end.Equal(end), "end %s", end)
		})
	}

	_, _, err := StartEnd(record(2, "Emilie", "", 8), aest)
	assert.Error(t, err)
	_, _, err = StartEnd(record(2, "Emilie", "09:00", -1), aest)
	assert.Error(t, err)
}

func TestUID(t *testing.T) {
	a := UID(record(2, "Emilie", "09:00", 8))
	b := UID(record(2, "EMILIE", "12:00", 4))
	c := UID(record(3, "Emilie", "09:00", 8))

	assert.Equal(t, a, b, "uid depends on lowercased employee and date only")
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "shift_"))
	assert.Len(t, a, len("shift_")+24)
}

func TestRender(t *testing.T) {
	stamp := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.ShiftRecord{record(2, "Emilie", "09:00", 8), record(3, "Emilie", "10:00", 4)}

	out, err := Render(records, Options{Location: aest, Stamp: stamp, ProductID: "-//test//EN"})
	require.NoError(t, err)
	assert.Contains(t, out, "PRODID:-//test//EN")
	assert.Contains(t, out, "SUMMARY:shift [Emilie]")

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, UID(records[0]), events[0].Id())
	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.April, 2, 9, 0, 0, 0, aest).Equal(start))
	end, err := events[1].GetEndAt()
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.April, 3, 14, 0, 0, 0, aest).Equal(end))
}

func TestRenderSkipsRepeatedUID(t *testing.T) {
	first := record(2, "Emilie", "09:00", 8)
	again := record(2, "emilie", "12:00", 4)
	again.SheetTitle = "this week"

	out, err := Render([]domain.ShiftRecord{first, again, record(3, "Emilie", "10:00", 4)}, Options{Location: aest})
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)
	assert.Equal(t, UID(first), events[0].Id())
	assert.Equal(t, 1, strings.Count(out, "UID:"+UID(first)))
	start, err := events[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, time.Date(2025, time.April, 2, 9, 0, 0, 0, aest).Equal(start))
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render(nil, Options{Location: time.UTC})
	require.NoError(t, err)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestRenderRejectsBadRecord(t *testing.T) {
	_, err := Render([]domain.ShiftRecord{record(2, "Emilie", "late", 8)}, Options{Location: time.UTC})
	assert.Error(t, err)
}
