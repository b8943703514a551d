package shiftscan

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/shared/testutil"
)

func TestSlogSink(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	sink := NewSlogSink(logger)

	sink.Emit(Event{Kind: EventSheetSkipped, Sheet: "week", Err: ErrNoDateHeaders})
	sink.Emit(Event{Kind: EventRecord, Sheet: "week", Row: 2, Col: 3, Detail: "Sam 02/04/2025 09:00"})

	records := handler.GetRecords()
	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelInfo, records[0].Level)
	assert.Equal(t, "sheet_skipped", records[0].Attrs["event"])
	assert.Equal(t, ErrNoDateHeaders.Error(), records[0].Attrs["error"])
	assert.Equal(t, slog.LevelDebug, records[1].Level)
	assert.Equal(t, "Sam 02/04/2025 09:00", records[1].Attrs["detail"])
	assert.True(t, handler.ContainsAttr("component", "shiftscan"))
}

func TestSinkFunc(t *testing.T) {
	var got []EventKind
	var sink EventSink = SinkFunc(func(e Event) { got = append(got, e.Kind) })
	sink.Emit(Event{Kind: EventPrimaryMiss})
	assert.Equal(t, []EventKind{EventPrimaryMiss}, got)

	assert.NotPanics(t, func() { sinkOrNop(nil).Emit(Event{}) })
}
