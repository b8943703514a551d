package calendarsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/shared/testutil"
	"shiftcal/pkg/contracts/domain"
)

var aest = time.FixedZone("AEST", 10*60*60)

type fakeStore struct {
	mu       sync.Mutex
	events   []RemoteEvent
	listErr  error
	inserted int
	updated  int
	days     []time.Time
}

func (f *fakeStore) ListDay(_ context.Context, start, end time.Time) ([]RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, start)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []RemoteEvent
	for _, e := range f.events {
		if !e.Start.Before(start) && e.Start.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, ev RemoteEvent) (RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted++
	ev.ID = "new"
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeStore) Update(_ context.Context, ev RemoteEvent) (RemoteEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated++
	for i := range f.events {
		if f.events[i].ID == ev.ID {
			f.events[i] = ev
		}
	}
	return ev, nil
}

func shift(day int, text, start string) domain.ShiftRecord {
	return domain.ShiftRecord{
		SheetTitle:    "1/4-7/4",
		Date:          domain.Date{Year: 2025, Month: time.April, Day: day},
		ShiftTimeText: "09:00-17:00",
		StartTime:     start,
		DurationHours: 8,
		Employee:      "Emilie",
		CellText:      text,
	}
}

func TestSyncInsertsAndUpdates(t *testing.T) {
	store := &fakeStore{events: []RemoteEvent{{
		ID:      "existing",
		Summary: "Shift - [Emilie]",
		Start:   time.Date(2025, time.April, 2, 7, 0, 0, 0, aest),
	}}}
	logger, handler := testutil.NewTestLogger(t)

	res, err := NewSyncer(store, aest, logger).Sync(context.Background(), []domain.ShiftRecord{
		shift(2, "Emilie", "09:00"),
		shift(3, "Emilie", "10:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Inserted)
	assert.Empty(t, res.Failed)
	assert.Equal(t, time.Date(2025, time.April, 2, 9, 0, 0, 0, aest), store.events[0].Start, "existing event moved")
	assert.True(t, store.days[0].Equal(time.Date(2025, time.April, 2, 0, 0, 0, 0, aest)))
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Calendar sync finished")
}

func TestSyncDifferentSummaryInserts(t *testing.T) {
	store := &fakeStore{events: []RemoteEvent{{
		ID:      "other",
		Summary: "Dentist",
		Start:   time.Date(2025, time.April, 2, 7, 0, 0, 0, aest),
	}}}

	res, err := NewSyncer(store, aest, nil).Sync(context.Background(), []domain.ShiftRecord{shift(2, "Emilie", "09:00")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 0, store.updated)
}

func TestSyncCollectsFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	store := &fakeStore{listErr: boom}

	res, err := NewSyncer(store, aest, nil).Sync(context.Background(), []domain.ShiftRecord{
		shift(2, "Emilie", "09:00"),
		shift(3, "Emilie", "bad"),
	})
	require.NoError(t, err)
	require.Len(t, res.Failed, 2)
	assert.True(t, errors.Is(res.Failed[0], boom))
	assert.Error(t, res.Failed[1].Err)
	assert.Equal(t, 0, res.Inserted+res.Updated)
}

func TestSyncStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeStore{}
	_, err := NewSyncer(store, aest, nil).Sync(ctx, []domain.ShiftRecord{shift(2, "Emilie", "09:00")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.days)
}
