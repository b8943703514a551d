package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/calendarsync"
	apierrors "shiftcal/internal/errors"
	"shiftcal/internal/fetch"
	"shiftcal/internal/shared/testutil"
	"shiftcal/internal/shiftscan"
	api "shiftcal/pkg/contracts/api/v1"
)

var sydney = time.FixedZone("AEST", 10*60*60)

type fakeDownloader struct {
	dl    *fetch.Download
	err   error
	calls int
	urls  []string
}

func (f *fakeDownloader) Download(ctx context.Context, rawURL string) (*fetch.Download, error) {
	f.calls++
	f.urls = append(f.urls, rawURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.dl, nil
}

type memoryStore struct {
	mu     sync.Mutex
	events []calendarsync.RemoteEvent
}

func (m *memoryStore) ListDay(_ context.Context, start, end time.Time) ([]calendarsync.RemoteEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []calendarsync.RemoteEvent
	for _, ev := range m.events {
		if ev.Start.Before(end) && ev.End.After(start) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *memoryStore) Insert(_ context.Context, ev calendarsync.RemoteEvent) (calendarsync.RemoteEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = fmt.Sprintf("ev%d", len(m.events)+1)
	m.events = append(m.events, ev)
	return ev, nil
}

func (m *memoryStore) Update(_ context.Context, ev calendarsync.RemoteEvent) (calendarsync.RemoteEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.events {
		if m.events[i].ID == ev.ID {
			m.events[i] = ev
			return ev, nil
		}
	}
	return ev, errors.New("event not found")
}

func rosterDownload(t *testing.T) *fetch.Download {
	return &fetch.Download{
		Data: testutil.RosterXLSX(t,
			testutil.WeekRoster("0104-0704"),
			testutil.FixtureSheet{Name: "Notes", Rows: [][]any{{"call the manager"}}},
		),
		Filename:    "roster.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
}

func newTestService(t *testing.T, dl Downloader, stores StoreFactory) (*ShiftService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)

	engine, err := shiftscan.NewEngine(shiftscan.DefaultParams())
	require.NoError(t, err)

	svc, err := NewShiftService(ShiftServiceConfig{
		Engine:     engine,
		Downloader: dl,
		Location:   sydney,
		ProductID:  "-//shiftcal//test//EN",
		Stores:     stores,
		Clock:      func() time.Time { return time.Date(2025, time.March, 15, 9, 0, 0, 0, sydney) },
		Logger:     logger,
	})
	require.NoError(t, err)
	return svc, handler
}

func appErrorType(t *testing.T, err error) apierrors.ErrorType {
	t.Helper()
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	return appErr.Type
}

func TestNewShiftServiceRequiresDependencies(t *testing.T) {
	_, err := NewShiftService(ShiftServiceConfig{})
	assert.Error(t, err)

	engine, err := shiftscan.NewEngine(shiftscan.DefaultParams())
	require.NoError(t, err)
	_, err = NewShiftService(ShiftServiceConfig{Engine: engine})
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	dl := &fakeDownloader{dl: rosterDownload(t)}
	svc, handler := newTestService(t, dl, nil)

	ext, err := svc.Extract(context.Background(), api.ProcessRequest{
		FileURL:      "https://example.com/roster.xlsx",
		NameToSearch: " Emilie ",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/roster.xlsx"}, dl.urls)
	assert.Equal(t, "xlsx", ext.Format)
	assert.Equal(t, 2, ext.Sheets)
	assert.Equal(t, []string{"Notes"}, ext.Skipped)

	var dates []string
	for _, r := range ext.Records {
		assert.Equal(t, "Emilie", r.Employee)
		assert.Equal(t, "1/4-7/4", r.SheetTitle)
		dates = append(dates, r.Date.String())
	}
	assert.Equal(t, []string{"02/04/2025", "03/04/2025", "04/04/2025", "08/04/2025", "09/04/2025"}, dates)

	assert.True(t, handler.ContainsMessage("Roster processed"))
	assert.True(t, handler.ContainsAttr("component", "shiftscan"))
}

func TestExtractMultipleNames(t *testing.T) {
	svc, _ := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, nil)

	ext, err := svc.Extract(context.Background(), api.ProcessRequest{
		FileURL: "https://example.com/roster.xlsx",
		Names:   []string{"Jo", "Sam"},
	})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, r := range ext.Records {
		counts[r.Employee]++
	}
	assert.Equal(t, map[string]int{"Jo": 1, "Sam": 4}, counts)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name     string
		dl       *fakeDownloader
		req      api.ProcessRequest
		wantErr  error
		wantType apierrors.ErrorType
		noFetch  bool
	}{
		{
			name:     "no names",
			dl:       &fakeDownloader{},
			req:      api.ProcessRequest{FileURL: "https://example.com/r.xlsx", Names: []string{"  "}},
			wantErr:  ErrInvalidInput,
			wantType: apierrors.ErrTypeValidation,
			noFetch:  true,
		},
		{
			name:     "download failure",
			dl:       &fakeDownloader{err: fmt.Errorf("%w: status 404", fetch.ErrDownloadFailed)},
			req:      api.ProcessRequest{FileURL: "https://example.com/r.xlsx", NameToSearch: "Emilie"},
			wantErr:  ErrDownloadFailed,
			wantType: apierrors.ErrTypeNetwork,
		},
		{
			name: "unreadable workbook",
			dl: &fakeDownloader{dl: &fetch.Download{
				Data:     []byte("this is not a spreadsheet"),
				Filename: "roster.xlsx",
			}},
			req:      api.ProcessRequest{FileURL: "https://example.com/r.xlsx", NameToSearch: "Emilie"},
			wantErr:  ErrWorkbookUnreadable,
			wantType: apierrors.ErrTypeParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, tt.dl, nil)

			ext, err := svc.Extract(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, ext)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantType, appErrorType(t, err))
			if tt.noFetch {
				assert.Zero(t, tt.dl.calls)
			}
		})
	}
}

func TestExtractDownloadKeepsCause(t *testing.T) {
	svc, _ := newTestService(t, &fakeDownloader{err: fmt.Errorf("%w: status 500", fetch.ErrDownloadFailed)}, nil)

	_, err := svc.Extract(context.Background(), api.ProcessRequest{FileURL: "https://example.com/r.xlsx", NameToSearch: "Emilie"})
	assert.ErrorIs(t, err, fetch.ErrDownloadFailed)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "https://example.com/r.xlsx", appErr.Context["file_url"])
}

func TestExtractCanceled(t *testing.T) {
	svc, _ := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Extract(ctx, api.ProcessRequest{FileURL: "https://example.com/r.xlsx", NameToSearch: "Emilie"})
	assert.ErrorIs(t, err, context.Canceled)
	var appErr *apierrors.AppError
	assert.False(t, errors.As(err, &appErr), "cancellation is not an application error")
}

func TestCalendar(t *testing.T) {
	svc, _ := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, nil)

	ics, err := svc.Calendar(context.Background(), api.ProcessRequest{
		FileURL:      "https://example.com/roster.xlsx",
		NameToSearch: "Emilie",
	})
	require.NoError(t, err)

	out := string(ics)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:-//shiftcal//test//EN")
	assert.Contains(t, out, "SUMMARY:shift [Emilie]")
	assert.Contains(t, out, "SUMMARY:shift [Emilie (10:00-14:00)]")
}

func TestCalendarSync(t *testing.T) {
	store := &memoryStore{}
	var tokens []string
	factory := func(_ context.Context, token string) (calendarsync.EventStore, error) {
		tokens = append(tokens, token)
		return store, nil
	}
	svc, _ := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, factory)

	req := api.ProcessRequest{
		FileURL:      "https://example.com/roster.xlsx",
		NameToSearch: "Emilie",
		GoogleToken:  "ya29.token",
	}
	_, err := svc.Calendar(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"ya29.token"}, tokens)
	assert.Len(t, store.events, 5)

	// A second run updates in place
	_, err = svc.Calendar(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, store.events, 5)
}

func TestCalendarSyncFailureDoesNotFailRequest(t *testing.T) {
	factory := func(context.Context, string) (calendarsync.EventStore, error) {
		return nil, errors.New("token rejected")
	}
	svc, handler := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, factory)

	ics, err := svc.Calendar(context.Background(), api.ProcessRequest{
		FileURL:      "https://example.com/roster.xlsx",
		NameToSearch: "Emilie",
		GoogleToken:  "bad",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ics)
	assert.NotEmpty(t, handler.GetRecordsByLevel(slog.LevelWarn))
	assert.True(t, handler.ContainsMessage("Calendar sync skipped"))
}

func TestCalendarSyncNotConfigured(t *testing.T) {
	svc, handler := newTestService(t, &fakeDownloader{dl: rosterDownload(t)}, nil)

	_, err := svc.Calendar(context.Background(), api.ProcessRequest{
		FileURL:      "https://example.com/roster.xlsx",
		NameToSearch: "Emilie",
		GoogleToken:  "token",
	})
	require.NoError(t, err)
	assert.True(t, handler.ContainsMessage("Calendar sync requested but not configured"))
}

func TestWorkbookName(t *testing.T) {
	tests := []struct {
		name string
		dl   fetch.Download
		want string
	}{
		{"extension kept", fetch.Download{Filename: "roster.xls", ContentType: "text/plain"}, "roster.xls"},
		{"legacy content type", fetch.Download{Filename: "export", ContentType: "application/vnd.ms-excel; charset=binary"}, "export.xls"},
		{"upper case extension", fetch.Download{Filename: "ROSTER.XLSM"}, "ROSTER.XLSM"},
		{"default xlsx", fetch.Download{Filename: "export"}, "export.xlsx"},
		{"script extension legacy", fetch.Download{Filename: "export.aspx", ContentType: "application/vnd.ms-excel"}, "export.aspx.xls"},
		{"script extension xlsx", fetch.Download{Filename: "file.php", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, "file.php.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, workbookName(&tt.dl))
		})
	}
}

func TestExtractScriptURLFallsBackToContentType(t *testing.T) {
	dl := rosterDownload(t)
	dl.Filename = "export.aspx"
	svc, _ := newTestService(t, &fakeDownloader{dl: dl}, nil)

	res, err := svc.Extract(context.Background(), api.ProcessRequest{
		FileURL:      "https://example.com/export.aspx?id=7",
		NameToSearch: "Emilie",
	})
	require.NoError(t, err)
	assert.Equal(t, "xlsx", res.Format)
	assert.NotEmpty(t, res.Records)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "parsing", outcome(apierrors.NewParsingError("bad", nil)))
	assert.Equal(t, "network", outcome(fmt.Errorf("wrapped: %w", apierrors.NewNetworkError("down", nil))))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
