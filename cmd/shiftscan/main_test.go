package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftcal/internal/shared/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SHIFTCAL_CALENDAR_TIME_ZONE", "UTC")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScanJSON(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.WeekRoster("0104-0704"))

	out, _, err := execute(t, "scan", path, "--name", "Sam", "--format", "json", "--reference", "2025-03-15")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Equal(t, "Sam", r["employee"])
		assert.Equal(t, "1/4-7/4", r["sheet"])
	}
}

func TestScanInclusivePastDropsReferenceDay(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.WeekRoster("0104-0704"))

	count := func(extra ...string) []map[string]interface{} {
		args := append([]string{"scan", path, "--name", "Sam", "--format", "json", "--reference", "2025-04-02"}, extra...)
		out, _, err := execute(t, args...)
		require.NoError(t, err)
		var records []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &records))
		return records
	}

	strict := count()
	require.Len(t, strict, 4)
	assert.Equal(t, "02/04/2025", strict[0]["date"])

	inclusive := count("--inclusive-past")
	require.Len(t, inclusive, 3)
	for _, r := range inclusive {
		assert.NotEqual(t, "02/04/2025", r["date"])
	}
}

func TestScanIgnoresTimeFormattedHeaderCell(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.FixtureSheet{
		Name: "0104-0704",
		Rows: [][]any{
			{0.375},
			{nil, nil, nil, nil, nil, "2nd April", "3rd April"},
			{nil, nil, nil, nil, "09:00-17:00", "Emilie"},
		},
		NumFmts: map[string]int{"A1": 20},
	})

	out, _, err := execute(t, "scan", path, "--name", "Emilie", "--format", "json", "--reference", "2025-03-15")
	require.NoError(t, err)

	var records []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "02/04/2025", records[0]["date"])
}

func TestScanICSToFile(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.WeekRoster("0104-0704"))
	output := filepath.Join(t.TempDir(), "shifts.ics")

	out, _, err := execute(t, "scan", path, "-n", "Jo", "-n", "Emilie", "-o", output, "--reference", "2025-03-15")
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	ics := string(content)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Equal(t, 6, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestScanCSV(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.WeekRoster("0104-0704"))

	out, _, err := execute(t, "scan", path, "--name", "Jo", "--format", "csv", "--reference", "2025-03-15")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "sheet,date,"))
	assert.Contains(t, lines[1], "02/04/2025")
}

func TestScanErrors(t *testing.T) {
	path := testutil.WriteRosterXLSX(t, "roster.xlsx", testutil.WeekRoster("0104-0704"))
	notes := filepath.Join(t.TempDir(), "roster.txt")
	require.NoError(t, os.WriteFile(notes, []byte("Sam 07:00-15:00"), 0644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing name", []string{"scan", path}, "required flag"},
		{"missing file", []string{"scan", "--name", "Sam"}, "accepts 1 arg"},
		{"bad format", []string{"scan", path, "--name", "Sam", "--format", "pdf"}, "unknown export format"},
		{"bad reference", []string{"scan", path, "--name", "Sam", "--reference", "15/03/2025"}, "invalid reference date"},
		{"bad strategy", []string{"scan", path, "--name", "Sam", "--strategy", "random"}, "strategy"},
		{"unreadable file", []string{"scan", filepath.Join(t.TempDir(), "none.xlsx"), "--name", "Sam"}, "read roster"},
		{"not a workbook", []string{"scan", notes, "--name", "Sam"}, "not a roster workbook"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "0.3.0")
}
