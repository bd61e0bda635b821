package recorder

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"VixPull/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder_RecordDay(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "days.db"))
	require.NoError(t, err)
	defer rec.Close()

	now := time.Date(2023, 1, 2, 10, 0, 0, 0, time.UTC)
	entries := []*DayEntry{
		{RunID: "run-a", Record: model.NewDayRecord("2023-01-02", json.Number("20.1"), "contango"), Duration: 250 * time.Millisecond, FetchedAt: now},
		{RunID: "run-a", Record: model.NewDayRecord("2023-01-03", model.ErrorToken), Duration: time.Second, FetchedAt: now},
		{RunID: "run-b", Record: model.NewDayRecord("2023-01-02"), FetchedAt: now},
	}
	for _, e := range entries {
		require.NoError(t, rec.RecordDay(e))
	}

	n, err := rec.CountDays("run-a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var fields string
	var isError bool
	err = rec.db.QueryRow(`SELECT fields, is_error FROM day_records WHERE run_id = ? AND day = ?`, "run-a", "2023-01-02").Scan(&fields, &isError)
	require.NoError(t, err)
	assert.Equal(t, `[20.1,"contango"]`, fields)
	assert.False(t, isError)

	err = rec.db.QueryRow(`SELECT fields, is_error FROM day_records WHERE day = ? AND run_id = ?`, "2023-01-03", "run-a").Scan(&fields, &isError)
	require.NoError(t, err)
	assert.Equal(t, `["error"]`, fields)
	assert.True(t, isError)

	err = rec.db.QueryRow(`SELECT fields FROM day_records WHERE run_id = ?`, "run-b").Scan(&fields)
	require.NoError(t, err)
	assert.Equal(t, `[]`, fields)
}

func TestSQLiteRecorder_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "days.db")
	rec, err := NewSQLiteRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.RecordDay(&DayEntry{RunID: "r", Record: model.NewDayRecord("2023-01-02", model.ErrorToken)}))
	require.NoError(t, rec.Close())

	rec, err = NewSQLiteRecorder(path)
	require.NoError(t, err)
	defer rec.Close()
	n, err := rec.CountDays("r")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordDay(&DayEntry{}))
	assert.NoError(t, r.Close())
}
