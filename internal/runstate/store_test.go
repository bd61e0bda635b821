package runstate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"VixPull/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "last_run.json")

	s, err := NewStore(path)
	require.NoError(t, err)
	_, ok := s.Get()
	assert.False(t, ok)

	summary := model.RunSummary{
		RunID:   "r1",
		Start:   time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		Stop:    time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC),
		Records: 5,
		Elapsed: 3 * time.Second,
	}
	s.Record(summary, errors.New("fetch 2023-01-04: data protection hit"))

	reloaded, err := NewStore(path)
	require.NoError(t, err)
	got, ok := reloaded.Get()
	require.True(t, ok)
	assert.Equal(t, "r1", got.Summary.RunID)
	assert.Equal(t, 5, got.Summary.Records)
	assert.Equal(t, 3*time.Second, got.Summary.Elapsed)
	assert.True(t, got.Summary.Start.Equal(summary.Start))
	assert.Equal(t, "fetch 2023-01-04: data protection hit", got.Error)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "last_run.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path)
	assert.Error(t, err)
}
