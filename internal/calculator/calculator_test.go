package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestCalculateSMA(t *testing.T) {
	avg, err := CalculateSMA([]float64{100, 1, 2, 3}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, avg, 1e-9)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestTrailingMean(t *testing.T) {
	assert.Equal(t, 0.0, TrailingMean(nil, 40))
	assert.InDelta(t, 1.5, TrailingMean([]float64{1, 2}, 40), 1e-9)
	assert.InDelta(t, 4.0, TrailingMean([]float64{10, 10, 3, 5}, 2), 1e-9)
}

func TestNextBusinessDay(t *testing.T) {
	tests := []struct {
		from, want string
	}{
		{"2023-01-02", "2023-01-03"}, // Mon -> Tue
		{"2023-01-06", "2023-01-09"}, // Fri -> Mon
		{"2023-01-07", "2023-01-09"}, // Sat -> Mon
		{"2023-01-08", "2023-01-09"}, // Sun -> Mon
	}
	for _, tt := range tests {
		t.Run(tt.from, func(t *testing.T) {
			assert.Equal(t, day(t, tt.want), NextBusinessDay(day(t, tt.from)))
		})
	}
}

func TestCountVisitedDays(t *testing.T) {
	assert.Equal(t, 5, CountVisitedDays(day(t, "2023-01-02"), day(t, "2023-01-09")))
	assert.Equal(t, 0, CountVisitedDays(day(t, "2023-01-09"), day(t, "2023-01-09")))
	assert.Equal(t, 10, CountVisitedDays(day(t, "2023-01-02"), day(t, "2023-01-14")))
	// a weekend start is visited once before skipping
	assert.Equal(t, 2, CountVisitedDays(day(t, "2023-01-07"), day(t, "2023-01-10")))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 7, DaysBetween(day(t, "2023-01-02"), day(t, "2023-01-09")))
	assert.Equal(t, 0, DaysBetween(day(t, "2023-01-09"), day(t, "2023-01-09")))
}

func TestEstimateCompletion(t *testing.T) {
	now := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC)
	got := EstimateCompletion(now, 1.5, 100)
	assert.Equal(t, now.Add(150*time.Second), got)
}
