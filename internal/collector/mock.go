package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"VixPull/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Cookies Cookies
	// Days overrides the answer for specific days: []any fields, model.ErrorToken, or an error.
	Days  map[string]any
	Delay time.Duration

	CookieCalls int
	Requested   []string
	SeenCookies []Cookies
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCookies(_ context.Context) (Cookies, error) {
	m.CookieCalls++
	return m.Cookies, nil
}

func (m *MockFetcher) FetchDay(ctx context.Context, day string, cookies Cookies) (model.DayRecord, error) {
	m.Requested = append(m.Requested, day)
	m.SeenCookies = append(m.SeenCookies, cookies)
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	switch v := m.Days[day].(type) {
	case error:
		return nil, v
	case string:
		if v == model.ErrorToken {
			return model.NewDayRecord(day, model.ErrorToken), nil
		}
		return nil, fmt.Errorf("mock: unsupported override %q", v)
	case []any:
		return model.NewDayRecord(day, v...), nil
	case nil:
		return model.NewDayRecord(day, generateMockCurve(day)...), nil
	default:
		return nil, fmt.Errorf("mock: unsupported override %T", v)
	}
}

// generateMockCurve produces a deterministic contango curve of eight monthly futures.
func generateMockCurve(day string) []any {
	t, err := time.Parse(model.DateLayout, day)
	base := 15.0
	if err == nil {
		base += float64(t.YearDay()%20) * 0.25
	}
	fields := make([]any, 0, 9)
	for i := 0; i < 8; i++ {
		p := base * (1 + float64(i)*0.02)
		fields = append(fields, json.Number(fmt.Sprintf("%.2f", p)))
	}
	return append(fields, "contango")
}
