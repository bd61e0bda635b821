package collector

import (
	"context"
	"errors"

	"VixPull/internal/model"
)

// ErrProtectionHit is returned when the site answers with its anti-scraping page.
// It ends the whole run, not just the current day.
var ErrProtectionHit = errors.New("data protection hit")

// Cookies maps session cookie names to values.
type Cookies map[string]string

// Fetcher defines the interface for fetching historical term-structure data.
type Fetcher interface {
	// FetchCookies obtains the anonymous session cookies. A non-OK answer yields
	// nil cookies and a nil error.
	FetchCookies(ctx context.Context) (Cookies, error)
	// FetchDay returns the record for one YYYY-MM-DD day using the given cookies.
	FetchDay(ctx context.Context, day string, cookies Cookies) (model.DayRecord, error)
	Name() string
}
