package recorder

import (
	"time"

	"VixPull/internal/model"
)

// DayEntry is one fetched day together with how it was fetched.
type DayEntry struct {
	RunID     string
	Record    model.DayRecord
	Duration  time.Duration
	FetchedAt time.Time
}

// Recorder mirrors fetched days as they arrive, so a halted run still leaves its rows behind.
type Recorder interface {
	RecordDay(entry *DayEntry) error
	Close() error
}
