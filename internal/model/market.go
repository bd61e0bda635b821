package model

import (
	"encoding/json"
	"time"
)

// DateLayout is the ISO date format used for request parameters and the first CSV column.
const DateLayout = "2006-01-02"

// ErrorToken is the single field recorded for a day the endpoint reports as an error.
const ErrorToken = "error"

// DayRecord is one output row: the requested date followed by the endpoint's fields.
// Fields are passed through as decoded; numbers stay json.Number.
type DayRecord []any

// NewDayRecord prepends day to fields.
func NewDayRecord(day string, fields ...any) DayRecord {
	rec := make(DayRecord, 0, len(fields)+1)
	rec = append(rec, day)
	return append(rec, fields...)
}

// Date returns the record's date string, or "" for an empty record.
func (r DayRecord) Date() string {
	if len(r) == 0 {
		return ""
	}
	s, _ := r[0].(string)
	return s
}

// Fields returns everything after the date.
func (r DayRecord) Fields() []any {
	if len(r) < 2 {
		return nil
	}
	return r[1:]
}

// IsError reports whether the endpoint answered with the error marker for this day.
func (r DayRecord) IsError() bool {
	return len(r) == 2 && r[1] == ErrorToken
}

// FieldsJSON encodes the fields (without the date) as a JSON array.
func (r DayRecord) FieldsJSON() (string, error) {
	fields := r.Fields()
	if fields == nil {
		fields = []any{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Dataset holds every record of a run in date order.
type Dataset []DayRecord

// ErrorCount returns the number of error-marker rows.
func (d Dataset) ErrorCount() int {
	n := 0
	for _, r := range d {
		if r.IsError() {
			n++
		}
	}
	return n
}

// RunSummary describes a finished or halted pull.
type RunSummary struct {
	RunID        string
	Start        time.Time
	Stop         time.Time
	BusinessDays int
	Records      int
	ErrorRows    int
	Elapsed      time.Duration
	Output       string
	Written      bool
	HaltReason   string
}
