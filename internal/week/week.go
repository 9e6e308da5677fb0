// Package week maps calendar dates to the start date of their week, which is
// the key every bucket is addressed by.
package week

import (
	"fmt"
	"strings"
	"time"

	"weekly-chronicle/internal/model"
)

// DateLayout is the wire format for week keys and date arguments.
const DateLayout = "2006-01-02"

// Indexer resolves any date to the configured start-of-week day at midnight
// UTC. Start is pure and idempotent: Start(Start(d)) == Start(d).
type Indexer struct {
	startDay time.Weekday
}

// NewIndexer returns an indexer anchored on the given weekday.
func NewIndexer(startDay time.Weekday) Indexer {
	return Indexer{startDay: startDay}
}

// Default is the Monday-anchored indexer.
var Default = NewIndexer(time.Monday)

// Start returns the start-of-week date for t, truncated to midnight UTC.
func (ix Indexer) Start(t time.Time) time.Time {
	t = t.UTC()
	back := (int(t.Weekday()) - int(ix.startDay) + 7) % 7
	t = t.AddDate(0, 0, -back)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a midnight-UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, &model.ParseError{Field: "date", Value: s, Err: err}
	}
	return t, nil
}

// FormatDate renders a date in the YYYY-MM-DD key format.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseWeekday maps a configuration value like "monday" or "sunday" to a
// weekday. An empty string means Monday.
func ParseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	case "sunday":
		return time.Sunday, nil
	default:
		return time.Monday, &model.ParseError{Field: "week_start_weekday", Value: s, Err: fmt.Errorf("unknown weekday")}
	}
}
