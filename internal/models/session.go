package models

import "time"

// DateLayout is the fixed-width key used for day records.
const DateLayout = "2006-01-02"

// InstantLayout matches ISO-8601 UTC instants with millisecond precision.
// Instants in this layout sort lexicographically in chronological order.
const InstantLayout = "2006-01-02T15:04:05.000Z"

// Session is one contiguous attributed interval of foreground usage.
type Session struct {
	App       string  `json:"app"`
	Title     string  `json:"title"`
	Domain    *string `json:"domain,omitempty"`
	Duration  int64   `json:"duration"` // Duration in seconds
	Timestamp string  `json:"timestamp"`
	Date      string  `json:"-"` // Owning record date, filled in on read
}

// DomainLabel returns the session domain or "" when absent.
func (s Session) DomainLabel() string {
	if s.Domain == nil {
		return ""
	}
	return *s.Domain
}

// DayRecord holds all sessions closed on one calendar date.
type DayRecord struct {
	Date     string    `json:"date"`
	Sessions []Session `json:"sessions"`
}

// NewDayRecord returns an empty record for date.
func NewDayRecord(date string) DayRecord {
	return DayRecord{Date: date, Sessions: []Session{}}
}

// Progress is the live view of the session that is still open.
type Progress struct {
	App     string  `json:"app"`
	Title   string  `json:"title"`
	Domain  *string `json:"domain"`
	Elapsed int64   `json:"elapsedTime"` // Seconds since the session opened
}

// FormatInstant renders t in InstantLayout.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

// FormatDate renders the calendar date of t in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// StringPtr returns nil for "" and a pointer to s otherwise.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
