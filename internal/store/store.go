// Package store persists day records, one unit of storage per calendar date.
package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/actionsum/focusday/internal/models"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Store is the day record capability. Implementations serialize Append, but
// callers are still expected to be the single writer.
type Store interface {
	// Append adds s to the end of its date's record.
	Append(ctx context.Context, s models.Session) error

	// ReadDay always returns a usable record. A missing record is empty with a
	// nil error; an unreadable one is empty with a *Error the caller may ignore.
	ReadDay(ctx context.Context, date string) (models.DayRecord, error)

	// ListDates returns record dates, most recent first.
	ListDates(ctx context.Context) ([]string, error)

	// DeleteOlderThan removes records whose date sorts before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff string) (int, error)

	Close() error
}

// ErrorRecorder is implemented by stores that keep a diagnostic error log.
type ErrorRecorder interface {
	RecordError(ctx context.Context, at time.Time, source string, err error) error
}

// ValidDate reports whether date is a real YYYY-MM-DD calendar date.
func ValidDate(date string) bool {
	if !datePattern.MatchString(date) {
		return false
	}
	_, err := time.Parse(models.DateLayout, date)
	return err == nil
}

// resolveDate returns the record date for s, defaulting to today in loc.
func resolveDate(s models.Session, now time.Time, loc *time.Location) (string, error) {
	date := s.Date
	if date == "" {
		date = models.FormatDate(now, loc)
	}
	if !ValidDate(date) {
		return "", &Error{Op: "append", Kind: KindInvalid, Date: date, Err: fmt.Errorf("malformed date")}
	}
	return date, nil
}
