package domain

import (
	"strings"
	"time"
)

// Canonical layouts for the stored date and time-of-day columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// ParseDate normalizes a raw date string into canonical YYYY-MM-DD form.
// Accepted inputs: "2006-01-02" and "02/01/2006" (Brazilian day-first).
// Anything else returns ErrInvalidDate.
func ParseDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{DateLayout, "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// ParseTime normalizes a raw time-of-day string into canonical HH:MM:SS form.
// Accepted inputs: "15:04:05" and "15:04" (seconds default to zero).
// Anything else returns ErrInvalidTime.
func ParseTime(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", ErrInvalidTime
}

// FormatDate renders t as a canonical date string.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// FormatTime renders t as a canonical time-of-day string.
func FormatTime(t time.Time) string { return t.Format(TimeLayout) }
