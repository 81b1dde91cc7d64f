// Package logicalday maps instants to the calendar dates rows are keyed by.
//
// A logical day runs from 04:00 local time to 04:00 the next morning, so a
// journal entry written at 02:00 still belongs to the previous date. Local
// time is derived from a fixed minute offset; no timezone database is used.
package logicalday

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DateFormat is the layout of every date key (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// StartHour is the local hour at which a new logical day begins.
	StartHour = 4

	// DefaultOffsetLimit bounds accepted offsets to ±14h.
	DefaultOffsetLimit = 14 * 60
)

// LocalTime shifts nowUTC by the offset. The result is still expressed in UTC
// so that its wall-clock fields read as the user's local time.
func LocalTime(nowUTC time.Time, tzOffsetMinutes int) time.Time {
	return nowUTC.UTC().Add(time.Duration(tzOffsetMinutes) * time.Minute)
}

// Date returns the logical date of nowUTC for a user at tzOffsetMinutes.
func Date(nowUTC time.Time, tzOffsetMinutes int) string {
	logical := LocalTime(nowUTC, tzOffsetMinutes).Add(-StartHour * time.Hour)
	return logical.Format(DateFormat)
}

// CalendarDate returns the plain local calendar date (midnight cutover).
func CalendarDate(nowUTC time.Time, tzOffsetMinutes int) string {
	return LocalTime(nowUTC, tzOffsetMinutes).Format(DateFormat)
}

// Parse parses a YYYY-MM-DD date as midnight UTC.
func Parse(date string) (time.Time, error) {
	return time.Parse(DateFormat, date)
}

// Valid reports whether date is a real YYYY-MM-DD calendar date.
func Valid(date string) bool {
	if len(date) != len(DateFormat) {
		return false
	}
	_, err := Parse(date)
	return err == nil
}

// AddDays steps date by n calendar days. An unparsable date is returned as is.
func AddDays(date string, n int) string {
	t, err := Parse(date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateFormat)
}

// Year returns the year component of a date key, or 0 when malformed.
func Year(date string) int {
	t, err := Parse(date)
	if err != nil {
		return 0
	}
	return t.Year()
}

// ClampOffset converts a raw offset value into minutes. Anything that is not a
// finite number within ±limit degrades to 0 (UTC) instead of failing.
func ClampOffset(raw string, limit int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if math.Abs(f) > float64(limit) {
		return 0
	}
	return int(math.Trunc(f))
}
