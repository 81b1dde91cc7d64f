// Package calendar reads and edits events of the configured calendar.
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDisabled = errors.New("calendar is not configured")
	ErrNotFound = errors.New("event not found")
)

// DonePrefix marks an event as completed in its summary.
const DonePrefix = "✅"

// Event is the subset of a calendar event the service reads. All-day events
// carry Date and a zero Start.
type Event struct {
	ID      string    `json:"id"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Date    string    `json:"date,omitempty"`
}

func (e Event) AllDay() bool { return e.Start.IsZero() }

// Done reports whether the summary carries the completion mark.
func (e Event) Done() bool {
	return len(e.Summary) >= len(DonePrefix) && e.Summary[:len(DonePrefix)] == DonePrefix
}

// NewEvent describes an event to insert. A zero Start creates an all-day
// event on Date.
type NewEvent struct {
	Summary string
	Date    string
	Start   time.Time
	End     time.Time
}

// EventPatch changes summary and/or timing of an event. Nil fields are kept.
type EventPatch struct {
	Summary *string
	Date    *string
	Start   *time.Time
	End     *time.Time
}

type Client interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	InsertEvent(ctx context.Context, ev NewEvent) (*Event, error)
	PatchEvent(ctx context.Context, id string, p EventPatch) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// DayBounds returns the UTC instants of local midnight of the calendar day
// containing nowUTC+offset and of the following midnight.
func DayBounds(nowUTC time.Time, tzOffsetMinutes int) (time.Time, time.Time) {
	off := time.Duration(tzOffsetMinutes) * time.Minute
	local := nowUTC.UTC().Add(off)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	start := midnight.Add(-off)
	return start, start.Add(24 * time.Hour)
}

// DateBounds is DayBounds for an explicit YYYY-MM-DD date.
func DateBounds(date string, tzOffsetMinutes int) (time.Time, time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := d.Add(-time.Duration(tzOffsetMinutes) * time.Minute)
	return start, start.Add(24 * time.Hour), nil
}

// Disabled is used when no credentials are configured.
type Disabled struct{}

func (Disabled) ListEvents(context.Context, time.Time, time.Time) ([]Event, error) {
	return nil, ErrDisabled
}
func (Disabled) GetEvent(context.Context, string) (*Event, error) { return nil, ErrDisabled }
func (Disabled) InsertEvent(context.Context, NewEvent) (*Event, error) {
	return nil, ErrDisabled
}
func (Disabled) PatchEvent(context.Context, string, EventPatch) (*Event, error) {
	return nil, ErrDisabled
}
func (Disabled) DeleteEvent(context.Context, string) error { return ErrDisabled }
