// Package digest decides when a user's morning digest is due and renders it
// from the day's calendar events.
package digest

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultTime is the last-resort digest time when both the user's value and
// the configured default are malformed.
const DefaultTime = "09:00"

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ValidTime reports whether s is a strict HH:mm value.
func ValidTime(s string) bool {
	return clockRe.MatchString(s)
}

func parseClock(s string) (Clock, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return Clock{}, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return Clock{Hour: h, Minute: min}, true
}

// ParseTime parses raw as HH:mm, falling back to fallback and then to 09:00.
func ParseTime(raw, fallback string) Clock {
	if c, ok := parseClock(raw); ok {
		return c
	}
	if c, ok := parseClock(fallback); ok {
		return c
	}
	c, _ := parseClock(DefaultTime)
	return c
}

// Decision is the outcome of matching one polling tick against a digest time.
// Fire is hour-granular; MatchedExactly only tells whether the tick also
// landed within tolerance of the configured minute.
type Decision struct {
	Fire           bool
	MatchedExactly bool
	Target         Clock
}

// Match decides whether a tick at localHour:localMinute should send the digest.
func Match(localHour, localMinute int, digestTime, fallback string, toleranceMinutes int) Decision {
	target := ParseTime(digestTime, fallback)
	delta := localMinute - target.Minute
	if delta < 0 {
		delta = -delta
	}
	return Decision{
		Fire:           localHour == target.Hour,
		MatchedExactly: delta <= toleranceMinutes,
		Target:         target,
	}
}
