// Package uktime handles conversion between UTC instants and UK civil time.
//
// All price slot boundaries are stored and exchanged in UTC. Anything that
// buckets slots into calendar days, or that is shown to a user, must go
// through this package first: during BST a UTC midnight boundary sits at
// 01:00 local, so grouping by UTC dates puts late-evening slots on the
// wrong day.
package uktime

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// UK is the Europe/London location (GMT in winter, BST in summer).
var UK = mustLoadUK()

func mustLoadUK() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		panic(fmt.Sprintf("load Europe/London: %v", err))
	}
	return loc
}

// ParseError reports a timestamp that could not be parsed as ISO-8601 UTC.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid UTC timestamp %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Now returns the current time in the UK zone.
func Now() time.Time {
	return time.Now().In(UK)
}

// ParseUTC parses an ISO-8601 timestamp such as "2024-01-15T12:00:00Z"
// (an explicit offset like "+00:00" is also accepted) and returns it in UTC.
func ParseUTC(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &ParseError{Input: s, Err: fmt.Errorf("empty timestamp")}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &ParseError{Input: s, Err: err}
	}
	return t.UTC(), nil
}

// ToUK converts any instant to UK local time.
func ToUK(t time.Time) time.Time {
	return t.In(UK)
}

// FormatUTC renders an instant as an ISO-8601 UTC string with a trailing Z.
func FormatUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// DateString returns the UK-local calendar date of an instant as YYYY-MM-DD.
func DateString(t time.Time) string {
	return t.In(UK).Format("2006-01-02")
}

// FormatDate renders a UK-local date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.In(UK).Format("2006-01-02")
}

// FormatTime renders a UK-local time of day as HH:MM.
func FormatTime(t time.Time) string {
	return t.In(UK).Format("15:04")
}

// FormatShort renders a compact DD/MM HH:MM label, used for chart axes when
// a series crosses a date boundary.
func FormatShort(t time.Time) string {
	return t.In(UK).Format("02/01 15:04")
}

// FormatDateDisplay renders a UK-local date as DD/MM/YY for row display.
func FormatDateDisplay(t time.Time) string {
	return t.In(UK).Format("02/01/06")
}

// StartOfDay returns the UTC instant at which the given UK-local date begins.
func StartOfDay(date time.Time) time.Time {
	d := date.In(UK)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, UK).UTC()
}

// EndOfDayExclusive returns the UTC instant at which the UK-local day after
// the given date begins. Suitable as an exclusive period_to boundary.
func EndOfDayExclusive(date time.Time) time.Time {
	d := date.In(UK)
	return time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, UK).UTC()
}
