package tsme

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	// TimeZone is the provider's home timezone. Every calendar day sent to or received from the
	// portal is a day in this zone.
	TimeZone = "Europe/Paris"

	DateLayout        = "2006-01-02"
	MeasureDateLayout = "2006-01-02 15:04:05"
)

var location = mustLoadLocation(TimeZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load location %s: %v", name, err))
	}
	return loc
}

// Location returns the provider's timezone.
func Location() *time.Location {
	return location
}

// StartOfDay returns midnight of t's calendar day in the provider's timezone.
func StartOfDay(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, location)
}

// EndOfDay returns the last nanosecond of t's calendar day in the provider's timezone.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func StartOfMonth(t time.Time) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, location)
}

// DaysAgo returns the same wall clock time n calendar days before now, in the provider's timezone.
func DaysAgo(now time.Time, n int) time.Time {
	return now.In(location).AddDate(0, 0, -n)
}

// ParseDate parses a yyyy-MM-dd date as midnight in the provider's timezone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	return t, nil
}

// NormalizeRange clamps a requested [from, to] range to what the portal can serve at time now.
//
// The latest day with data is yesterday, so to never goes past the end of yesterday. A missing
// or reversed from falls back to the first day of to's month, which keeps from <= to.
func NormalizeRange(now time.Time, from, to *time.Time) (time.Time, time.Time) {
	maxTo := EndOfDay(DaysAgo(now, 1))

	var rangeTo time.Time
	if to == nil || to.After(maxTo) {
		rangeTo = maxTo
	} else {
		rangeTo = to.In(location)
	}

	var rangeFrom time.Time
	if from == nil || from.After(rangeTo) {
		rangeFrom = StartOfMonth(rangeTo)
	} else {
		rangeFrom = from.In(location)
	}

	return rangeFrom, rangeTo
}
