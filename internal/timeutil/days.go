// Package timeutil holds the calendar-day arithmetic shared by the stores and
// the freshness and proximity engines.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// DayDifference returns the signed number of calendar days from reference's
// date to target's date. Time of day is ignored: both values are truncated to
// midnight in their own location before subtracting, so the result equals the
// ceiling of the millisecond span divided by 86,400,000 and is unaffected by
// daylight-saving transitions. Dates centuries apart do not overflow.
func DayDifference(target, reference time.Time) int {
	return int((civil(target).Unix() - civil(reference).Unix()) / secondsPerDay)
}

// DaysUntil is DayDifference against the current clock.
func DaysUntil(target time.Time) int {
	return DayDifference(target, time.Now())
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays returns midnight of the day n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, 0, n)
}

// AddMonths returns midnight of the day n months after t.
func AddMonths(t time.Time, n int) time.Time {
	return StartOfDay(t).AddDate(0, n, 0)
}

func SameDay(a, b time.Time) bool {
	return DayDifference(a, b) == 0
}

func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
