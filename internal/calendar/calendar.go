// Package calendar implements the business-day and sprint-window arithmetic
// every accountability rule is built on. All functions are pure; dates are
// normalized to midnight UTC so that window comparisons are day-granular.
package calendar

import "time"

// DateOf truncates t to midnight UTC.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether d is a weekday. Holiday calendars are not
// modeled.
func IsBusinessDay(d time.Time) bool {
	wd := d.UTC().Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// AddBusinessDays advances d by n business days, skipping weekends.
// n must be non-negative.
func AddBusinessDays(d time.Time, n int) time.Time {
	d = DateOf(d)
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if IsBusinessDay(d) {
			n--
		}
	}
	return d
}

// SprintWindow returns the inclusive [start, end] dates of a sprint.
//
//	start = workspaceStart + (sprintNumber-1)*sprintLengthDays
//	end   = start + sprintLengthDays - 1
func SprintWindow(sprintNumber int, workspaceStart time.Time, sprintLengthDays int) (time.Time, time.Time) {
	start := DateOf(workspaceStart).AddDate(0, 0, (sprintNumber-1)*sprintLengthDays)
	end := start.AddDate(0, 0, sprintLengthDays-1)
	return start, end
}

// CurrentSprintNumber returns the 1-based sprint index that today falls
// into: floor((today-workspaceStart)/sprintLengthDays) + 1.
//
// For dates before workspaceStart the result is zero or negative; callers
// treat a non-positive sprint number as "no active sprint".
func CurrentSprintNumber(today, workspaceStart time.Time, sprintLengthDays int) int {
	days := daysBetween(DateOf(workspaceStart), DateOf(today))
	return floorDiv(days, sprintLengthDays) + 1
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// floorDiv is integer division rounding toward negative infinity. Go's /
// truncates toward zero, which would put pre-start dates in sprint 1.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
