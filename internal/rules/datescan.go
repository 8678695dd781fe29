package rules

import "time"

// dateOnly normalizes to a UTC calendar date so day stepping and night
// arithmetic never see wall-clock or zone offsets.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// nights is the number of calendar nights between two dates.
func nights(from, to time.Time) int {
	return int(dateOnly(to).Sub(dateOnly(from)) / (24 * time.Hour))
}

// nightsFromToday counts nights between the engine clock's date and d.
func (e *Engine) nightsFromToday(d time.Time) int {
	return nights(e.now(), d)
}

// eachNight visits every date in [from, to), one day at a time, and stops on
// the first date for which fn reports true. The first date is always visited,
// the end date never: callers guarantee from < to.
func eachNight(from, to time.Time, fn func(d time.Time) bool) bool {
	d := dateOnly(from)
	end := dateOnly(to)
	for {
		if fn(d) {
			return true
		}
		d = d.AddDate(0, 0, 1)
		if !d.Before(end) {
			return false
		}
	}
}

// eachDayInclusive visits every date in [from, to], in increasing order.
func eachDayInclusive(from, to time.Time, fn func(d time.Time)) {
	d := dateOnly(from)
	end := dateOnly(to)
	for {
		fn(d)
		d = d.AddDate(0, 0, 1)
		if d.After(end) {
			return
		}
	}
}
