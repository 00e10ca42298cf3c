package schedule

import "time"

// maxWalk bounds the day-by-day walk so degenerate inputs still terminate.
const maxWalk = 2000

// RecurringDates expands a start date plus a set of weekdays into the first
// `count` matching calendar dates, walking forward one day at a time from
// startDate inclusive. The result is a pure function of its inputs: the
// caller relies on identical output across re-renders and re-submits.
//
// Empty weekdays or a non-positive count yield an empty list, not an error;
// "no drafts" is a normal state for the caller.
func RecurringDates(startDate time.Time, weekdays map[time.Weekday]bool, count int) []time.Time {
	if count <= 0 || len(weekdays) == 0 {
		return nil
	}

	loc := startDate.Location()
	day := TruncateToDate(startDate, loc)

	dates := make([]time.Time, 0, count)
	for i := 0; i < maxWalk && len(dates) < count; i++ {
		if weekdays[day.Weekday()] {
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}

	return dates
}
