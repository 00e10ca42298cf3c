package schedule

import (
	"fmt"
	"sort"
	"time"

	"studio-service/internal/models"
)

// Normalize sorts each day's ranges by start time and drops empty ones.
// The store does not guarantee ordering, and the blackout resolver assumes it.
func Normalize(p models.WeeklyPattern) models.WeeklyPattern {
	var out models.WeeklyPattern

	for day, ranges := range p.Days {
		kept := make([]models.TimeRange, 0, len(ranges))
		for _, r := range ranges {
			if r.EndMin > r.StartMin {
				kept = append(kept, r)
			}
		}

		sort.Slice(kept, func(i, j int) bool {
			return kept[i].StartMin < kept[j].StartMin
		})

		out.Days[day] = kept
	}

	return out
}

// WeekKey returns the ISO week identifier for a date, e.g. "2024-W01".
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart returns the Monday of the date's ISO week, at midnight.
func WeekStart(t time.Time) time.Time {
	t = TruncateToDate(t, t.Location())

	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}

	return t.AddDate(0, 0, -offset)
}
