package blackout

import (
	"testing"
	"time"

	"studio-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func candidate(start, end time.Time) Candidate {
	return Candidate{RoomID: "room-1", InstructorID: "instr-1", Start: start, End: end}
}

func at(y int, m time.Month, d, hour, min int) time.Time {
	return time.Date(y, m, d, hour, min, 0, 0, time.UTC)
}

func TestCheck_RoomDateBlocks(t *testing.T) {
	rules := Rules{
		RoomDateBlocks: []models.DateBlock{{
			RoomID:   "room-1",
			StartsAt: at(2024, time.January, 5, 9, 0),
			EndsAt:   at(2024, time.January, 5, 12, 0),
			Reason:   "maintenance",
		}},
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		ok    bool
	}{
		{name: "fully inside block", start: at(2024, time.January, 5, 10, 0), end: at(2024, time.January, 5, 11, 0)},
		{name: "overlaps block start", start: at(2024, time.January, 5, 8, 0), end: at(2024, time.January, 5, 9, 30)},
		{name: "overlaps block end", start: at(2024, time.January, 5, 11, 30), end: at(2024, time.January, 5, 13, 0)},
		{name: "ends exactly at block start", start: at(2024, time.January, 5, 8, 0), end: at(2024, time.January, 5, 9, 0), ok: true},
		{name: "starts exactly at block end", start: at(2024, time.January, 5, 12, 0), end: at(2024, time.January, 5, 13, 0), ok: true},
		{name: "different day", start: at(2024, time.January, 6, 10, 0), end: at(2024, time.January, 6, 11, 0), ok: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Check(candidate(tc.start, tc.end), rules)
			assert.Equal(t, tc.ok, res.OK)
			if !tc.ok {
				assert.Equal(t, RoomDateBlocked, res.Reason)
			}
		})
	}
}

func TestCheck_RoomRecurringBlocks(t *testing.T) {
	// Room cleaning every Monday 14:00-16:00.
	rules := Rules{
		RoomRecurring: []models.RecurringBlock{{
			OwnerKind: models.OwnerRoom,
			OwnerID:   "room-1",
			Weekday:   1,
			StartMin:  840,
			EndMin:    960,
		}},
	}

	// 2024-01-01 is a Monday.
	res := Check(candidate(at(2024, time.January, 1, 15, 0), at(2024, time.January, 1, 16, 0)), rules)
	assert.False(t, res.OK)
	assert.Equal(t, RoomRecurringBlocked, res.Reason)

	res = Check(candidate(at(2024, time.January, 1, 9, 0), at(2024, time.January, 1, 10, 0)), rules)
	assert.True(t, res.OK)

	// Same clock time on a Tuesday is fine.
	res = Check(candidate(at(2024, time.January, 2, 15, 0), at(2024, time.January, 2, 16, 0)), rules)
	assert.True(t, res.OK)
}

func TestCheck_InstructorRecurringBlocks(t *testing.T) {
	rules := Rules{
		InstructorRecurring: []models.RecurringBlock{{
			OwnerKind: models.OwnerInstructor,
			OwnerID:   "instr-1",
			Weekday:   3,
			StartMin:  540,
			EndMin:    720,
		}},
	}

	// 2024-01-03 is a Wednesday.
	res := Check(candidate(at(2024, time.January, 3, 10, 0), at(2024, time.January, 3, 11, 0)), rules)
	assert.False(t, res.OK)
	assert.Equal(t, InstructorUnavailable, res.Reason)
}

func TestCheck_InstructorPattern(t *testing.T) {
	var pattern models.WeeklyPattern
	pattern.Days[1] = []models.TimeRange{{StartMin: 540, EndMin: 720}} // Monday 09:00-12:00

	rules := Rules{InstructorPattern: &pattern}

	t.Run("inside declared range", func(t *testing.T) {
		res := Check(candidate(at(2024, time.January, 1, 9, 0), at(2024, time.January, 1, 10, 0)), rules)
		assert.True(t, res.OK)
	})

	t.Run("sticking out of the range", func(t *testing.T) {
		res := Check(candidate(at(2024, time.January, 1, 11, 0), at(2024, time.January, 1, 13, 0)), rules)
		assert.False(t, res.OK)
		assert.Equal(t, InstructorUnavailable, res.Reason)
	})

	t.Run("day with no ranges", func(t *testing.T) {
		res := Check(candidate(at(2024, time.January, 2, 9, 0), at(2024, time.January, 2, 10, 0)), rules)
		assert.False(t, res.OK)
	})

	t.Run("nil pattern means always available", func(t *testing.T) {
		res := Check(candidate(at(2024, time.January, 2, 9, 0), at(2024, time.January, 2, 10, 0)), Rules{})
		assert.True(t, res.OK)
	})
}

func TestCheck_OverrideWeekReplacesPattern(t *testing.T) {
	var pattern models.WeeklyPattern
	pattern.Days[1] = []models.TimeRange{{StartMin: 480, EndMin: 720}} // Monday 08:00-12:00

	// Vacation week: no Monday availability at all in 2024-W01.
	var vacation models.WeeklyPattern

	rules := Rules{
		InstructorPattern:   &pattern,
		InstructorOverrides: map[string]models.WeeklyPattern{"2024-W01": vacation},
	}

	// Monday of the override week is rejected even though the default
	// pattern would allow it.
	res := Check(candidate(at(2024, time.January, 1, 8, 30), at(2024, time.January, 1, 9, 30)), rules)
	assert.False(t, res.OK)
	assert.Equal(t, InstructorUnavailable, res.Reason)

	// The following Monday is back on the default pattern.
	res = Check(candidate(at(2024, time.January, 8, 8, 30), at(2024, time.January, 8, 9, 30)), rules)
	assert.True(t, res.OK)
}

func TestCheck_RuleOrder(t *testing.T) {
	// A candidate violating both a room block and the instructor pattern
	// reports the room block.
	rules := Rules{
		RoomDateBlocks: []models.DateBlock{{
			RoomID:   "room-1",
			StartsAt: at(2024, time.January, 1, 0, 0),
			EndsAt:   at(2024, time.January, 2, 0, 0),
		}},
		InstructorPattern: &models.WeeklyPattern{},
	}

	res := Check(candidate(at(2024, time.January, 1, 10, 0), at(2024, time.January, 1, 11, 0)), rules)
	assert.False(t, res.OK)
	assert.Equal(t, RoomDateBlocked, res.Reason)
}
