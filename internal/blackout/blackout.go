package blackout

import (
	"time"

	"studio-service/internal/models"
	"studio-service/internal/schedule"
)

type Reason string

const (
	RoomDateBlocked       Reason = "ROOM_DATE_BLOCKED"
	RoomRecurringBlocked  Reason = "ROOM_RECURRING_BLOCKED"
	InstructorUnavailable Reason = "INSTRUCTOR_UNAVAILABLE"
)

// Candidate is one proposed session occurrence.
type Candidate struct {
	RoomID       string
	InstructorID string
	Start        time.Time
	End          time.Time
}

// Rules holds everything known about the candidate's room and instructor.
// The service loads these from storage; the resolver itself never touches I/O.
type Rules struct {
	RoomDateBlocks      []models.DateBlock
	RoomRecurring       []models.RecurringBlock
	InstructorRecurring []models.RecurringBlock

	// InstructorPattern is nil when the instructor declared no availability,
	// which the resolver treats as available at any time. Overrides replace
	// the pattern wholesale for their ISO week.
	InstructorPattern   *models.WeeklyPattern
	InstructorOverrides map[string]models.WeeklyPattern
}

type Result struct {
	OK     bool
	Reason Reason
}

func ok() Result { return Result{OK: true} }

func fail(r Reason) Result { return Result{Reason: r} }

// Check decides whether the candidate may be scheduled. Blocks are exclusion
// lists; the instructor pattern is an inclusion list. The first violated rule
// wins: room date blocks, then room recurring blocks, then instructor
// recurring blocks, then instructor availability.
func Check(c Candidate, rules Rules) Result {
	for _, b := range rules.RoomDateBlocks {
		if overlaps(c.Start, c.End, b.StartsAt, b.EndsAt) {
			return fail(RoomDateBlocked)
		}
	}

	if hitRecurring(c, rules.RoomRecurring) {
		return fail(RoomRecurringBlocked)
	}

	if hitRecurring(c, rules.InstructorRecurring) {
		return fail(InstructorUnavailable)
	}

	if !instructorAvailable(c, rules) {
		return fail(InstructorUnavailable)
	}

	return ok()
}

// overlaps is the half-open interval test.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

func hitRecurring(c Candidate, blocks []models.RecurringBlock) bool {
	weekday := int(c.Start.Weekday())
	startMin, endMin := minutesOfDay(c.Start), minutesOfDay(c.End)

	for _, b := range blocks {
		if b.Weekday != weekday {
			continue
		}
		if startMin < b.EndMin && endMin > b.StartMin {
			return true
		}
	}

	return false
}

func instructorAvailable(c Candidate, rules Rules) bool {
	pattern := rules.InstructorPattern

	if override, found := rules.InstructorOverrides[schedule.WeekKey(c.Start)]; found {
		pattern = &override
	}

	if pattern == nil {
		return true
	}

	startMin, endMin := minutesOfDay(c.Start), minutesOfDay(c.End)

	// Availability is an inclusion list: the candidate must fit entirely
	// inside one declared range.
	for _, r := range pattern.Days[int(c.Start.Weekday())] {
		if startMin >= r.StartMin && endMin <= r.EndMin {
			return true
		}
	}

	return false
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
