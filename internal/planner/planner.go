package planner

import (
	"fmt"
	"time"

	"studio-service/internal/models"
	"studio-service/internal/schedule"
)

// Request is the value object the caller submits on every planning call.
// Sticky per-field edits live in Occurrences: the caller tracks which fields
// a user touched and resubmits them, so a changed default never silently
// overwrites an explicit edit.
type Request struct {
	Frequency models.Frequency

	StartDate string
	Weekdays  []string
	Count     int

	DefaultStartTime       string
	DefaultDurationMinutes int
	DefaultInstructorID    string

	Occurrences []Occurrence
}

// Occurrence carries per-draft edits keyed by position in the generated list.
type Occurrence struct {
	Index           int
	Date            string
	StartTime       string
	DurationMinutes int
	InstructorID    string
	Edited          EditedFields
}

type EditedFields struct {
	Date       bool
	StartTime  bool
	Duration   bool
	Instructor bool
}

// Draft is one not-yet-persisted candidate occurrence. Fields stay as wire
// strings until validation so incomplete user input survives a round trip.
type Draft struct {
	Date            string `json:"date"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	InstructorID    string `json:"instructor_id"`
}

type ValidationKind string

const (
	RoomNotAssigned      ValidationKind = "ROOM_NOT_ASSIGNED"
	CourseFullyScheduled ValidationKind = "COURSE_FULLY_SCHEDULED"
	IncompleteDraft      ValidationKind = "INCOMPLETE_DRAFT"
	InvalidDuration      ValidationKind = "INVALID_DURATION"
	MissingInstructor    ValidationKind = "MISSING_INSTRUCTOR"
	QuotaExceeded        ValidationKind = "QUOTA_EXCEEDED"
)

// ValidationError reports the first failed check. Index is -1 for
// course-level failures and the draft position otherwise.
type ValidationError struct {
	Kind  ValidationKind
	Index int
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("planning rejected: %s", e.Kind)
	}
	return fmt.Sprintf("planning rejected: %s (draft %d)", e.Kind, e.Index)
}

func courseErr(kind ValidationKind) *ValidationError {
	return &ValidationError{Kind: kind, Index: -1}
}

func draftErr(kind ValidationKind, index int) *ValidationError {
	return &ValidationError{Kind: kind, Index: index}
}

// BuildDrafts expands the request into drafts, clamped to the course's
// pending quota so the planner never overproduces. For a recurring request
// each generated date is seeded from the defaults and then merged with the
// caller's sticky edits; a "once" request yields exactly one draft, or none
// when the quota is exhausted.
func BuildDrafts(req Request, pendingSessions int) ([]Draft, error) {
	if pendingSessions <= 0 {
		return nil, nil
	}

	switch req.Frequency {
	case models.FrequencyOnce:
		drafts := []Draft{seedDraft(req, "")}
		applyEdits(drafts, req.Occurrences)
		return drafts, nil

	case models.FrequencyRecurring:
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start_date: %w", err)
		}

		weekdays := make(map[time.Weekday]bool, len(req.Weekdays))
		for _, d := range req.Weekdays {
			wd, found := schedule.ParseWeekday(d)
			if !found {
				return nil, fmt.Errorf("invalid weekday %q", d)
			}
			weekdays[wd] = true
		}

		count := req.Count
		if count > pendingSessions {
			count = pendingSessions
		}

		dates := schedule.RecurringDates(start, weekdays, count)

		drafts := make([]Draft, 0, len(dates))
		for _, d := range dates {
			drafts = append(drafts, seedDraft(req, d.Format("2006-01-02")))
		}

		applyEdits(drafts, req.Occurrences)
		return drafts, nil

	default:
		return nil, fmt.Errorf("invalid frequency %q", req.Frequency)
	}
}

func seedDraft(req Request, date string) Draft {
	return Draft{
		Date:            date,
		StartTime:       req.DefaultStartTime,
		DurationMinutes: req.DefaultDurationMinutes,
		InstructorID:    req.DefaultInstructorID,
	}
}

func applyEdits(drafts []Draft, occurrences []Occurrence) {
	for _, occ := range occurrences {
		if occ.Index < 0 || occ.Index >= len(drafts) {
			continue
		}

		d := &drafts[occ.Index]
		if occ.Edited.Date {
			d.Date = occ.Date
		}
		if occ.Edited.StartTime {
			d.StartTime = occ.StartTime
		}
		if occ.Edited.Duration {
			d.DurationMinutes = occ.DurationMinutes
		}
		if occ.Edited.Instructor {
			d.InstructorID = occ.InstructorID
		}
	}
}

// Validate runs the pre-submission checks in their contractual order and
// short-circuits on the first failure.
func Validate(course *models.Course, drafts []Draft) error {
	if course.DefaultRoomID == nil || *course.DefaultRoomID == "" {
		return courseErr(RoomNotAssigned)
	}

	pending := course.PendingSessions()
	if pending == 0 {
		return courseErr(CourseFullyScheduled)
	}

	for i, d := range drafts {
		if d.Date == "" || d.StartTime == "" {
			return draftErr(IncompleteDraft, i)
		}
	}

	for i, d := range drafts {
		if d.DurationMinutes <= 0 {
			return draftErr(InvalidDuration, i)
		}
	}

	for i, d := range drafts {
		if d.InstructorID == "" {
			return draftErr(MissingInstructor, i)
		}
	}

	if len(drafts) > pending {
		return courseErr(QuotaExceeded)
	}

	return nil
}

// Materialize converts a validated draft into concrete session times.
func Materialize(d Draft, loc *time.Location) (start, end time.Time, err error) {
	date, err := time.ParseInLocation("2006-01-02", d.Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date: %w", err)
	}

	startMin, err := schedule.ParseClock(d.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start = schedule.At(date, startMin, loc)
	end = start.Add(time.Duration(d.DurationMinutes) * time.Minute)

	return start, end, nil
}
