package planner

import (
	"testing"
	"time"

	"studio-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recurringRequest() Request {
	return Request{
		Frequency:              models.FrequencyRecurring,
		StartDate:              "2024-01-01", // Monday
		Weekdays:               []string{"mon", "wed"},
		Count:                  4,
		DefaultStartTime:       "10:00",
		DefaultDurationMinutes: 60,
		DefaultInstructorID:    "instr-1",
	}
}

func TestBuildDrafts_Recurring(t *testing.T) {
	drafts, err := BuildDrafts(recurringRequest(), 10)
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	assert.Equal(t, "2024-01-01", drafts[0].Date)
	assert.Equal(t, "2024-01-03", drafts[1].Date)
	assert.Equal(t, "2024-01-08", drafts[2].Date)
	assert.Equal(t, "2024-01-10", drafts[3].Date)

	for _, d := range drafts {
		assert.Equal(t, "10:00", d.StartTime)
		assert.Equal(t, 60, d.DurationMinutes)
		assert.Equal(t, "instr-1", d.InstructorID)
	}
}

func TestBuildDrafts_ClampsToPendingQuota(t *testing.T) {
	req := recurringRequest()
	req.Count = 5

	drafts, err := BuildDrafts(req, 2)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "2024-01-01", drafts[0].Date)
	assert.Equal(t, "2024-01-03", drafts[1].Date)
}

func TestBuildDrafts_NoPendingQuota(t *testing.T) {
	drafts, err := BuildDrafts(recurringRequest(), 0)
	require.NoError(t, err)
	assert.Nil(t, drafts)
}

func TestBuildDrafts_Once(t *testing.T) {
	req := Request{
		Frequency:              models.FrequencyOnce,
		DefaultStartTime:       "18:00",
		DefaultDurationMinutes: 90,
		DefaultInstructorID:    "instr-1",
		Occurrences: []Occurrence{
			{Index: 0, Date: "2024-02-14", Edited: EditedFields{Date: true}},
		},
	}

	drafts, err := BuildDrafts(req, 3)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "2024-02-14", drafts[0].Date)
	assert.Equal(t, "18:00", drafts[0].StartTime)
}

func TestBuildDrafts_StickyEditsSurviveDefaultChange(t *testing.T) {
	req := recurringRequest()
	req.Occurrences = []Occurrence{
		{Index: 1, StartTime: "16:30", Edited: EditedFields{StartTime: true}},
		{Index: 2, InstructorID: "sub-7", DurationMinutes: 45, Edited: EditedFields{Instructor: true, Duration: true}},
	}

	// The user changed the default after making per-occurrence edits.
	req.DefaultStartTime = "11:00"

	drafts, err := BuildDrafts(req, 10)
	require.NoError(t, err)
	require.Len(t, drafts, 4)

	assert.Equal(t, "11:00", drafts[0].StartTime)
	assert.Equal(t, "16:30", drafts[1].StartTime)
	assert.Equal(t, "11:00", drafts[2].StartTime)
	assert.Equal(t, "sub-7", drafts[2].InstructorID)
	assert.Equal(t, 45, drafts[2].DurationMinutes)
	assert.Equal(t, "instr-1", drafts[3].InstructorID)
}

func TestBuildDrafts_EditIndexOutOfRangeIgnored(t *testing.T) {
	req := recurringRequest()
	req.Occurrences = []Occurrence{
		{Index: 40, StartTime: "23:00", Edited: EditedFields{StartTime: true}},
		{Index: -1, StartTime: "23:00", Edited: EditedFields{StartTime: true}},
	}

	drafts, err := BuildDrafts(req, 10)
	require.NoError(t, err)
	for _, d := range drafts {
		assert.Equal(t, "10:00", d.StartTime)
	}
}

func TestBuildDrafts_BadInput(t *testing.T) {
	req := recurringRequest()
	req.StartDate = "01/01/2024"
	_, err := BuildDrafts(req, 10)
	assert.Error(t, err)

	req = recurringRequest()
	req.Weekdays = []string{"someday"}
	_, err = BuildDrafts(req, 10)
	assert.Error(t, err)

	req = recurringRequest()
	req.Frequency = "WEEKLY"
	_, err = BuildDrafts(req, 10)
	assert.Error(t, err)
}

func testCourse() *models.Course {
	roomID := "room-1"
	return &models.Course{
		ID:                     "course-1",
		SessionCount:           8,
		SessionDurationMinutes: 60,
		LeadInstructorID:       "instr-1",
		DefaultRoomID:          &roomID,
	}
}

func validDraft() Draft {
	return Draft{Date: "2024-01-01", StartTime: "10:00", DurationMinutes: 60, InstructorID: "instr-1"}
}

func TestValidate_Order(t *testing.T) {
	t.Run("room not assigned wins over everything", func(t *testing.T) {
		course := testCourse()
		course.DefaultRoomID = nil
		course.ScheduledSessions = 8

		err := Validate(course, []Draft{{}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, RoomNotAssigned, vErr.Kind)
		assert.Equal(t, -1, vErr.Index)
	})

	t.Run("fully scheduled before draft checks", func(t *testing.T) {
		course := testCourse()
		course.ScheduledSessions = 8

		err := Validate(course, []Draft{{}})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, CourseFullyScheduled, vErr.Kind)
	})

	t.Run("incomplete draft before duration", func(t *testing.T) {
		d := validDraft()
		d.StartTime = ""
		d.DurationMinutes = 0

		err := Validate(testCourse(), []Draft{validDraft(), d})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, IncompleteDraft, vErr.Kind)
		assert.Equal(t, 1, vErr.Index)
	})

	t.Run("invalid duration before missing instructor", func(t *testing.T) {
		d := validDraft()
		d.DurationMinutes = 0
		d.InstructorID = ""

		err := Validate(testCourse(), []Draft{d})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, InvalidDuration, vErr.Kind)
	})

	t.Run("missing instructor", func(t *testing.T) {
		d := validDraft()
		d.InstructorID = ""

		err := Validate(testCourse(), []Draft{d})

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, MissingInstructor, vErr.Kind)
	})

	t.Run("quota exceeded checked last", func(t *testing.T) {
		course := testCourse()
		course.ScheduledSessions = 6 // 2 pending

		drafts := []Draft{validDraft(), validDraft(), validDraft()}

		err := Validate(course, drafts)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, QuotaExceeded, vErr.Kind)
		assert.Equal(t, -1, vErr.Index)
	})

	t.Run("valid drafts pass", func(t *testing.T) {
		assert.NoError(t, Validate(testCourse(), []Draft{validDraft(), validDraft()}))
	})
}

func TestMaterialize(t *testing.T) {
	start, end, err := Materialize(validDraft(), time.UTC)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, time.January, 1, 11, 0, 0, 0, time.UTC), end)

	d := validDraft()
	d.StartTime = "25:00"
	_, _, err = Materialize(d, time.UTC)
	assert.Error(t, err)

	d = validDraft()
	d.Date = "not-a-date"
	_, _, err = Materialize(d, time.UTC)
	assert.Error(t, err)
}
