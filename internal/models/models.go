package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

type OwnerKind string

const (
	OwnerInstructor OwnerKind = "INSTRUCTOR"
	OwnerRoom       OwnerKind = "ROOM"
)

type Frequency string

const (
	FrequencyRecurring Frequency = "RECURRING"
	FrequencyOnce      Frequency = "ONCE"
)

// TimeRange is a wall-clock interval within a single day, minutes from midnight.
type TimeRange struct {
	StartMin int `db:"start_min" json:"start_min"`
	EndMin   int `db:"end_min" json:"end_min"`
}

// WeeklyPattern maps weekdays (0 = Sunday) to availability ranges. A day with
// no ranges is fully unavailable.
type WeeklyPattern struct {
	Days [7][]TimeRange `json:"days"`
}

type AvailabilityPattern struct {
	ID        string    `db:"id"`
	OwnerKind OwnerKind `db:"owner_kind"`
	OwnerID   string    `db:"owner_id"`
	Pattern   WeeklyPattern
}

// OverrideWeek fully replaces the owner's default pattern for one ISO week.
type OverrideWeek struct {
	ID            string    `db:"id"`
	OwnerKind     OwnerKind `db:"owner_kind"`
	OwnerID       string    `db:"owner_id"`
	WeekKey       string    `db:"week_key"`
	WeekStartDate time.Time `db:"week_start_date"`
	Label         string    `db:"label"`
	Notes         string    `db:"notes"`
	Pattern       WeeklyPattern
}

type RecurringBlock struct {
	ID        string    `db:"id"`
	OwnerKind OwnerKind `db:"owner_kind"`
	OwnerID   string    `db:"owner_id"`
	Weekday   int       `db:"weekday"`
	StartMin  int       `db:"start_min"`
	EndMin    int       `db:"end_min"`
	Reason    string    `db:"reason"`
	Note      string    `db:"note"`
}

type DateBlock struct {
	ID       string    `db:"id"`
	RoomID   string    `db:"room_id"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
	Reason   string    `db:"reason"`
	Note     string    `db:"note"`
}

type Room struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Capacity int    `db:"capacity"`
}

type Course struct {
	ID                     string  `db:"id"`
	Name                   string  `db:"name"`
	SessionCount           int     `db:"session_count"`
	SessionDurationMinutes int     `db:"session_duration_minutes"`
	LeadInstructorID       string  `db:"lead_instructor_id"`
	DefaultRoomID          *string `db:"default_room_id"`
	ScheduledSessions      int     `db:"scheduled_sessions"`
}

// PendingSessions is the remaining quota the planner may still produce.
func (c *Course) PendingSessions() int {
	if n := c.SessionCount - c.ScheduledSessions; n > 0 {
		return n
	}
	return 0
}

type ScheduledSession struct {
	ID           string    `db:"id"`
	CourseID     string    `db:"course_id"`
	Start        time.Time `db:"start_time"`
	End          time.Time `db:"end_time"`
	InstructorID string    `db:"instructor_id"`
	RoomID       string    `db:"room_id"`
}

type Booking struct {
	ID        string        `db:"id"`
	SessionID string        `db:"session_id"`
	ClientID  string        `db:"client_id"`
	Status    BookingStatus `db:"status"`
}

// AttendanceToken is the single live check-in credential for a session.
// Regeneration overwrites it; validity is computed lazily from ExpiresAt.
type AttendanceToken struct {
	SessionID string    `db:"session_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
}

func (t *AttendanceToken) Valid(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
)

type Attendance struct {
	ID        string           `db:"id"`
	BookingID string           `db:"booking_id"`
	Status    AttendanceStatus `db:"status"`
	Notes     string           `db:"notes"`
}
