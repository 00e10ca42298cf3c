package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"studio-service/api"
	"studio-service/internal/blackout"
	"studio-service/internal/lock"
	"studio-service/internal/models"
	"studio-service/internal/planner"
	"studio-service/internal/schedule"
	"studio-service/internal/storage"
	"studio-service/internal/token"
	"studio-service/pkg/response"

	qrcode "github.com/skip2/go-qrcode"
)

type Service struct {
	store       Store
	locker      lock.Locker
	tokens      *token.Issuer
	checkinBase string
}

func NewService(store Store, locker lock.Locker, tokens *token.Issuer, checkinBase string) *Service {
	return &Service{store: store, locker: locker, tokens: tokens, checkinBase: checkinBase}
}

type Store interface {
	BeginTx(ctx context.Context) (storage.Tx, error)

	// Availability Patterns
	CreateAvailabilityPattern(ctx context.Context, p *models.AvailabilityPattern) (string, error)
	GetAvailabilityPattern(ctx context.Context, id string) (*models.AvailabilityPattern, error)
	GetAvailabilityPatternByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) (*models.AvailabilityPattern, error)
	UpdateAvailabilityPattern(ctx context.Context, p *models.AvailabilityPattern) error
	DeleteAvailabilityPattern(ctx context.Context, id string) error

	// Override Weeks
	CreateOverrideWeek(ctx context.Context, w *models.OverrideWeek) (string, error)
	GetOverrideWeek(ctx context.Context, id string) (*models.OverrideWeek, error)
	ListOverrideWeeksByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) ([]*models.OverrideWeek, error)
	UpdateOverrideWeek(ctx context.Context, w *models.OverrideWeek) error
	DeleteOverrideWeek(ctx context.Context, id string) error

	// Date Blocks
	CreateDateBlock(ctx context.Context, b *models.DateBlock) (string, error)
	GetDateBlock(ctx context.Context, id string) (*models.DateBlock, error)
	ListDateBlocks(ctx context.Context, roomID *string, from, to *time.Time) ([]*models.DateBlock, error)
	UpdateDateBlock(ctx context.Context, b *models.DateBlock) error
	DeleteDateBlock(ctx context.Context, id string) error

	// Recurring Blocks
	CreateRecurringBlock(ctx context.Context, b *models.RecurringBlock) (string, error)
	GetRecurringBlock(ctx context.Context, id string) (*models.RecurringBlock, error)
	ListRecurringBlocksByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) ([]*models.RecurringBlock, error)
	DeleteRecurringBlock(ctx context.Context, id string) error

	// Rooms
	CreateRoom(ctx context.Context, r *models.Room) (string, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)

	// Courses
	CreateCourse(ctx context.Context, c *models.Course) (string, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)
	UpdateCourse(ctx context.Context, c *models.Course) error
	AddScheduledSessions(ctx context.Context, tx storage.Tx, courseID string, n int) error

	// Sessions
	CreateSession(ctx context.Context, tx storage.Tx, s *models.ScheduledSession) (string, error)
	GetSession(ctx context.Context, id string) (*models.ScheduledSession, error)

	// Bookings
	CreateBooking(ctx context.Context, tx storage.Tx, b *models.Booking) (string, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetActiveBooking(ctx context.Context, sessionID, clientID string) (*models.Booking, error)
	CountActiveBookings(ctx context.Context, sessionID string) (int, error)
	UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error

	// Attendance
	UpsertAttendanceToken(ctx context.Context, t *models.AttendanceToken) error
	GetAttendanceToken(ctx context.Context, tokenValue string) (*models.AttendanceToken, error)
	CreateAttendance(ctx context.Context, a *models.Attendance) (string, error)
	GetAttendance(ctx context.Context, id string) (*models.Attendance, error)
}

// Availability Patterns

func (s *Service) CreateAvailabilityPattern(ctx context.Context, req *api.AvailabilityPatternRequest) (*api.AvailabilityPatternResponse, error) {
	const op = "service.CreateAvailabilityPattern"

	kind, err := parseOwnerKind(req.OwnerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pattern, err := patternFromAPI(req.Days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateAvailabilityPattern(ctx, &models.AvailabilityPattern{
		OwnerKind: kind,
		OwnerID:   req.OwnerID,
		Pattern:   schedule.Normalize(pattern),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityPattern(ctx, id)
}

func (s *Service) GetAvailabilityPattern(ctx context.Context, id string) (*api.AvailabilityPatternResponse, error) {
	const op = "service.GetAvailabilityPattern"

	p, err := s.store.GetAvailabilityPattern(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.AvailabilityPatternResponse{
		ID:        p.ID,
		OwnerKind: string(p.OwnerKind),
		OwnerID:   p.OwnerID,
		Days:      patternToAPI(p.Pattern),
	}, nil
}

func (s *Service) UpdateAvailabilityPattern(ctx context.Context, id string, req *api.AvailabilityPatternRequest) (*api.AvailabilityPatternResponse, error) {
	const op = "service.UpdateAvailabilityPattern"

	p, err := s.store.GetAvailabilityPattern(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kind, err := parseOwnerKind(req.OwnerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pattern, err := patternFromAPI(req.Days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.OwnerKind = kind
	p.OwnerID = req.OwnerID
	p.Pattern = schedule.Normalize(pattern)

	if err := s.store.UpdateAvailabilityPattern(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetAvailabilityPattern(ctx, id)
}

func (s *Service) DeleteAvailabilityPattern(ctx context.Context, id string) error {
	const op = "service.DeleteAvailabilityPattern"

	if err := s.store.DeleteAvailabilityPattern(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Override Weeks

func (s *Service) CreateOverrideWeek(ctx context.Context, req *api.OverrideWeekRequest) (*api.OverrideWeekResponse, error) {
	const op = "service.CreateOverrideWeek"

	kind, err := parseOwnerKind(req.OwnerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	weekDate, err := time.Parse("2006-01-02", req.WeekDate)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid week_date: %w", op, err)
	}

	pattern, err := patternFromAPI(req.Days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.store.CreateOverrideWeek(ctx, &models.OverrideWeek{
		OwnerKind:     kind,
		OwnerID:       req.OwnerID,
		WeekKey:       schedule.WeekKey(weekDate),
		WeekStartDate: schedule.WeekStart(weekDate),
		Label:         req.Label,
		Notes:         req.Notes,
		Pattern:       schedule.Normalize(pattern),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetOverrideWeek(ctx, id)
}

func (s *Service) GetOverrideWeek(ctx context.Context, id string) (*api.OverrideWeekResponse, error) {
	const op = "service.GetOverrideWeek"

	w, err := s.store.GetOverrideWeek(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return overrideWeekToAPI(w), nil
}

func (s *Service) ListOverrideWeeks(ctx context.Context, ownerKind, ownerID string) ([]*api.OverrideWeekResponse, error) {
	const op = "service.ListOverrideWeeks"

	kind, err := parseOwnerKind(ownerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	weeks, err := s.store.ListOverrideWeeksByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.OverrideWeekResponse, 0, len(weeks))
	for _, w := range weeks {
		result = append(result, overrideWeekToAPI(w))
	}

	return result, nil
}

func (s *Service) UpdateOverrideWeek(ctx context.Context, id string, req *api.OverrideWeekRequest) (*api.OverrideWeekResponse, error) {
	const op = "service.UpdateOverrideWeek"

	w, err := s.store.GetOverrideWeek(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kind, err := parseOwnerKind(req.OwnerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	weekDate, err := time.Parse("2006-01-02", req.WeekDate)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid week_date: %w", op, err)
	}

	pattern, err := patternFromAPI(req.Days)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.OwnerKind = kind
	w.OwnerID = req.OwnerID
	w.WeekKey = schedule.WeekKey(weekDate)
	w.WeekStartDate = schedule.WeekStart(weekDate)
	w.Label = req.Label
	w.Notes = req.Notes
	w.Pattern = schedule.Normalize(pattern)

	if err := s.store.UpdateOverrideWeek(ctx, w); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetOverrideWeek(ctx, id)
}

func (s *Service) DeleteOverrideWeek(ctx context.Context, id string) error {
	const op = "service.DeleteOverrideWeek"

	if err := s.store.DeleteOverrideWeek(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Date Blocks

func (s *Service) CreateDateBlock(ctx context.Context, req *api.DateBlockRequest) (*api.DateBlockResponse, error) {
	const op = "service.CreateDateBlock"

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start: %w", op, err)
	}

	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end: %w", op, err)
	}

	if !end.After(start) {
		return nil, fmt.Errorf("%s: %w: end is not after start", op, response.ErrBadRequest)
	}

	id, err := s.store.CreateDateBlock(ctx, &models.DateBlock{
		RoomID:   req.RoomID,
		StartsAt: start,
		EndsAt:   end,
		Reason:   req.Reason,
		Note:     req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetDateBlock(ctx, id)
}

func (s *Service) GetDateBlock(ctx context.Context, id string) (*api.DateBlockResponse, error) {
	const op = "service.GetDateBlock"

	b, err := s.store.GetDateBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return dateBlockToAPI(b), nil
}

func (s *Service) ListDateBlocks(ctx context.Context, roomID *string, from, to *time.Time) ([]*api.DateBlockResponse, error) {
	const op = "service.ListDateBlocks"

	blocks, err := s.store.ListDateBlocks(ctx, roomID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.DateBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		result = append(result, dateBlockToAPI(b))
	}

	return result, nil
}

func (s *Service) UpdateDateBlock(ctx context.Context, id string, req *api.DateBlockRequest) (*api.DateBlockResponse, error) {
	const op = "service.UpdateDateBlock"

	b, err := s.store.GetDateBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start: %w", op, err)
	}

	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end: %w", op, err)
	}

	b.RoomID = req.RoomID
	b.StartsAt = start
	b.EndsAt = end
	b.Reason = req.Reason
	b.Note = req.Note

	if err := s.store.UpdateDateBlock(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetDateBlock(ctx, id)
}

func (s *Service) DeleteDateBlock(ctx context.Context, id string) error {
	const op = "service.DeleteDateBlock"

	if err := s.store.DeleteDateBlock(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Recurring Blocks

func (s *Service) CreateRecurringBlock(ctx context.Context, req *api.RecurringBlockRequest) (*api.RecurringBlockResponse, error) {
	const op = "service.CreateRecurringBlock"

	kind, err := parseOwnerKind(req.OwnerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	weekday, found := schedule.ParseWeekday(req.Weekday)
	if !found {
		return nil, fmt.Errorf("%s: %w: invalid weekday %q", op, response.ErrBadRequest, req.Weekday)
	}

	startMin, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	endMin, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if endMin <= startMin {
		return nil, fmt.Errorf("%s: %w: end_time is not after start_time", op, response.ErrBadRequest)
	}

	id, err := s.store.CreateRecurringBlock(ctx, &models.RecurringBlock{
		OwnerKind: kind,
		OwnerID:   req.OwnerID,
		Weekday:   int(weekday),
		StartMin:  startMin,
		EndMin:    endMin,
		Reason:    req.Reason,
		Note:      req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetRecurringBlock(ctx, id)
}

func (s *Service) GetRecurringBlock(ctx context.Context, id string) (*api.RecurringBlockResponse, error) {
	const op = "service.GetRecurringBlock"

	b, err := s.store.GetRecurringBlock(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return recurringBlockToAPI(b), nil
}

func (s *Service) ListRecurringBlocks(ctx context.Context, ownerKind, ownerID string) ([]*api.RecurringBlockResponse, error) {
	const op = "service.ListRecurringBlocks"

	kind, err := parseOwnerKind(ownerKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	blocks, err := s.store.ListRecurringBlocksByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.RecurringBlockResponse, 0, len(blocks))
	for _, b := range blocks {
		result = append(result, recurringBlockToAPI(b))
	}

	return result, nil
}

func (s *Service) DeleteRecurringBlock(ctx context.Context, id string) error {
	const op = "service.DeleteRecurringBlock"

	if err := s.store.DeleteRecurringBlock(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Rooms

func (s *Service) CreateRoom(ctx context.Context, req *api.RoomRequest) (*api.RoomResponse, error) {
	const op = "service.CreateRoom"

	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%s: %w: capacity must be positive", op, response.ErrBadRequest)
	}

	id, err := s.store.CreateRoom(ctx, &models.Room{Name: req.Name, Capacity: req.Capacity})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetRoom(ctx, id)
}

func (s *Service) GetRoom(ctx context.Context, id string) (*api.RoomResponse, error) {
	const op = "service.GetRoom"

	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.RoomResponse{ID: room.ID, Name: room.Name, Capacity: room.Capacity}, nil
}

// Courses

func (s *Service) CreateCourse(ctx context.Context, req *api.CourseRequest) (*api.CourseResponse, error) {
	const op = "service.CreateCourse"

	if req.SessionCount <= 0 {
		return nil, fmt.Errorf("%s: %w: session_count must be positive", op, response.ErrBadRequest)
	}

	id, err := s.store.CreateCourse(ctx, &models.Course{
		Name:                   req.Name,
		SessionCount:           req.SessionCount,
		SessionDurationMinutes: req.SessionDurationMinutes,
		LeadInstructorID:       req.LeadInstructorID,
		DefaultRoomID:          req.DefaultRoomID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetCourse(ctx, id)
}

func (s *Service) GetCourse(ctx context.Context, id string) (*api.CourseResponse, error) {
	const op = "service.GetCourse"

	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return courseToAPI(course), nil
}

// UpdateCourse enforces the immutability guard: a course with at least one
// scheduled session can no longer be edited.
func (s *Service) UpdateCourse(ctx context.Context, id string, req *api.CourseRequest) (*api.CourseResponse, error) {
	const op = "service.UpdateCourse"

	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if course.ScheduledSessions > 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrCourseLocked)
	}

	course.Name = req.Name
	course.SessionCount = req.SessionCount
	course.SessionDurationMinutes = req.SessionDurationMinutes
	course.LeadInstructorID = req.LeadInstructorID
	course.DefaultRoomID = req.DefaultRoomID

	if err := s.store.UpdateCourse(ctx, course); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetCourse(ctx, id)
}

// Planning

// PlanSessions is the pure preview: it expands the request into drafts
// without touching storage beyond reading the course. Identical requests
// yield identical drafts, so the UI can re-render freely.
func (s *Service) PlanSessions(ctx context.Context, req *api.PlanRequest) (*api.PlanResponse, error) {
	const op = "service.PlanSessions"

	course, err := s.store.GetCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	drafts, err := planner.BuildDrafts(plannerRequest(req, course), course.PendingSessions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]api.DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		result = append(result, api.DraftResponse(d))
	}

	return &api.PlanResponse{
		CourseID:        course.ID,
		PendingSessions: course.PendingSessions(),
		Drafts:          result,
	}, nil
}

// ScheduleSessions turns drafts into persisted sessions. The course lock
// plus a single transaction serialize the pending-quota check against the
// inserts; blackout checking is mandatory before anything is written.
func (s *Service) ScheduleSessions(ctx context.Context, req *api.PlanRequest) (*api.ScheduleResponse, error) {
	const op = "service.ScheduleSessions"

	lockKey := lock.CourseKey(req.CourseID)

	locked, err := s.locker.Lock(ctx, lockKey, lock.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	course, err := s.store.GetCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	drafts, err := planner.BuildDrafts(plannerRequest(req, course), course.PendingSessions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := planner.Validate(course, drafts); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	roomID := *course.DefaultRoomID

	sessions := make([]*models.ScheduledSession, 0, len(drafts))
	for i, d := range drafts {
		start, end, err := planner.Materialize(d, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%s: draft %d: %w", op, i, err)
		}

		candidate := blackout.Candidate{
			RoomID:       roomID,
			InstructorID: d.InstructorID,
			Start:        start,
			End:          end,
		}

		rules, err := s.loadBlackoutRules(ctx, roomID, d.InstructorID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if res := blackout.Check(candidate, rules); !res.OK {
			return nil, fmt.Errorf("%s: draft %d: %s: %w", op, i, res.Reason, response.ErrBlackoutConflict)
		}

		sessions = append(sessions, &models.ScheduledSession{
			CourseID:     course.ID,
			Start:        start,
			End:          end,
			InstructorID: d.InstructorID,
			RoomID:       roomID,
		})
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	created := make([]api.SessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		id, err := s.store.CreateSession(ctx, tx, sess)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("%s: create session: %w", op, err)
		}
		sess.ID = id
		created = append(created, sessionToAPI(sess))
	}

	// Additive on purpose: concurrent planning for other courses must not
	// observe or recompute this course's counter.
	if err := s.store.AddScheduledSessions(ctx, tx, course.ID, len(sessions)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: update counter: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &api.ScheduleResponse{
		CourseID:          course.ID,
		ScheduledSessions: course.ScheduledSessions + len(sessions),
		Sessions:          created,
	}, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*api.SessionResponse, error) {
	const op = "service.GetSession"

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := sessionToAPI(sess)
	return &resp, nil
}

// Availability check

func (s *Service) CheckAvailability(ctx context.Context, req *api.AvailabilityCheckRequest) (*api.AvailabilityCheckResponse, error) {
	const op = "service.CheckAvailability"

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start: %w", op, err)
	}

	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end: %w", op, err)
	}

	rules, err := s.loadBlackoutRules(ctx, req.RoomID, req.InstructorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := blackout.Check(blackout.Candidate{
		RoomID:       req.RoomID,
		InstructorID: req.InstructorID,
		Start:        start,
		End:          end,
	}, rules)

	return &api.AvailabilityCheckResponse{
		Allowed: res.OK,
		Reason:  string(res.Reason),
	}, nil
}

func (s *Service) loadBlackoutRules(ctx context.Context, roomID, instructorID string) (blackout.Rules, error) {
	var rules blackout.Rules

	dateBlocks, err := s.store.ListDateBlocks(ctx, &roomID, nil, nil)
	if err != nil {
		return rules, err
	}
	for _, b := range dateBlocks {
		rules.RoomDateBlocks = append(rules.RoomDateBlocks, *b)
	}

	roomRecurring, err := s.store.ListRecurringBlocksByOwner(ctx, models.OwnerRoom, roomID)
	if err != nil {
		return rules, err
	}
	for _, b := range roomRecurring {
		rules.RoomRecurring = append(rules.RoomRecurring, *b)
	}

	instrRecurring, err := s.store.ListRecurringBlocksByOwner(ctx, models.OwnerInstructor, instructorID)
	if err != nil {
		return rules, err
	}
	for _, b := range instrRecurring {
		rules.InstructorRecurring = append(rules.InstructorRecurring, *b)
	}

	pattern, err := s.store.GetAvailabilityPatternByOwner(ctx, models.OwnerInstructor, instructorID)
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return rules, err
	}
	if pattern != nil {
		rules.InstructorPattern = &pattern.Pattern
	}

	overrides, err := s.store.ListOverrideWeeksByOwner(ctx, models.OwnerInstructor, instructorID)
	if err != nil {
		return rules, err
	}
	if len(overrides) > 0 {
		rules.InstructorOverrides = make(map[string]models.WeeklyPattern, len(overrides))
		for _, w := range overrides {
			rules.InstructorOverrides[w.WeekKey] = w.Pattern
		}
	}

	return rules, nil
}

// Bookings

// CreateBooking is the capacity guard. The session lock plus the transaction
// make the count-then-insert sequence safe against concurrent attempts, and
// an existing non-cancelled booking for the same client is returned as-is so
// retries stay idempotent.
func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	lockKey := lock.SessionKey(req.SessionID)

	locked, err := s.locker.Lock(ctx, lockKey, lock.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	sess, err := s.store.GetSession(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.store.GetActiveBooking(ctx, req.SessionID, req.ClientID)
	if err != nil && !errors.Is(err, response.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return bookingToAPI(existing), nil
	}

	room, err := s.store.GetRoom(ctx, sess.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%s: get room: %w", op, err)
	}

	occupied, err := s.store.CountActiveBookings(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if occupied >= room.Capacity {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSessionFull)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	bookingID, err := s.store.CreateBooking(ctx, tx, &models.Booking{
		SessionID: req.SessionID,
		ClientID:  req.ClientID,
		Status:    models.BookingConfirmed,
	})
	if err != nil {
		_ = tx.Rollback()
		// A racing insert that slipped past the lock trips the partial
		// unique index; resolve it the idempotent way.
		if errors.Is(err, response.ErrConflict) {
			if existing, getErr := s.store.GetActiveBooking(ctx, req.SessionID, req.ClientID); getErr == nil {
				return bookingToAPI(existing), nil
			}
		}
		return nil, fmt.Errorf("%s: create booking: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return s.GetBooking(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.GetBooking"

	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookingToAPI(booking), nil
}

// CancelBooking flips status instead of deleting; history stays queryable
// and the seat frees up for the capacity count.
func (s *Service) CancelBooking(ctx context.Context, id string) (*api.BookingResponse, error) {
	const op = "service.CancelBooking"

	if _, err := s.store.GetBooking(ctx, id); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.UpdateBookingStatus(ctx, id, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetBooking(ctx, id)
}

// Attendance

// GenerateAttendanceToken mints the session's live token, replacing any
// previous one, and renders the check-in URL as a QR PNG for the caller.
func (s *Service) GenerateAttendanceToken(ctx context.Context, sessionID string) (*api.AttendanceTokenResponse, error) {
	const op = "service.GenerateAttendanceToken"

	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tok, err := s.tokens.Issue(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.UpsertAttendanceToken(ctx, tok); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s?token=%s", s.checkinBase, tok.Token)
	png, err := qrcode.Encode(url, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("%s: encode qr: %w", op, err)
	}

	return &api.AttendanceTokenResponse{
		SessionID: tok.SessionID,
		Token:     tok.Token,
		ExpiresAt: tok.ExpiresAt,
		QRPNG:     base64.StdEncoding.EncodeToString(png),
	}, nil
}

// Checkin verifies a token lazily against the clock and marks the client's
// booking attended. A token replaced by a newer generation simply no longer
// resolves, which is the overwrite semantics working as intended.
func (s *Service) Checkin(ctx context.Context, req *api.CheckinRequest) (*api.CheckinResponse, error) {
	const op = "service.Checkin"

	tok, err := s.store.GetAttendanceToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !tok.Valid(time.Now()) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrTokenExpired)
	}

	booking, err := s.store.GetActiveBooking(ctx, tok.SessionID, req.ClientID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	attendanceID, err := s.store.CreateAttendance(ctx, &models.Attendance{
		BookingID: booking.ID,
		Status:    models.AttendancePresent,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.CheckinResponse{
		SessionID:    tok.SessionID,
		BookingID:    booking.ID,
		AttendanceID: attendanceID,
		Status:       string(models.AttendancePresent),
	}, nil
}

// Converters

func parseOwnerKind(s string) (models.OwnerKind, error) {
	switch models.OwnerKind(s) {
	case models.OwnerInstructor:
		return models.OwnerInstructor, nil
	case models.OwnerRoom:
		return models.OwnerRoom, nil
	default:
		return "", fmt.Errorf("%w: invalid owner_kind %q", response.ErrBadRequest, s)
	}
}

func plannerRequest(req *api.PlanRequest, course *models.Course) planner.Request {
	duration := req.DurationMinutes
	if duration == 0 {
		duration = course.SessionDurationMinutes
	}

	instructor := req.InstructorID
	if instructor == "" {
		instructor = course.LeadInstructorID
	}

	occurrences := make([]planner.Occurrence, 0, len(req.Occurrences))
	for _, occ := range req.Occurrences {
		occurrences = append(occurrences, planner.Occurrence{
			Index:           occ.Index,
			Date:            occ.Date,
			StartTime:       occ.StartTime,
			DurationMinutes: occ.DurationMinutes,
			InstructorID:    occ.InstructorID,
			Edited: planner.EditedFields{
				Date:       occ.Edited.Date,
				StartTime:  occ.Edited.StartTime,
				Duration:   occ.Edited.Duration,
				Instructor: occ.Edited.Instructor,
			},
		})
	}

	return planner.Request{
		Frequency:              models.Frequency(req.Frequency),
		StartDate:              req.StartDate,
		Weekdays:               req.Weekdays,
		Count:                  req.Count,
		DefaultStartTime:       req.StartTime,
		DefaultDurationMinutes: duration,
		DefaultInstructorID:    instructor,
		Occurrences:            occurrences,
	}
}

func patternFromAPI(days map[string][]api.TimeRange) (models.WeeklyPattern, error) {
	var pattern models.WeeklyPattern

	for day, ranges := range days {
		wd, found := schedule.ParseWeekday(day)
		if !found {
			return pattern, fmt.Errorf("%w: invalid weekday %q", response.ErrBadRequest, day)
		}

		for _, r := range ranges {
			startMin, err := schedule.ParseClock(r.Start)
			if err != nil {
				return pattern, fmt.Errorf("%w: %v", response.ErrBadRequest, err)
			}
			endMin, err := schedule.ParseClock(r.End)
			if err != nil {
				return pattern, fmt.Errorf("%w: %v", response.ErrBadRequest, err)
			}

			pattern.Days[int(wd)] = append(pattern.Days[int(wd)], models.TimeRange{
				StartMin: startMin,
				EndMin:   endMin,
			})
		}
	}

	return pattern, nil
}

func patternToAPI(pattern models.WeeklyPattern) map[string][]api.TimeRange {
	days := make(map[string][]api.TimeRange)

	for day, ranges := range pattern.Days {
		if len(ranges) == 0 {
			continue
		}

		out := make([]api.TimeRange, 0, len(ranges))
		for _, r := range ranges {
			out = append(out, api.TimeRange{
				Start: schedule.FormatClock(r.StartMin),
				End:   schedule.FormatClock(r.EndMin),
			})
		}

		days[fmt.Sprintf("%d", day)] = out
	}

	return days
}

func overrideWeekToAPI(w *models.OverrideWeek) *api.OverrideWeekResponse {
	return &api.OverrideWeekResponse{
		ID:            w.ID,
		OwnerKind:     string(w.OwnerKind),
		OwnerID:       w.OwnerID,
		WeekKey:       w.WeekKey,
		WeekStartDate: w.WeekStartDate.Format("2006-01-02"),
		Label:         w.Label,
		Notes:         w.Notes,
		Days:          patternToAPI(w.Pattern),
	}
}

func dateBlockToAPI(b *models.DateBlock) *api.DateBlockResponse {
	return &api.DateBlockResponse{
		ID:     b.ID,
		RoomID: b.RoomID,
		Start:  b.StartsAt,
		End:    b.EndsAt,
		Reason: b.Reason,
		Note:   b.Note,
	}
}

func recurringBlockToAPI(b *models.RecurringBlock) *api.RecurringBlockResponse {
	return &api.RecurringBlockResponse{
		ID:        b.ID,
		OwnerKind: string(b.OwnerKind),
		OwnerID:   b.OwnerID,
		Weekday:   b.Weekday,
		StartTime: schedule.FormatClock(b.StartMin),
		EndTime:   schedule.FormatClock(b.EndMin),
		Reason:    b.Reason,
		Note:      b.Note,
	}
}

func courseToAPI(c *models.Course) *api.CourseResponse {
	return &api.CourseResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		SessionCount:           c.SessionCount,
		SessionDurationMinutes: c.SessionDurationMinutes,
		LeadInstructorID:       c.LeadInstructorID,
		DefaultRoomID:          c.DefaultRoomID,
		ScheduledSessions:      c.ScheduledSessions,
		PendingSessions:        c.PendingSessions(),
	}
}

func sessionToAPI(s *models.ScheduledSession) api.SessionResponse {
	return api.SessionResponse{
		ID:           s.ID,
		CourseID:     s.CourseID,
		Start:        s.Start,
		End:          s.End,
		InstructorID: s.InstructorID,
		RoomID:       s.RoomID,
	}
}

func bookingToAPI(b *models.Booking) *api.BookingResponse {
	return &api.BookingResponse{
		ID:        b.ID,
		SessionID: b.SessionID,
		ClientID:  b.ClientID,
		Status:    string(b.Status),
	}
}
