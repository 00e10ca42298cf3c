package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"studio-service/api"
	"studio-service/internal/models"
	"studio-service/internal/storage"
	"studio-service/internal/token"
	"studio-service/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx satisfies storage.Tx; the fake store applies writes immediately.
type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeLocker struct {
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Lock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key string) error {
	delete(l.held, key)
	return nil
}

type fakeStore struct {
	nextID int

	patterns        map[string]*models.AvailabilityPattern
	overrides       map[string]*models.OverrideWeek
	dateBlocks      map[string]*models.DateBlock
	recurringBlocks map[string]*models.RecurringBlock
	rooms           map[string]*models.Room
	courses         map[string]*models.Course
	sessions        map[string]*models.ScheduledSession
	bookings        map[string]*models.Booking
	tokens          map[string]*models.AttendanceToken
	attendance      map[string]*models.Attendance
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		patterns:        make(map[string]*models.AvailabilityPattern),
		overrides:       make(map[string]*models.OverrideWeek),
		dateBlocks:      make(map[string]*models.DateBlock),
		recurringBlocks: make(map[string]*models.RecurringBlock),
		rooms:           make(map[string]*models.Room),
		courses:         make(map[string]*models.Course),
		sessions:        make(map[string]*models.ScheduledSession),
		bookings:        make(map[string]*models.Booking),
		tokens:          make(map[string]*models.AttendanceToken),
		attendance:      make(map[string]*models.Attendance),
	}
}

func (f *fakeStore) newID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeStore) BeginTx(context.Context) (storage.Tx, error) { return fakeTx{}, nil }

func (f *fakeStore) CreateAvailabilityPattern(_ context.Context, p *models.AvailabilityPattern) (string, error) {
	id := f.newID()
	cp := *p
	cp.ID = id
	f.patterns[id] = &cp
	return id, nil
}

func (f *fakeStore) GetAvailabilityPattern(_ context.Context, id string) (*models.AvailabilityPattern, error) {
	p, found := f.patterns[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetAvailabilityPatternByOwner(_ context.Context, kind models.OwnerKind, ownerID string) (*models.AvailabilityPattern, error) {
	for _, p := range f.patterns {
		if p.OwnerKind == kind && p.OwnerID == ownerID {
			return p, nil
		}
	}
	return nil, response.ErrNotFound
}

func (f *fakeStore) UpdateAvailabilityPattern(_ context.Context, p *models.AvailabilityPattern) error {
	if _, found := f.patterns[p.ID]; !found {
		return response.ErrNotFound
	}
	f.patterns[p.ID] = p
	return nil
}

func (f *fakeStore) DeleteAvailabilityPattern(_ context.Context, id string) error {
	if _, found := f.patterns[id]; !found {
		return response.ErrNotFound
	}
	delete(f.patterns, id)
	return nil
}

func (f *fakeStore) CreateOverrideWeek(_ context.Context, w *models.OverrideWeek) (string, error) {
	id := f.newID()
	cp := *w
	cp.ID = id
	f.overrides[id] = &cp
	return id, nil
}

func (f *fakeStore) GetOverrideWeek(_ context.Context, id string) (*models.OverrideWeek, error) {
	w, found := f.overrides[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return w, nil
}

func (f *fakeStore) ListOverrideWeeksByOwner(_ context.Context, kind models.OwnerKind, ownerID string) ([]*models.OverrideWeek, error) {
	var out []*models.OverrideWeek
	for _, w := range f.overrides {
		if w.OwnerKind == kind && w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateOverrideWeek(_ context.Context, w *models.OverrideWeek) error {
	if _, found := f.overrides[w.ID]; !found {
		return response.ErrNotFound
	}
	f.overrides[w.ID] = w
	return nil
}

func (f *fakeStore) DeleteOverrideWeek(_ context.Context, id string) error {
	if _, found := f.overrides[id]; !found {
		return response.ErrNotFound
	}
	delete(f.overrides, id)
	return nil
}

func (f *fakeStore) CreateDateBlock(_ context.Context, b *models.DateBlock) (string, error) {
	id := f.newID()
	cp := *b
	cp.ID = id
	f.dateBlocks[id] = &cp
	return id, nil
}

func (f *fakeStore) GetDateBlock(_ context.Context, id string) (*models.DateBlock, error) {
	b, found := f.dateBlocks[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) ListDateBlocks(_ context.Context, roomID *string, from, to *time.Time) ([]*models.DateBlock, error) {
	var out []*models.DateBlock
	for _, b := range f.dateBlocks {
		if roomID != nil && b.RoomID != *roomID {
			continue
		}
		if from != nil && b.EndsAt.Before(*from) {
			continue
		}
		if to != nil && b.StartsAt.After(*to) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) UpdateDateBlock(_ context.Context, b *models.DateBlock) error {
	if _, found := f.dateBlocks[b.ID]; !found {
		return response.ErrNotFound
	}
	f.dateBlocks[b.ID] = b
	return nil
}

func (f *fakeStore) DeleteDateBlock(_ context.Context, id string) error {
	if _, found := f.dateBlocks[id]; !found {
		return response.ErrNotFound
	}
	delete(f.dateBlocks, id)
	return nil
}

func (f *fakeStore) CreateRecurringBlock(_ context.Context, b *models.RecurringBlock) (string, error) {
	id := f.newID()
	cp := *b
	cp.ID = id
	f.recurringBlocks[id] = &cp
	return id, nil
}

func (f *fakeStore) GetRecurringBlock(_ context.Context, id string) (*models.RecurringBlock, error) {
	b, found := f.recurringBlocks[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) ListRecurringBlocksByOwner(_ context.Context, kind models.OwnerKind, ownerID string) ([]*models.RecurringBlock, error) {
	var out []*models.RecurringBlock
	for _, b := range f.recurringBlocks {
		if b.OwnerKind == kind && b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteRecurringBlock(_ context.Context, id string) error {
	if _, found := f.recurringBlocks[id]; !found {
		return response.ErrNotFound
	}
	delete(f.recurringBlocks, id)
	return nil
}

func (f *fakeStore) CreateRoom(_ context.Context, r *models.Room) (string, error) {
	id := f.newID()
	cp := *r
	cp.ID = id
	f.rooms[id] = &cp
	return id, nil
}

func (f *fakeStore) GetRoom(_ context.Context, id string) (*models.Room, error) {
	r, found := f.rooms[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) CreateCourse(_ context.Context, c *models.Course) (string, error) {
	id := f.newID()
	cp := *c
	cp.ID = id
	f.courses[id] = &cp
	return id, nil
}

func (f *fakeStore) GetCourse(_ context.Context, id string) (*models.Course, error) {
	c, found := f.courses[id]
	if !found {
		return nil, response.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) UpdateCourse(_ context.Context, c *models.Course) error {
	if _, found := f.courses[c.ID]; !found {
		return response.ErrNotFound
	}
	cp := *c
	f.courses[c.ID] = &cp
	return nil
}

func (f *fakeStore) AddScheduledSessions(_ context.Context, _ storage.Tx, courseID string, n int) error {
	c, found := f.courses[courseID]
	if !found {
		return response.ErrNotFound
	}
	c.ScheduledSessions += n
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, _ storage.Tx, s *models.ScheduledSession) (string, error) {
	id := f.newID()
	cp := *s
	cp.ID = id
	f.sessions[id] = &cp
	return id, nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (*models.ScheduledSession, error) {
	s, found := f.sessions[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, _ storage.Tx, b *models.Booking) (string, error) {
	for _, existing := range f.bookings {
		if existing.SessionID == b.SessionID && existing.ClientID == b.ClientID && existing.Status != models.BookingCancelled {
			return "", response.ErrConflict
		}
	}
	id := f.newID()
	cp := *b
	cp.ID = id
	f.bookings[id] = &cp
	return id, nil
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	b, found := f.bookings[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) GetActiveBooking(_ context.Context, sessionID, clientID string) (*models.Booking, error) {
	for _, b := range f.bookings {
		if b.SessionID == sessionID && b.ClientID == clientID && b.Status != models.BookingCancelled {
			return b, nil
		}
	}
	return nil, response.ErrNotFound
}

func (f *fakeStore) CountActiveBookings(_ context.Context, sessionID string) (int, error) {
	n := 0
	for _, b := range f.bookings {
		if b.SessionID == sessionID && b.Status != models.BookingCancelled {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) UpdateBookingStatus(_ context.Context, bookingID string, status models.BookingStatus) error {
	b, found := f.bookings[bookingID]
	if !found {
		return response.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeStore) UpsertAttendanceToken(_ context.Context, t *models.AttendanceToken) error {
	for existing, tok := range f.tokens {
		if tok.SessionID == t.SessionID {
			delete(f.tokens, existing)
		}
	}
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}

func (f *fakeStore) GetAttendanceToken(_ context.Context, tokenValue string) (*models.AttendanceToken, error) {
	t, found := f.tokens[tokenValue]
	if !found {
		return nil, response.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) CreateAttendance(_ context.Context, a *models.Attendance) (string, error) {
	id := f.newID()
	cp := *a
	cp.ID = id
	f.attendance[id] = &cp
	return id, nil
}

func (f *fakeStore) GetAttendance(_ context.Context, id string) (*models.Attendance, error) {
	a, found := f.attendance[id]
	if !found {
		return nil, response.ErrNotFound
	}
	return a, nil
}

// Fixtures

func newTestService(store *fakeStore) (*Service, *fakeLocker) {
	locker := newFakeLocker()
	issuer := token.NewIssuer(6 * time.Hour)
	return NewService(store, locker, issuer, "http://localhost:8080/attendance/checkin"), locker
}

func seedCourse(store *fakeStore, sessionCount, scheduled int, withRoom bool) *models.Course {
	course := &models.Course{
		Name:                   "Beginner Pottery",
		SessionCount:           sessionCount,
		SessionDurationMinutes: 60,
		LeadInstructorID:       "instr-1",
		ScheduledSessions:      scheduled,
	}

	if withRoom {
		room := &models.Room{Name: "Studio A", Capacity: 10}
		roomID, _ := store.CreateRoom(context.Background(), room)
		course.DefaultRoomID = &roomID
	}

	id, _ := store.CreateCourse(context.Background(), course)
	course.ID = id
	return course
}

func seedSession(store *fakeStore, courseID, roomID string) string {
	id, _ := store.CreateSession(context.Background(), fakeTx{}, &models.ScheduledSession{
		CourseID:     courseID,
		Start:        time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC),
		End:          time.Date(2024, time.January, 1, 11, 0, 0, 0, time.UTC),
		InstructorID: "instr-1",
		RoomID:       roomID,
	})
	return id
}

func planRequest(courseID string) *api.PlanRequest {
	return &api.PlanRequest{
		CourseID:  courseID,
		Frequency: string(models.FrequencyRecurring),
		StartDate: "2024-01-01",
		Weekdays:  []string{"mon", "wed"},
		Count:     4,
		StartTime: "10:00",
	}
}

// Planning

func TestPlanSessions_PreviewDoesNotPersist(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)

	plan, err := svc.PlanSessions(context.Background(), planRequest(course.ID))
	require.NoError(t, err)

	require.Len(t, plan.Drafts, 4)
	assert.Equal(t, 8, plan.PendingSessions)
	assert.Equal(t, "2024-01-01", plan.Drafts[0].Date)
	assert.Equal(t, "10:00", plan.Drafts[0].StartTime)
	assert.Equal(t, 60, plan.Drafts[0].DurationMinutes)
	assert.Equal(t, "instr-1", plan.Drafts[0].InstructorID)

	assert.Empty(t, store.sessions)
	got, _ := store.GetCourse(context.Background(), course.ID)
	assert.Equal(t, 0, got.ScheduledSessions)
}

func TestPlanSessions_CourseNotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.PlanSessions(context.Background(), planRequest("missing"))
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestScheduleSessions_PersistsAndBumpsCounter(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)

	schedule, err := svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	require.NoError(t, err)

	require.Len(t, schedule.Sessions, 4)
	assert.Equal(t, 4, schedule.ScheduledSessions)
	assert.Len(t, store.sessions, 4)

	got, _ := store.GetCourse(context.Background(), course.ID)
	assert.Equal(t, 4, got.ScheduledSessions)

	first := schedule.Sessions[0]
	assert.Equal(t, course.ID, first.CourseID)
	assert.Equal(t, *course.DefaultRoomID, first.RoomID)
	assert.Equal(t, "instr-1", first.InstructorID)
	assert.Equal(t, 10, first.Start.Hour())
	assert.Equal(t, time.Hour, first.End.Sub(first.Start))
}

func TestScheduleSessions_ClampsToQuota(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 6, 4, true)

	req := planRequest(course.ID)
	req.Count = 5

	schedule, err := svc.ScheduleSessions(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, schedule.Sessions, 2)
	assert.Equal(t, 6, schedule.ScheduledSessions)
}

func TestScheduleSessions_RoomNotAssigned(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, false)

	_, err := svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROOM_NOT_ASSIGNED")
	assert.Empty(t, store.sessions)
}

func TestScheduleSessions_FullyScheduled(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 4, 4, true)

	_, err := svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COURSE_FULLY_SCHEDULED")
}

func TestScheduleSessions_BlackoutRejectsAll(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)

	// Room cleaning every Monday 09:00-12:00 collides with the 10:00 drafts.
	_, err := store.CreateRecurringBlock(context.Background(), &models.RecurringBlock{
		OwnerKind: models.OwnerRoom,
		OwnerID:   *course.DefaultRoomID,
		Weekday:   1,
		StartMin:  540,
		EndMin:    720,
	})
	require.NoError(t, err)

	_, err = svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	assert.ErrorIs(t, err, response.ErrBlackoutConflict)

	// Nothing persisted, counter untouched.
	assert.Empty(t, store.sessions)
	got, _ := store.GetCourse(context.Background(), course.ID)
	assert.Equal(t, 0, got.ScheduledSessions)
}

func TestScheduleSessions_CourseLocked(t *testing.T) {
	store := newFakeStore()
	svc, locker := newTestService(store)
	course := seedCourse(store, 8, 0, true)

	held, err := locker.Lock(context.Background(), "course:"+course.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	assert.ErrorIs(t, err, response.ErrLocked)
}

// Courses

func TestUpdateCourse_LockedAfterScheduling(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)

	_, err := svc.ScheduleSessions(context.Background(), planRequest(course.ID))
	require.NoError(t, err)

	_, err = svc.UpdateCourse(context.Background(), course.ID, &api.CourseRequest{
		Name:                   "Renamed",
		SessionCount:           12,
		SessionDurationMinutes: 90,
		LeadInstructorID:       "instr-2",
	})
	assert.ErrorIs(t, err, response.ErrCourseLocked)

	got, _ := store.GetCourse(context.Background(), course.ID)
	assert.Equal(t, "Beginner Pottery", got.Name)
}

// Bookings

func TestCreateBooking_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	req := &api.BookingRequest{SessionID: sessionID, ClientID: "client-1"}

	first, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingConfirmed), first.Status)

	second, err := svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, _ := store.CountActiveBookings(context.Background(), sessionID)
	assert.Equal(t, 1, count)
}

func TestCreateBooking_CapacityGuard(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	roomID, _ := store.CreateRoom(context.Background(), &models.Room{Name: "Small Room", Capacity: 2})
	courseID, _ := store.CreateCourse(context.Background(), &models.Course{
		Name: "Duet", SessionCount: 1, SessionDurationMinutes: 60,
		LeadInstructorID: "instr-1", DefaultRoomID: &roomID,
	})
	sessionID := seedSession(store, courseID, roomID)

	for _, client := range []string{"client-1", "client-2"} {
		_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: client})
		require.NoError(t, err)
	}

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-3"})
	assert.ErrorIs(t, err, response.ErrSessionFull)

	count, _ := store.CountActiveBookings(context.Background(), sessionID)
	assert.Equal(t, 2, count)
}

func TestCreateBooking_CancelFreesSeat(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	roomID, _ := store.CreateRoom(context.Background(), &models.Room{Name: "Solo Room", Capacity: 1})
	courseID, _ := store.CreateCourse(context.Background(), &models.Course{
		Name: "Solo", SessionCount: 1, SessionDurationMinutes: 60,
		LeadInstructorID: "instr-1", DefaultRoomID: &roomID,
	})
	sessionID := seedSession(store, courseID, roomID)

	first, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-1"})
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-2"})
	assert.ErrorIs(t, err, response.ErrSessionFull)

	cancelled, err := svc.CancelBooking(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingCancelled), cancelled.Status)

	booked, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-2"})
	require.NoError(t, err)
	assert.Equal(t, string(models.BookingConfirmed), booked.Status)
}

func TestCreateBooking_SessionNotFound(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: "missing", ClientID: "client-1"})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCreateBooking_SessionLocked(t *testing.T) {
	store := newFakeStore()
	svc, locker := newTestService(store)
	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	held, err := locker.Lock(context.Background(), "session:"+sessionID, time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	_, err = svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-1"})
	assert.ErrorIs(t, err, response.ErrLocked)
}

// Attendance

func TestGenerateAttendanceToken_OverwritesPrevious(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	first, err := svc.GenerateAttendanceToken(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, first.SessionID)
	assert.NotEmpty(t, first.Token)
	assert.NotEmpty(t, first.QRPNG)

	second, err := svc.GenerateAttendanceToken(context.Background(), sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)

	// The replaced token no longer resolves.
	_, err = store.GetAttendanceToken(context.Background(), first.Token)
	assert.ErrorIs(t, err, response.ErrNotFound)
	assert.Len(t, store.tokens, 1)
}

func TestCheckin_HappyPath(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	booking, err := svc.CreateBooking(context.Background(), &api.BookingRequest{SessionID: sessionID, ClientID: "client-1"})
	require.NoError(t, err)

	tok, err := svc.GenerateAttendanceToken(context.Background(), sessionID)
	require.NoError(t, err)

	result, err := svc.Checkin(context.Background(), &api.CheckinRequest{Token: tok.Token, ClientID: "client-1"})
	require.NoError(t, err)

	assert.Equal(t, sessionID, result.SessionID)
	assert.Equal(t, booking.ID, result.BookingID)
	assert.Equal(t, string(models.AttendancePresent), result.Status)

	attendance, err := store.GetAttendance(context.Background(), result.AttendanceID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendancePresent, attendance.Status)
}

func TestCheckin_ExpiredToken(t *testing.T) {
	store := newFakeStore()
	locker := newFakeLocker()

	// Clock frozen in the past so the minted token is already expired.
	past := time.Now().Add(-24 * time.Hour)
	issuer := token.NewIssuerWithClock(time.Hour, func() time.Time { return past })
	svc := NewService(store, locker, issuer, "http://localhost:8080/attendance/checkin")

	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	tok, err := svc.GenerateAttendanceToken(context.Background(), sessionID)
	require.NoError(t, err)

	_, err = svc.Checkin(context.Background(), &api.CheckinRequest{Token: tok.Token, ClientID: "client-1"})
	assert.ErrorIs(t, err, response.ErrTokenExpired)
}

func TestCheckin_NoActiveBooking(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	course := seedCourse(store, 8, 0, true)
	sessionID := seedSession(store, course.ID, *course.DefaultRoomID)

	tok, err := svc.GenerateAttendanceToken(context.Background(), sessionID)
	require.NoError(t, err)

	_, err = svc.Checkin(context.Background(), &api.CheckinRequest{Token: tok.Token, ClientID: "stranger"})
	assert.ErrorIs(t, err, response.ErrNotFound)
}

func TestCheckin_UnknownToken(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.Checkin(context.Background(), &api.CheckinRequest{Token: "nope", ClientID: "client-1"})
	assert.ErrorIs(t, err, response.ErrNotFound)
}
