package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"studio-service/internal/models"
	"studio-service/internal/storage"
	"studio-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (storage.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func sqlTx(tx storage.Tx) (*sql.Tx, error) {
	t, ok := tx.(*sql.Tx)
	if !ok {
		return nil, fmt.Errorf("unexpected tx type %T", tx)
	}
	return t, nil
}

// #### availability patterns ####

func (s *Storage) CreateAvailabilityPattern(ctx context.Context, p *models.AvailabilityPattern) (string, error) {
	const op = "storage.postgres.CreateAvailabilityPattern"

	days, err := json.Marshal(p.Pattern.Days)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New().String()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO availability_patterns (id, owner_kind, owner_id, days)
		VALUES ($1, $2, $3, $4)`,
		id, string(p.OwnerKind), p.OwnerID, days,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAvailabilityPattern(ctx context.Context, id string) (*models.AvailabilityPattern, error) {
	const op = "storage.postgres.GetAvailabilityPattern"

	return s.scanPattern(ctx, op,
		`SELECT id, owner_kind, owner_id, days FROM availability_patterns WHERE id=$1`, id)
}

func (s *Storage) GetAvailabilityPatternByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) (*models.AvailabilityPattern, error) {
	const op = "storage.postgres.GetAvailabilityPatternByOwner"

	return s.scanPattern(ctx, op,
		`SELECT id, owner_kind, owner_id, days FROM availability_patterns
		WHERE owner_kind=$1 AND owner_id=$2`, string(kind), ownerID)
}

func (s *Storage) scanPattern(ctx context.Context, op, query string, args ...any) (*models.AvailabilityPattern, error) {
	var p models.AvailabilityPattern
	var kind string
	var days []byte

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &kind, &p.OwnerID, &days)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.OwnerKind = models.OwnerKind(kind)
	if err := json.Unmarshal(days, &p.Pattern.Days); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (s *Storage) UpdateAvailabilityPattern(ctx context.Context, p *models.AvailabilityPattern) error {
	const op = "storage.postgres.UpdateAvailabilityPattern"

	days, err := json.Marshal(p.Pattern.Days)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE availability_patterns SET owner_kind=$1, owner_id=$2, days=$3 WHERE id=$4`,
		string(p.OwnerKind), p.OwnerID, days, p.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

func (s *Storage) DeleteAvailabilityPattern(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteAvailabilityPattern"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_patterns WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### override weeks ####

func (s *Storage) CreateOverrideWeek(ctx context.Context, w *models.OverrideWeek) (string, error) {
	const op = "storage.postgres.CreateOverrideWeek"

	days, err := json.Marshal(w.Pattern.Days)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New().String()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO override_weeks (id, owner_kind, owner_id, week_key, week_start_date, label, notes, days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, string(w.OwnerKind), w.OwnerID, w.WeekKey, w.WeekStartDate, w.Label, w.Notes, days,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetOverrideWeek(ctx context.Context, id string) (*models.OverrideWeek, error) {
	const op = "storage.postgres.GetOverrideWeek"

	var w models.OverrideWeek
	var kind string
	var days []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_kind, owner_id, week_key, week_start_date, label, notes, days
		FROM override_weeks WHERE id=$1`, id).
		Scan(&w.ID, &kind, &w.OwnerID, &w.WeekKey, &w.WeekStartDate, &w.Label, &w.Notes, &days)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	w.OwnerKind = models.OwnerKind(kind)
	if err := json.Unmarshal(days, &w.Pattern.Days); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &w, nil
}

func (s *Storage) ListOverrideWeeksByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) ([]*models.OverrideWeek, error) {
	const op = "storage.postgres.ListOverrideWeeksByOwner"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_kind, owner_id, week_key, week_start_date, label, notes, days
		FROM override_weeks WHERE owner_kind=$1 AND owner_id=$2
		ORDER BY week_start_date`, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var weeks []*models.OverrideWeek
	for rows.Next() {
		var w models.OverrideWeek
		var ownerKind string
		var days []byte

		err := rows.Scan(&w.ID, &ownerKind, &w.OwnerID, &w.WeekKey, &w.WeekStartDate, &w.Label, &w.Notes, &days)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		w.OwnerKind = models.OwnerKind(ownerKind)
		if err := json.Unmarshal(days, &w.Pattern.Days); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		weeks = append(weeks, &w)
	}

	return weeks, nil
}

func (s *Storage) UpdateOverrideWeek(ctx context.Context, w *models.OverrideWeek) error {
	const op = "storage.postgres.UpdateOverrideWeek"

	days, err := json.Marshal(w.Pattern.Days)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE override_weeks
		SET owner_kind=$1, owner_id=$2, week_key=$3, week_start_date=$4, label=$5, notes=$6, days=$7
		WHERE id=$8`,
		string(w.OwnerKind), w.OwnerID, w.WeekKey, w.WeekStartDate, w.Label, w.Notes, days, w.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

func (s *Storage) DeleteOverrideWeek(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteOverrideWeek"

	res, err := s.db.ExecContext(ctx, `DELETE FROM override_weeks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### date blocks ####

func (s *Storage) CreateDateBlock(ctx context.Context, b *models.DateBlock) (string, error) {
	const op = "storage.postgres.CreateDateBlock"

	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO date_blocks (id, room_id, starts_at, ends_at, reason, note)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, b.RoomID, b.StartsAt, b.EndsAt, b.Reason, b.Note,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetDateBlock(ctx context.Context, id string) (*models.DateBlock, error) {
	const op = "storage.postgres.GetDateBlock"

	var b models.DateBlock

	err := s.db.QueryRowContext(ctx,
		`SELECT id, room_id, starts_at, ends_at, reason, note FROM date_blocks WHERE id=$1`, id).
		Scan(&b.ID, &b.RoomID, &b.StartsAt, &b.EndsAt, &b.Reason, &b.Note)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

func (s *Storage) ListDateBlocks(ctx context.Context, roomID *string, from, to *time.Time) ([]*models.DateBlock, error) {
	const op = "storage.postgres.ListDateBlocks"

	query := `SELECT id, room_id, starts_at, ends_at, reason, note FROM date_blocks WHERE 1=1`
	args := []any{}

	if roomID != nil {
		args = append(args, *roomID)
		query += fmt.Sprintf(` AND room_id=$%d`, len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND ends_at > $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND starts_at < $%d`, len(args))
	}

	query += ` ORDER BY starts_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var blocks []*models.DateBlock
	for rows.Next() {
		var b models.DateBlock
		if err := rows.Scan(&b.ID, &b.RoomID, &b.StartsAt, &b.EndsAt, &b.Reason, &b.Note); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blocks = append(blocks, &b)
	}

	return blocks, nil
}

func (s *Storage) UpdateDateBlock(ctx context.Context, b *models.DateBlock) error {
	const op = "storage.postgres.UpdateDateBlock"

	res, err := s.db.ExecContext(ctx,
		`UPDATE date_blocks SET room_id=$1, starts_at=$2, ends_at=$3, reason=$4, note=$5 WHERE id=$6`,
		b.RoomID, b.StartsAt, b.EndsAt, b.Reason, b.Note, b.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

func (s *Storage) DeleteDateBlock(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteDateBlock"

	res, err := s.db.ExecContext(ctx, `DELETE FROM date_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### recurring blocks ####

func (s *Storage) CreateRecurringBlock(ctx context.Context, b *models.RecurringBlock) (string, error) {
	const op = "storage.postgres.CreateRecurringBlock"

	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_blocks (id, owner_kind, owner_id, weekday, start_min, end_min, reason, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, string(b.OwnerKind), b.OwnerID, b.Weekday, b.StartMin, b.EndMin, b.Reason, b.Note,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetRecurringBlock(ctx context.Context, id string) (*models.RecurringBlock, error) {
	const op = "storage.postgres.GetRecurringBlock"

	var b models.RecurringBlock
	var kind string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_kind, owner_id, weekday, start_min, end_min, reason, note
		FROM recurring_blocks WHERE id=$1`, id).
		Scan(&b.ID, &kind, &b.OwnerID, &b.Weekday, &b.StartMin, &b.EndMin, &b.Reason, &b.Note)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.OwnerKind = models.OwnerKind(kind)

	return &b, nil
}

func (s *Storage) ListRecurringBlocksByOwner(ctx context.Context, kind models.OwnerKind, ownerID string) ([]*models.RecurringBlock, error) {
	const op = "storage.postgres.ListRecurringBlocksByOwner"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_kind, owner_id, weekday, start_min, end_min, reason, note
		FROM recurring_blocks WHERE owner_kind=$1 AND owner_id=$2
		ORDER BY weekday, start_min`, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var blocks []*models.RecurringBlock
	for rows.Next() {
		var b models.RecurringBlock
		var ownerKind string

		err := rows.Scan(&b.ID, &ownerKind, &b.OwnerID, &b.Weekday, &b.StartMin, &b.EndMin, &b.Reason, &b.Note)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		b.OwnerKind = models.OwnerKind(ownerKind)
		blocks = append(blocks, &b)
	}

	return blocks, nil
}

func (s *Storage) DeleteRecurringBlock(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteRecurringBlock"

	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### rooms ####

func (s *Storage) CreateRoom(ctx context.Context, r *models.Room) (string, error) {
	const op = "storage.postgres.CreateRoom"

	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rooms (id, name, capacity) VALUES ($1, $2, $3)`,
		id, r.Name, r.Capacity,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	const op = "storage.postgres.GetRoom"

	var r models.Room

	err := s.db.QueryRowContext(ctx, `SELECT id, name, capacity FROM rooms WHERE id=$1`, id).
		Scan(&r.ID, &r.Name, &r.Capacity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &r, nil
}

// #### courses ####

func (s *Storage) CreateCourse(ctx context.Context, c *models.Course) (string, error) {
	const op = "storage.postgres.CreateCourse"

	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, session_count, session_duration_minutes, lead_instructor_id, default_room_id, scheduled_sessions)
		VALUES ($1, $2, $3, $4, $5, $6, 0)`,
		id, c.Name, c.SessionCount, c.SessionDurationMinutes, c.LeadInstructorID, c.DefaultRoomID,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	const op = "storage.postgres.GetCourse"

	var c models.Course

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, session_count, session_duration_minutes, lead_instructor_id, default_room_id, scheduled_sessions
		FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.SessionCount, &c.SessionDurationMinutes, &c.LeadInstructorID, &c.DefaultRoomID, &c.ScheduledSessions)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) UpdateCourse(ctx context.Context, c *models.Course) error {
	const op = "storage.postgres.UpdateCourse"

	res, err := s.db.ExecContext(ctx,
		`UPDATE courses
		SET name=$1, session_count=$2, session_duration_minutes=$3, lead_instructor_id=$4, default_room_id=$5
		WHERE id=$6`,
		c.Name, c.SessionCount, c.SessionDurationMinutes, c.LeadInstructorID, c.DefaultRoomID, c.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

func (s *Storage) AddScheduledSessions(ctx context.Context, tx storage.Tx, courseID string, n int) error {
	const op = "storage.postgres.AddScheduledSessions"

	t, err := sqlTx(tx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := t.ExecContext(ctx,
		`UPDATE courses SET scheduled_sessions = scheduled_sessions + $1 WHERE id=$2`,
		n, courseID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### sessions ####

func (s *Storage) CreateSession(ctx context.Context, tx storage.Tx, sess *models.ScheduledSession) (string, error) {
	const op = "storage.postgres.CreateSession"

	t, err := sqlTx(tx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New().String()

	_, err = t.ExecContext(ctx,
		`INSERT INTO sessions (id, course_id, start_time, end_time, instructor_id, room_id)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, sess.CourseID, sess.Start, sess.End, sess.InstructorID, sess.RoomID,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetSession(ctx context.Context, id string) (*models.ScheduledSession, error) {
	const op = "storage.postgres.GetSession"

	var sess models.ScheduledSession

	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, start_time, end_time, instructor_id, room_id FROM sessions WHERE id=$1`, id).
		Scan(&sess.ID, &sess.CourseID, &sess.Start, &sess.End, &sess.InstructorID, &sess.RoomID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &sess, nil
}

// #### bookings ####

func (s *Storage) CreateBooking(ctx context.Context, tx storage.Tx, b *models.Booking) (string, error) {
	const op = "storage.postgres.CreateBooking"

	t, err := sqlTx(tx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id := uuid.New().String()

	_, err = t.ExecContext(ctx,
		`INSERT INTO bookings (id, session_id, client_id, status) VALUES ($1, $2, $3, $4)`,
		id, b.SessionID, b.ClientID, string(b.Status),
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		// 23505 is the partial unique index on (session_id, client_id)
		// over non-cancelled rows: a concurrent duplicate.
		if ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var b models.Booking
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, client_id, status FROM bookings WHERE id=$1`, id).
		Scan(&b.ID, &b.SessionID, &b.ClientID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Status = models.BookingStatus(status)

	return &b, nil
}

func (s *Storage) GetActiveBooking(ctx context.Context, sessionID, clientID string) (*models.Booking, error) {
	const op = "storage.postgres.GetActiveBooking"

	var b models.Booking
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, client_id, status FROM bookings
		WHERE session_id=$1 AND client_id=$2 AND status <> 'CANCELLED'`,
		sessionID, clientID).
		Scan(&b.ID, &b.SessionID, &b.ClientID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Status = models.BookingStatus(status)

	return &b, nil
}

func (s *Storage) CountActiveBookings(ctx context.Context, sessionID string) (int, error) {
	const op = "storage.postgres.CountActiveBookings"

	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE session_id=$1 AND status <> 'CANCELLED'`, sessionID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, bookingID string, status models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status=$1 WHERE id=$2`, string(status), bookingID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return requireRow(op, res)
}

// #### attendance ####

func (s *Storage) UpsertAttendanceToken(ctx context.Context, t *models.AttendanceToken) error {
	const op = "storage.postgres.UpsertAttendanceToken"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance_tokens (session_id, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id)
		DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`,
		t.SessionID, t.Token, t.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetAttendanceToken(ctx context.Context, tokenValue string) (*models.AttendanceToken, error) {
	const op = "storage.postgres.GetAttendanceToken"

	var t models.AttendanceToken

	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, token, expires_at FROM attendance_tokens WHERE token=$1`, tokenValue).
		Scan(&t.SessionID, &t.Token, &t.ExpiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

func (s *Storage) CreateAttendance(ctx context.Context, a *models.Attendance) (string, error) {
	const op = "storage.postgres.CreateAttendance"

	id := uuid.New().String()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, booking_id, status, notes) VALUES ($1, $2, $3, $4)`,
		id, a.BookingID, string(a.Status), a.Notes,
	)
	if err != nil {
		if sqlErr, ok := err.(*pq.Error); ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetAttendance(ctx context.Context, id string) (*models.Attendance, error) {
	const op = "storage.postgres.GetAttendance"

	var a models.Attendance
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, booking_id, status, notes FROM attendance WHERE id=$1`, id).
		Scan(&a.ID, &a.BookingID, &status, &a.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Status = models.AttendanceStatus(status)

	return &a, nil
}

func requireRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}
