package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"carcare-backend/internal/timeutil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type SessionRepository struct {
	DB *db.Postgres
}

// SessionWithUser joins the employee display name onto a session row.
type SessionWithUser struct {
	domain.WorkSession
	FirstName string
	LastName  string
}

type SessionFilter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time // exclusive
	Page   int
	Limit  int // 0 disables pagination (export path)
}

const sessionColumns = `id, user_id, start_time, end_time, active, attempt, description,
	hours, work_minutes, daily_salary, paid, suspect, created_by, created_at, updated_at`

// Create inserts a new active session. The (user_id, session_date) unique
// index is the one-session-per-day guard; its violation surfaces as
// ErrSessionExists.
func (r SessionRepository) Create(ctx context.Context, s domain.WorkSession) (*domain.WorkSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO work_sessions
			(user_id, session_date, start_time, end_time, active, attempt, description,
			 created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING `+sessionColumns+`
	`, s.UserID, s.StartTime.Format(timeutil.DateLayout), s.StartTime, s.EndTime,
		s.Active, s.Attempt, s.Description, s.CreatedBy)
	created, err := scanSession(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrSessionExists
		}
		return nil, err
	}
	return created, nil
}

func (r SessionRepository) Get(ctx context.Context, id int64) (*domain.WorkSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM work_sessions WHERE id=$1
	`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachBreaks(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByUserAndDate returns the session for a user on the given calendar day.
func (r SessionRepository) GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*domain.WorkSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM work_sessions
		WHERE user_id=$1 AND session_date=$2
	`, userID, day.Format(timeutil.DateLayout))
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachBreaks(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetActiveByUser returns the user's still-open session regardless of its
// calendar day. Newest first in case stale open rows exist.
func (r SessionRepository) GetActiveByUser(ctx context.Context, userID int64) (*domain.WorkSession, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+sessionColumns+` FROM work_sessions
		WHERE user_id=$1 AND active
		ORDER BY start_time DESC
		LIMIT 1
	`, userID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachBreaks(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// StartBreak opens a break unless one is already active. ErrNotFound when the
// session does not exist or is closed, ErrBreakOpen when a break is running.
func (r SessionRepository) StartBreak(ctx context.Context, sessionID int64, at time.Time) (*domain.Break, error) {
	var active bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT active FROM work_sessions WHERE id=$1
	`, sessionID).Scan(&active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !active {
		return nil, domain.ErrSessionClosed
	}

	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO session_breaks (session_id, start_break, active)
		SELECT $1, $2, true
		WHERE NOT EXISTS (
			SELECT 1 FROM session_breaks WHERE session_id=$1 AND active
		)
		RETURNING id, session_id, start_break, end_break, active
	`, sessionID, at)
	b, err := scanBreak(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBreakOpen
		}
		return nil, err
	}
	return b, nil
}

// EndBreak closes the matching open break.
func (r SessionRepository) EndBreak(ctx context.Context, sessionID, breakID int64, at time.Time) (*domain.Break, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE session_breaks SET end_break=$3, active=false
		WHERE id=$2 AND session_id=$1 AND active
		RETURNING id, session_id, start_break, end_break, active
	`, sessionID, breakID, at)
	b, err := scanBreak(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Finalize writes the checkout result: any still-open break is closed at the
// end time in the same transaction.
func (r SessionRepository) Finalize(ctx context.Context, s domain.WorkSession) (*domain.WorkSession, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE session_breaks SET end_break=$2, active=false
		WHERE session_id=$1 AND active
	`, s.ID, s.EndTime); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE work_sessions SET
			start_time=$2, session_date=$3, end_time=$4, active=$5, description=$6,
			hours=$7, work_minutes=$8, daily_salary=$9, suspect=$10, updated_at=now()
		WHERE id=$1
		RETURNING `+sessionColumns+`
	`, s.ID, s.StartTime, s.StartTime.Format(timeutil.DateLayout), s.EndTime, s.Active,
		s.Description, s.Hours, s.WorkMinutes, s.DailySalary, s.Suspect)
	updated, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if err := r.attachBreaks(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r SessionRepository) SetDescription(ctx context.Context, id int64, description string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE work_sessions SET description=$2, updated_at=now() WHERE id=$1
	`, id, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkPaid flags a user's closed sessions inside [from, to) as consumed by
// payroll.
func (r SessionRepository) MarkPaid(ctx context.Context, userID int64, from, to time.Time) error {
	_, err := r.DB.Pool.Exec(ctx, `
		UPDATE work_sessions SET paid=true, updated_at=now()
		WHERE user_id=$1 AND active=false AND start_time >= $2 AND start_time < $3
	`, userID, from, to)
	return err
}

func (r SessionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM work_sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of sessions with user names, newest first, plus the
// total match count. Limit 0 returns all matches (export).
func (r SessionRepository) List(ctx context.Context, f SessionFilter) ([]SessionWithUser, int64, error) {
	where := `WHERE 1=1`
	var args []any
	n := 0
	if f.UserID != nil {
		n++
		where += ` AND s.user_id = $` + strconv.Itoa(n)
		args = append(args, *f.UserID)
	}
	if f.From != nil {
		n++
		where += ` AND s.start_time >= $` + strconv.Itoa(n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		where += ` AND s.start_time < $` + strconv.Itoa(n)
		args = append(args, *f.To)
	}

	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM work_sessions s `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT s.id, s.user_id, s.start_time, s.end_time, s.active, s.attempt, s.description,
		       s.hours, s.work_minutes, s.daily_salary, s.paid, s.suspect, s.created_by,
		       s.created_at, s.updated_at,
		       COALESCE(u.first_name,''), COALESCE(u.last_name,'')
		FROM work_sessions s
		LEFT JOIN users u ON u.id = s.user_id ` + where + `
		ORDER BY s.start_time DESC`
	if f.Limit > 0 {
		limit, offset := pageBounds(f.Page, f.Limit)
		args = append(args, limit, offset)
		query += ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	}

	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []SessionWithUser
	var ids []int64
	for rows.Next() {
		var (
			item    SessionWithUser
			endTime pgtype.Timestamptz
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.StartTime, &endTime, &item.Active,
			&item.Attempt, &item.Description, &item.Hours, &item.WorkMinutes, &item.DailySalary,
			&item.Paid, &item.Suspect, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
			&item.FirstName, &item.LastName); err != nil {
			return nil, 0, err
		}
		if endTime.Valid {
			t := endTime.Time
			item.EndTime = &t
		}
		ids = append(ids, item.ID)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if len(ids) > 0 {
		breakRows, err := r.DB.Pool.Query(ctx, `
			SELECT id, session_id, start_break, end_break, active
			FROM session_breaks
			WHERE session_id = ANY($1)
			ORDER BY start_break ASC
		`, ids)
		if err != nil {
			return nil, 0, err
		}
		defer breakRows.Close()

		bySession := make(map[int64][]domain.Break)
		for breakRows.Next() {
			b, err := scanBreak(breakRows)
			if err != nil {
				return nil, 0, err
			}
			bySession[b.SessionID] = append(bySession[b.SessionID], *b)
		}
		if err := breakRows.Err(); err != nil {
			return nil, 0, err
		}
		for i := range items {
			items[i].Breaks = bySession[items[i].ID]
		}
	}

	return items, total, nil
}

func (r SessionRepository) attachBreaks(ctx context.Context, s *domain.WorkSession) error {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, session_id, start_break, end_break, active
		FROM session_breaks
		WHERE session_id=$1
		ORDER BY start_break ASC
	`, s.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return err
		}
		s.Breaks = append(s.Breaks, *b)
	}
	return rows.Err()
}

func scanSession(row pgx.Row) (*domain.WorkSession, error) {
	var (
		s       domain.WorkSession
		endTime pgtype.Timestamptz
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.StartTime, &endTime, &s.Active, &s.Attempt,
		&s.Description, &s.Hours, &s.WorkMinutes, &s.DailySalary, &s.Paid, &s.Suspect,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	return &s, nil
}

func scanBreak(row pgx.Row) (*domain.Break, error) {
	var (
		b        domain.Break
		endBreak pgtype.Timestamptz
	)
	if err := row.Scan(&b.ID, &b.SessionID, &b.StartBreak, &endBreak, &b.Active); err != nil {
		return nil, err
	}
	if endBreak.Valid {
		t := endBreak.Time
		b.EndBreak = &t
	}
	return &b, nil
}
