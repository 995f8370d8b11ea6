package service

import (
	"context"
	"errors"
	"time"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/ports"
	"carcare-backend/internal/timeutil"
)

// SessionService owns the check-in/check-out state machine:
//
//	NoSession -> Active(no open break) <-> Active(break open) -> Closed
type SessionService struct {
	Sessions ports.SessionStore
	Users    ports.RateSource
}

type CheckInInput struct {
	UserID    int64
	StartTime time.Time
	CreatedBy int64
}

type CheckOutInput struct {
	UserID  int64
	EndTime time.Time
}

type AdminSessionInput struct {
	UserID      int64
	StartTime   time.Time
	EndTime     time.Time
	Description string
	CreatedBy   int64
}

// CheckIn opens the day's session. The storage unique index rejects a second
// session for the same user and calendar date.
func (s SessionService) CheckIn(ctx context.Context, in CheckInInput) (*domain.WorkSession, error) {
	if in.UserID == 0 || in.StartTime.IsZero() {
		return nil, domain.ErrValidation
	}
	return s.Sessions.Create(ctx, domain.WorkSession{
		UserID:    in.UserID,
		StartTime: in.StartTime,
		Active:    true,
		Attempt:   1,
		CreatedBy: in.CreatedBy,
	})
}

// Status reports the user's session for the current day, for the client to
// decide between the check-in and check-out views.
func (s SessionService) Status(ctx context.Context, userID int64, now time.Time) (*domain.WorkSession, error) {
	return s.Sessions.GetByUserAndDate(ctx, userID, now)
}

func (s SessionService) StartBreak(ctx context.Context, sessionID int64, at time.Time) (*domain.Break, error) {
	return s.Sessions.StartBreak(ctx, sessionID, at)
}

func (s SessionService) EndBreak(ctx context.Context, sessionID, breakID int64, at time.Time) (*domain.Break, error) {
	return s.Sessions.EndBreak(ctx, sessionID, breakID, at)
}

// CheckOut closes the user's open session and derives worked minutes and pay
// from the employee's hourly rate. The session is found by its open state
// rather than by the checkout day, so a shift running past midnight still
// closes cleanly.
func (s SessionService) CheckOut(ctx context.Context, in CheckOutInput) (*domain.WorkSession, error) {
	if in.UserID == 0 || in.EndTime.IsZero() {
		return nil, domain.ErrValidation
	}
	session, err := s.Sessions.GetActiveByUser(ctx, in.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		// a closed session for the day means a repeated checkout, not a
		// missing check-in
		if closed, lookupErr := s.Sessions.GetByUserAndDate(ctx, in.UserID, in.EndTime); lookupErr == nil && !closed.Active {
			return nil, domain.ErrSessionClosed
		}
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rate, err := s.hourlyRate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	finalizeSession(session, in.EndTime, rate)
	return s.Sessions.Finalize(ctx, *session)
}

// AdminCreate records a finished session on behalf of an employee, bypassing
// the one-per-day guard's conflict response only in that the admin supplies
// both times at once; the unique index still applies.
func (s SessionService) AdminCreate(ctx context.Context, in AdminSessionInput) (*domain.WorkSession, error) {
	if in.UserID == 0 || in.StartTime.IsZero() || in.EndTime.IsZero() || in.Description == "" {
		return nil, domain.ErrValidation
	}
	session, err := s.Sessions.Create(ctx, domain.WorkSession{
		UserID:      in.UserID,
		StartTime:   in.StartTime,
		Active:      true,
		Attempt:     1,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	rate, err := s.hourlyRate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	finalizeSession(session, in.EndTime, rate)
	return s.Sessions.Finalize(ctx, *session)
}

// AdminUpdate overwrites a session's times and description and recomputes the
// derived fields exactly as checkout does.
func (s SessionService) AdminUpdate(ctx context.Context, id int64, in AdminSessionInput) (*domain.WorkSession, error) {
	if in.StartTime.IsZero() || in.EndTime.IsZero() || in.Description == "" {
		return nil, domain.ErrValidation
	}
	session, err := s.Sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rate, err := s.hourlyRate(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	session.StartTime = in.StartTime
	session.Description = in.Description
	finalizeSession(session, in.EndTime, rate)
	return s.Sessions.Finalize(ctx, *session)
}

func (s SessionService) hourlyRate(ctx context.Context, userID int64) (float64, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return user.HourlyPay, nil
}

// finalizeSession closes the session at endTime: a still-open break is
// treated as ending at endTime, worked minutes exclude all break time, and
// the suspect flag follows the 23:59 sentinel heuristic.
func finalizeSession(s *domain.WorkSession, endTime time.Time, hourlyRate float64) {
	total := timeutil.MinutesBetween(s.StartTime, endTime)
	for _, b := range s.Breaks {
		// a break recorded before check-in is bogus and must not eat
		// worked time
		if b.StartBreak.Before(s.StartTime) {
			continue
		}
		end := endTime
		if b.EndBreak != nil && b.EndBreak.Before(endTime) {
			end = *b.EndBreak
		}
		if end.After(b.StartBreak) {
			total -= timeutil.MinutesBetween(b.StartBreak, end)
		}
	}
	if total < 0 {
		total = 0
	}

	s.EndTime = &endTime
	s.Active = false
	s.WorkMinutes = total
	s.Hours = timeutil.FormatHoursMinutes(total)
	s.DailySalary = timeutil.SalaryForMinutes(total, hourlyRate)
	s.Suspect = timeutil.IsSuspectEndTime(endTime)
}
