package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/timeutil"
)

func day(hour, min int) time.Time {
	return time.Date(2026, time.March, 9, hour, min, 0, 0, time.UTC)
}

func TestFinalizeSessionWithBreak(t *testing.T) {
	halfPast := day(12, 30)
	s := &domain.WorkSession{
		StartTime: day(8, 0),
		Active:    true,
		Breaks: []domain.Break{
			{StartBreak: day(12, 0), EndBreak: &halfPast},
		},
	}

	finalizeSession(s, day(17, 0), 20)

	assert.Equal(t, 510, s.WorkMinutes)
	assert.Equal(t, "8h 30m", s.Hours)
	assert.Equal(t, 170.0, s.DailySalary)
	assert.False(t, s.Active)
	require.NotNil(t, s.EndTime)
	assert.Equal(t, day(17, 0), *s.EndTime)
	assert.False(t, s.Suspect)
}

func TestFinalizeSessionOpenBreakEndsAtCheckout(t *testing.T) {
	s := &domain.WorkSession{
		StartTime: day(8, 0),
		Active:    true,
		Breaks: []domain.Break{
			{StartBreak: day(16, 0), Active: true},
		},
	}

	finalizeSession(s, day(17, 0), 10)

	assert.Equal(t, 480, s.WorkMinutes)
	assert.Equal(t, 80.0, s.DailySalary)
}

func TestFinalizeSessionNeverNegative(t *testing.T) {
	s := &domain.WorkSession{
		StartTime: day(9, 0),
		Breaks: []domain.Break{
			{StartBreak: day(8, 0), Active: true},
		},
	}

	finalizeSession(s, day(9, 30), 15)

	assert.Equal(t, 30, s.WorkMinutes)

	s2 := &domain.WorkSession{StartTime: day(10, 0)}
	finalizeSession(s2, day(9, 0), 15)
	assert.Equal(t, 0, s2.WorkMinutes)
	assert.Equal(t, 0.0, s2.DailySalary)
}

func TestFinalizeSessionSentinelFlagsSuspect(t *testing.T) {
	s := &domain.WorkSession{StartTime: day(8, 0)}
	finalizeSession(s, day(23, 59), 20)
	assert.True(t, s.Suspect)

	s = &domain.WorkSession{StartTime: day(8, 0)}
	finalizeSession(s, day(23, 58), 20)
	assert.False(t, s.Suspect)
}

func TestFinalizeSessionZeroRateUser(t *testing.T) {
	s := &domain.WorkSession{StartTime: day(8, 0)}
	finalizeSession(s, day(16, 0), 0)
	assert.Equal(t, 480, s.WorkMinutes)
	assert.Equal(t, 0.0, s.DailySalary)
}

type fakeSessionStore struct {
	createErr error
	active    *domain.WorkSession
	byDay     map[string]*domain.WorkSession
	finalized *domain.WorkSession
}

func (s *fakeSessionStore) Create(ctx context.Context, w domain.WorkSession) (*domain.WorkSession, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	w.ID = 1
	return &w, nil
}

func (s *fakeSessionStore) Get(ctx context.Context, id int64) (*domain.WorkSession, error) {
	if s.active != nil && s.active.ID == id {
		c := *s.active
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeSessionStore) GetByUserAndDate(ctx context.Context, userID int64, dayTime time.Time) (*domain.WorkSession, error) {
	if w, ok := s.byDay[dayTime.Format(timeutil.DateLayout)]; ok {
		c := *w
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *fakeSessionStore) GetActiveByUser(ctx context.Context, userID int64) (*domain.WorkSession, error) {
	if s.active == nil || !s.active.Active {
		return nil, domain.ErrNotFound
	}
	c := *s.active
	return &c, nil
}

func (s *fakeSessionStore) StartBreak(ctx context.Context, sessionID int64, at time.Time) (*domain.Break, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeSessionStore) EndBreak(ctx context.Context, sessionID, breakID int64, at time.Time) (*domain.Break, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeSessionStore) Finalize(ctx context.Context, w domain.WorkSession) (*domain.WorkSession, error) {
	c := w
	s.finalized = &c
	return &c, nil
}

type fakeRateSource struct{ rate float64 }

func (s fakeRateSource) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, HourlyPay: s.rate}, nil
}

func TestCheckInRejectsSecondSessionSameDay(t *testing.T) {
	store := &fakeSessionStore{createErr: domain.ErrSessionExists}
	svc := SessionService{Sessions: store, Users: fakeRateSource{}}

	_, err := svc.CheckIn(context.Background(), CheckInInput{UserID: 1, StartTime: day(8, 0)})
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestCheckOutClosesOvernightSession(t *testing.T) {
	store := &fakeSessionStore{
		active: &domain.WorkSession{ID: 1, UserID: 1, StartTime: day(22, 0), Active: true},
	}
	svc := SessionService{Sessions: store, Users: fakeRateSource{rate: 20}}

	// checkout falls on the next calendar day
	end := day(0, 30).AddDate(0, 0, 1)
	session, err := svc.CheckOut(context.Background(), CheckOutInput{UserID: 1, EndTime: end})

	require.NoError(t, err)
	assert.False(t, session.Active)
	assert.Equal(t, 150, session.WorkMinutes)
	assert.Equal(t, 50.0, session.DailySalary)
	require.NotNil(t, store.finalized)
}

func TestCheckOutTwiceIsConflict(t *testing.T) {
	end := day(17, 0)
	closed := &domain.WorkSession{ID: 1, UserID: 1, StartTime: day(8, 0), Active: false}
	store := &fakeSessionStore{
		byDay: map[string]*domain.WorkSession{end.Format(timeutil.DateLayout): closed},
	}
	svc := SessionService{Sessions: store, Users: fakeRateSource{rate: 20}}

	_, err := svc.CheckOut(context.Background(), CheckOutInput{UserID: 1, EndTime: end})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	store := &fakeSessionStore{}
	svc := SessionService{Sessions: store, Users: fakeRateSource{}}

	_, err := svc.CheckOut(context.Background(), CheckOutInput{UserID: 1, EndTime: day(17, 0)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
