package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"carcare-backend/internal/domain"
	"carcare-backend/internal/server/authctx"
	"carcare-backend/internal/service"
	"carcare-backend/internal/timeutil"
)

// stubSessionStore serves the conflict paths without a database.
type stubSessionStore struct {
	byDay map[string]*domain.WorkSession
}

func (s *stubSessionStore) Create(ctx context.Context, w domain.WorkSession) (*domain.WorkSession, error) {
	return nil, domain.ErrSessionExists
}

func (s *stubSessionStore) Get(ctx context.Context, id int64) (*domain.WorkSession, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessionStore) GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*domain.WorkSession, error) {
	if w, ok := s.byDay[day.Format(timeutil.DateLayout)]; ok {
		c := *w
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubSessionStore) GetActiveByUser(ctx context.Context, userID int64) (*domain.WorkSession, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessionStore) StartBreak(ctx context.Context, sessionID int64, at time.Time) (*domain.Break, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessionStore) EndBreak(ctx context.Context, sessionID, breakID int64, at time.Time) (*domain.Break, error) {
	return nil, domain.ErrNotFound
}

func (s *stubSessionStore) Finalize(ctx context.Context, w domain.WorkSession) (*domain.WorkSession, error) {
	return &w, nil
}

type stubRateSource struct{}

func (stubRateSource) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return &domain.User{ID: id, HourlyPay: 20}, nil
}

func sessionRequest(method, target string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	ctx := authctx.WithCurrentUser(r.Context(), authctx.CurrentUser{ID: 1, Role: domain.RoleUser})
	return r.WithContext(ctx)
}

func TestCheckInSecondTimeSameDayConflict(t *testing.T) {
	svc := service.SessionService{Sessions: &stubSessionStore{}, Users: stubRateSource{}}
	h := SessionHandler{Service: &svc}

	rec := httptest.NewRecorder()
	h.checkIn(rec, sessionRequest("POST", "/sessions/check-in"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckOutAfterCheckoutConflict(t *testing.T) {
	today := time.Now().Format(timeutil.DateLayout)
	closed := &domain.WorkSession{ID: 1, UserID: 1, StartTime: time.Now().Add(-8 * time.Hour), Active: false}
	store := &stubSessionStore{byDay: map[string]*domain.WorkSession{today: closed}}
	svc := service.SessionService{Sessions: store, Users: stubRateSource{}}
	h := SessionHandler{Service: &svc}

	rec := httptest.NewRecorder()
	h.checkOut(rec, sessionRequest("POST", "/sessions/check-out"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckOutWithoutSessionNotFound(t *testing.T) {
	svc := service.SessionService{Sessions: &stubSessionStore{}, Users: stubRateSource{}}
	h := SessionHandler{Service: &svc}

	rec := httptest.NewRecorder()
	h.checkOut(rec, sessionRequest("POST", "/sessions/check-out"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
