// Package ports declares the narrow interfaces the services consume, so
// storage can be swapped out in tests.
package ports

import (
	"context"
	"time"

	"carcare-backend/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SessionStore is the slice of session storage the check-in/out state
// machine needs.
type SessionStore interface {
	Create(ctx context.Context, s domain.WorkSession) (*domain.WorkSession, error)
	Get(ctx context.Context, id int64) (*domain.WorkSession, error)
	GetByUserAndDate(ctx context.Context, userID int64, day time.Time) (*domain.WorkSession, error)
	GetActiveByUser(ctx context.Context, userID int64) (*domain.WorkSession, error)
	StartBreak(ctx context.Context, sessionID int64, at time.Time) (*domain.Break, error)
	EndBreak(ctx context.Context, sessionID, breakID int64, at time.Time) (*domain.Break, error)
	Finalize(ctx context.Context, s domain.WorkSession) (*domain.WorkSession, error)
}

// RateSource resolves the employee whose hourly pay prices a session.
type RateSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// PriceTableSource loads the location whose table prices a record.
type PriceTableSource interface {
	Get(ctx context.Context, id int64) (*domain.Location, error)
}

// WashStore is the slice of wash storage the pricing handshake needs.
type WashStore interface {
	Create(ctx context.Context, w domain.CarWash) (*domain.CarWash, error)
	Get(ctx context.Context, id int64) (*domain.CarWash, error)
	Update(ctx context.Context, w domain.CarWash) (*domain.CarWash, error)
	HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error)
}

// TransferStore mirrors WashStore for transfer records.
type TransferStore interface {
	Create(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error)
	Get(ctx context.Context, id int64) (*domain.CarTransfer, error)
	Update(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error)
	HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error)
}
