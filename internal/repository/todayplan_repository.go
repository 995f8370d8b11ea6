package repository

import (
	"context"
	"encoding/json"
	"errors"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type TodayPlanRepository struct {
	DB *db.Postgres
}

func (r TodayPlanRepository) Create(ctx context.Context, users map[string]any, createdBy int64) error {
	payload, err := json.Marshal(users)
	if err != nil {
		return err
	}
	_, err = r.DB.Pool.Exec(ctx, `
		INSERT INTO today_plans (users, created_by, created_at, updated_at)
		VALUES ($1,$2, now(), now())
	`, payload, createdBy)
	return err
}

// Get returns the current plan with the author's display name joined on.
func (r TodayPlanRepository) Get(ctx context.Context) (*domain.TodayPlan, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT p.id, p.users, p.created_by,
		       COALESCE(u.first_name || ' ' || u.last_name, 'User Deleted'),
		       p.created_at, p.updated_at
		FROM today_plans p
		LEFT JOIN users u ON u.id = p.created_by
		ORDER BY p.id ASC
		LIMIT 1
	`)
	var (
		plan  domain.TodayPlan
		users []byte
	)
	if err := row.Scan(&plan.ID, &users, &plan.CreatedBy, &plan.AuthorName,
		&plan.CreatedAt, &plan.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(users, &plan.Users); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r TodayPlanRepository) Update(ctx context.Context, id int64, users map[string]any, createdBy int64) error {
	payload, err := json.Marshal(users)
	if err != nil {
		return err
	}
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE today_plans SET users=$2, created_by=$3, updated_at=now() WHERE id=$1
	`, id, payload, createdBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
