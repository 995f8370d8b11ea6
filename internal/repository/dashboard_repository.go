package repository

import (
	"context"
	"time"

	"carcare-backend/internal/db"
)

type DashboardRepository struct {
	DB *db.Postgres
}

// RecordTotals is a count + revenue rollup over one record kind.
type RecordTotals struct {
	TotalCount int64
	TotalPrice float64
}

// SessionTotals is the check-in counterpart: count + paid-out salary.
type SessionTotals struct {
	TotalCheckIns int64
	TotalSalary   float64
}

// TotalStats aggregates all three record kinds over one date window.
type TotalStats struct {
	CarWash     RecordTotals
	CarTransfer RecordTotals
	Sessions    SessionTotals
}

// UserTotals is a per-user rollup row used for payroll pre-checks.
type UserTotals struct {
	UserID      int64
	FirstName   string
	LastName    string
	TotalCount  int64
	WorkMinutes int64
	TotalSalary float64
}

// Totals aggregates washes, transfers and sessions created inside [from, to).
func (r DashboardRepository) Totals(ctx context.Context, from, to time.Time) (TotalStats, error) {
	var stats TotalStats

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(final_price),0)
		FROM car_washes
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&stats.CarWash.TotalCount, &stats.CarWash.TotalPrice); err != nil {
		return stats, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(final_price),0)
		FROM car_transfers
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&stats.CarTransfer.TotalCount, &stats.CarTransfer.TotalPrice); err != nil {
		return stats, err
	}

	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(daily_salary),0)
		FROM work_sessions
		WHERE created_at >= $1 AND created_at < $2
	`, from, to).Scan(&stats.Sessions.TotalCheckIns, &stats.Sessions.TotalSalary); err != nil {
		return stats, err
	}

	return stats, nil
}

// SessionTotalsByUser groups closed sessions inside [from, to) per user,
// feeding the payroll pre-check view.
func (r DashboardRepository) SessionTotalsByUser(ctx context.Context, from, to time.Time) ([]UserTotals, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT s.user_id, COALESCE(u.first_name,''), COALESCE(u.last_name,''),
		       COUNT(*), COALESCE(SUM(s.work_minutes),0), COALESCE(SUM(s.daily_salary),0)
		FROM work_sessions s
		LEFT JOIN users u ON u.id = s.user_id
		WHERE s.active = false AND s.start_time >= $1 AND s.start_time < $2
		GROUP BY s.user_id, u.first_name, u.last_name
		ORDER BY COALESCE(SUM(s.daily_salary),0) DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []UserTotals
	for rows.Next() {
		var it UserTotals
		if err := rows.Scan(&it.UserID, &it.FirstName, &it.LastName,
			&it.TotalCount, &it.WorkMinutes, &it.TotalSalary); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RecordTotalsByLocation groups washes and transfers together per location
// inside [from, to).
func (r DashboardRepository) RecordTotalsByLocation(ctx context.Context, from, to time.Time) (map[string]RecordTotals, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT l.location_name, COUNT(*), COALESCE(SUM(c.final_price),0)
		FROM (
			SELECT location_id, final_price, created_at FROM car_washes
			UNION ALL
			SELECT location_id, final_price, created_at FROM car_transfers
		) c
		JOIN locations l ON l.id = c.location_id
		WHERE c.created_at >= $1 AND c.created_at < $2
		GROUP BY l.location_name
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]RecordTotals)
	for rows.Next() {
		var (
			name string
			t    RecordTotals
		)
		if err := rows.Scan(&name, &t.TotalCount, &t.TotalPrice); err != nil {
			return nil, err
		}
		totals[name] = t
	}
	return totals, rows.Err()
}
