package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type PayrollRepository struct {
	DB *db.Postgres
}

type PayrollFilter struct {
	UserID *int64
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

const payrollColumns = `id, user_id, employer, worker, month_year, place_date, canton,
	billing_procedure, total_hours, hourly_pay, holiday_bonus, hourly_pay_gross,
	gross_salary, hourly_deduction, monthly_deduction, monthly_pay, taxes, created_by,
	created_at, updated_at`

func (r PayrollRepository) Create(ctx context.Context, p domain.Payroll) (*domain.Payroll, error) {
	employer, err := json.Marshal(p.Employer)
	if err != nil {
		return nil, err
	}
	worker, err := json.Marshal(p.Worker)
	if err != nil {
		return nil, err
	}
	taxes, err := json.Marshal(p.Taxes)
	if err != nil {
		return nil, err
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO payrolls
			(user_id, employer, worker, month_year, place_date, canton, billing_procedure,
			 total_hours, hourly_pay, holiday_bonus, hourly_pay_gross, gross_salary,
			 hourly_deduction, monthly_deduction, monthly_pay, taxes, created_by,
			 created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17, now(), now())
		RETURNING `+payrollColumns+`
	`, p.UserID, employer, worker, p.MonthYear, p.PlaceDate, p.Canton, p.BillingProcedure,
		p.TotalHours, p.HourlyPay, p.HolidayBonus, p.HourlyPayGross, p.GrossSalary,
		p.HourlyDeduction, p.MonthlyDeduction, p.MonthlyPay, taxes, p.CreatedBy)
	return scanPayroll(row)
}

func (r PayrollRepository) Get(ctx context.Context, id int64) (*domain.Payroll, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+payrollColumns+` FROM payrolls WHERE id=$1`, id)
	p, err := scanPayroll(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns a page of payrolls, newest first, plus the total match count.
func (r PayrollRepository) List(ctx context.Context, f PayrollFilter) ([]domain.Payroll, int64, error) {
	where := `WHERE 1=1`
	var args []any
	n := 0
	if f.UserID != nil {
		n++
		where += ` AND user_id = $` + strconv.Itoa(n)
		args = append(args, *f.UserID)
	}
	if f.From != nil {
		n++
		where += ` AND created_at >= $` + strconv.Itoa(n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		where += ` AND created_at < $` + strconv.Itoa(n)
		args = append(args, *f.To)
	}

	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM payrolls `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	args = append(args, limit, offset)
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+payrollColumns+` FROM payrolls `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	return items, total, rows.Err()
}

func (r PayrollRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM payrolls WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPayroll(row pgx.Row) (*domain.Payroll, error) {
	var (
		p        domain.Payroll
		employer []byte
		worker   []byte
		taxes    []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &employer, &worker, &p.MonthYear, &p.PlaceDate,
		&p.Canton, &p.BillingProcedure, &p.TotalHours, &p.HourlyPay, &p.HolidayBonus,
		&p.HourlyPayGross, &p.GrossSalary, &p.HourlyDeduction, &p.MonthlyDeduction,
		&p.MonthlyPay, &taxes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(employer, &p.Employer); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(worker, &p.Worker); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(taxes, &p.Taxes); err != nil {
		return nil, err
	}
	return &p, nil
}
