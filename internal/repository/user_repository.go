package repository

import (
	"context"
	"errors"
	"math"
	"strconv"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	FirstName    string
	LastName     string
	Email        string
	Role         domain.UserRole
	PasswordHash string
}

type UpdateUserParams struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Street      string
	PostalCode  string
	Place       string
	AHV         string
	Description string
	Role        domain.UserRole
	HourlyPay   float64
	LocationID  *int64
	Active      bool
}

type UserFilter struct {
	Search  string
	Roles   []string
	Active  *bool
	Deleted bool
	Page    int
	Limit   int
}

const userColumns = `id, first_name, last_name, email, phone, street, postal_code, place, ahv,
	description, role, hourly_pay, location_id, password_hash, active, created_at, updated_at, deleted_at`

func (r UserRepository) Create(ctx context.Context, p CreateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, email, role, password_hash, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5, true, now(), now())
		RETURNING `+userColumns+`
	`, p.FirstName, p.LastName, p.Email, p.Role, p.PasswordHash)
	user, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE email=$1 AND deleted_at IS NULL
	`, email)
	return scanUserNotFound(row)
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE id=$1
	`, id)
	return scanUserNotFound(row)
}

// List returns a page of users plus the total match count.
func (r UserRepository) List(ctx context.Context, f UserFilter) ([]domain.User, int64, error) {
	var (
		where string
		args  []any
	)
	if f.Deleted {
		where = `WHERE deleted_at IS NOT NULL`
	} else {
		active := true
		if f.Active != nil {
			active = *f.Active
		}
		where = `WHERE deleted_at IS NULL AND active = $1`
		args = []any{active}
	}

	n := len(args)
	if f.Search != "" {
		where += ` AND (first_name ILIKE '%' || $` + strconv.Itoa(n+1) + ` || '%' OR last_name ILIKE '%' || $` + strconv.Itoa(n+1) + ` || '%')`
		args = append(args, f.Search)
		n++
	}
	if len(f.Roles) > 0 {
		where += ` AND role = ANY($` + strconv.Itoa(n+1) + `)`
		args = append(args, f.Roles)
		n++
	}

	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.Limit)
	args = append(args, limit, offset)
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users `+where+`
		ORDER BY updated_at DESC
		LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

func (r UserRepository) Update(ctx context.Context, id int64, p UpdateUserParams) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE users SET
			first_name=$2, last_name=$3, email=$4, phone=$5, street=$6, postal_code=$7,
			place=$8, ahv=$9, description=$10, role=$11, hourly_pay=$12, location_id=$13,
			active=$14, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+userColumns+`
	`, id, p.FirstName, p.LastName, p.Email, p.Phone, p.Street, p.PostalCode,
		p.Place, p.AHV, p.Description, p.Role, p.HourlyPay, p.LocationID, p.Active)
	user, err := scanUserNotFound(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, domain.ErrEmailInUse
		}
		return nil, err
	}
	return user, nil
}

func (r UserRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1 AND deleted_at IS NULL
	`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r UserRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET deleted_at=now(), active=false, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r UserRepository) Restore(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE users SET deleted_at=NULL, active=true, updated_at=now()
		WHERE id=$1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePermanently removes a user that has already been soft deleted.
func (r UserRepository) DeletePermanently(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		DELETE FROM users WHERE id=$1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// WithoutPayroll lists active users of the given roles that have no payroll
// record for monthYear.
func (r UserRepository) WithoutPayroll(ctx context.Context, monthYear string, roles []string) ([]domain.User, error) {
	if len(roles) == 0 {
		roles = []string{string(domain.RoleUser)}
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL AND active = true AND role = ANY($2)
		  AND id NOT IN (SELECT DISTINCT user_id FROM payrolls WHERE month_year = $1)
		ORDER BY last_name ASC, first_name ASC
	`, monthYear, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r UserRepository) CreatePasswordReset(ctx context.Context, reset domain.PasswordReset) error {
	_, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO password_resets (token, user_id, expires_at, created_at)
		VALUES ($1,$2,$3, now())
	`, reset.Token, reset.UserID, reset.ExpiresAt)
	return err
}

// ConsumePasswordReset deletes and returns the reset entry for token. Expired
// or unknown tokens map to ErrNotFound.
func (r UserRepository) ConsumePasswordReset(ctx context.Context, token string) (*domain.PasswordReset, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		DELETE FROM password_resets
		WHERE token=$1 AND expires_at > now()
		RETURNING token, user_id, expires_at, created_at
	`, token)
	var reset domain.PasswordReset
	if err := row.Scan(&reset.Token, &reset.UserID, &reset.ExpiresAt, &reset.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &reset, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		role       string
		locationID pgtype.Int8
		deletedAt  pgtype.Timestamptz
	)
	if err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Street, &u.PostalCode,
		&u.Place, &u.AHV, &u.Description, &role, &u.HourlyPay, &locationID,
		&u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	if locationID.Valid {
		u.LocationID = &locationID.Int64
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return &u, nil
}

func scanUserNotFound(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// pageBounds converts a 1-indexed page into LIMIT/OFFSET values.
func pageBounds(page, limit int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// NumPages returns ceil(total/limit) for list responses.
func NumPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 10
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
