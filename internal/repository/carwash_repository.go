package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type CarWashRepository struct {
	DB *db.Postgres
}

// RecordFilter narrows service-record listings. From/To bound CreatedAt as a
// half-open range.
type RecordFilter struct {
	UserID     *int64
	LocationID *int64
	Search     string
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int // 0 disables pagination (export path)
}

// CarWashWithNames joins user and location display fields onto a record.
type CarWashWithNames struct {
	domain.CarWash
	FirstName    string
	LastName     string
	LocationName string
}

const carWashColumns = `id, user_id, license_plate, location_id, car_type, wash_type,
	special_price, final_price, suspect, created_by, created_at, updated_at`

func (r CarWashRepository) Create(ctx context.Context, w domain.CarWash) (*domain.CarWash, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO car_washes
			(user_id, license_plate, location_id, car_type, wash_type, special_price,
			 final_price, suspect, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		RETURNING `+carWashColumns+`
	`, w.UserID, w.LicensePlate, w.LocationID, w.CarType, w.WashType, w.SpecialPrice,
		w.FinalPrice, w.Suspect, w.CreatedBy)
	return scanCarWash(row)
}

func (r CarWashRepository) Get(ctx context.Context, id int64) (*domain.CarWash, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+carWashColumns+` FROM car_washes WHERE id=$1`, id)
	w, err := scanCarWash(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// HasPlateWithin reports whether another wash for the plate exists inside
// [from, to), excluding a record under edit.
func (r CarWashRepository) HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM car_washes
			WHERE license_plate=$1 AND created_at >= $2 AND created_at < $3 AND id <> $4
		)
	`, plate, from, to, excludeID).Scan(&exists)
	return exists, err
}

func (r CarWashRepository) Update(ctx context.Context, w domain.CarWash) (*domain.CarWash, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE car_washes SET
			license_plate=$2, location_id=$3, car_type=$4, wash_type=$5, special_price=$6,
			final_price=$7, suspect=$8, updated_at=now()
		WHERE id=$1
		RETURNING `+carWashColumns+`
	`, w.ID, w.LicensePlate, w.LocationID, w.CarType, w.WashType, w.SpecialPrice,
		w.FinalPrice, w.Suspect)
	updated, err := scanCarWash(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// ClearSuspect is the explicit admin acknowledgement of a flagged record.
func (r CarWashRepository) ClearSuspect(ctx context.Context, id int64) (*domain.CarWash, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE car_washes SET suspect=false, updated_at=now() WHERE id=$1
		RETURNING `+carWashColumns+`
	`, id)
	w, err := scanCarWash(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (r CarWashRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM car_washes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of washes with joined names, newest first, plus the
// total match count.
func (r CarWashRepository) List(ctx context.Context, f RecordFilter) ([]CarWashWithNames, int64, error) {
	where, args := recordWhere(f, "w")

	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM car_washes w `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT w.id, w.user_id, w.license_plate, w.location_id, w.car_type, w.wash_type,
		       w.special_price, w.final_price, w.suspect, w.created_by, w.created_at, w.updated_at,
		       COALESCE(u.first_name,''), COALESCE(u.last_name,''), COALESCE(l.location_name,'')
		FROM car_washes w
		LEFT JOIN users u ON u.id = w.user_id
		LEFT JOIN locations l ON l.id = w.location_id ` + where + `
		ORDER BY w.created_at DESC`
	if f.Limit > 0 {
		n := len(args)
		limit, offset := pageBounds(f.Page, f.Limit)
		args = append(args, limit, offset)
		query += ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
	}
	rows, err := r.DB.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []CarWashWithNames
	for rows.Next() {
		var (
			item         CarWashWithNames
			washType     string
			specialPrice pgtype.Float8
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.LicensePlate, &item.LocationID,
			&item.CarType, &washType, &specialPrice, &item.FinalPrice, &item.Suspect,
			&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
			&item.FirstName, &item.LastName, &item.LocationName); err != nil {
			return nil, 0, err
		}
		item.WashType = domain.WashType(washType)
		if specialPrice.Valid {
			v := specialPrice.Float64
			item.SpecialPrice = &v
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// recordWhere builds the shared service-record filter clause. alias is the
// table alias used in the outer query.
func recordWhere(f RecordFilter, alias string) (string, []any) {
	where := `WHERE 1=1`
	var args []any
	n := 0
	if f.UserID != nil {
		n++
		where += ` AND ` + alias + `.user_id = $` + strconv.Itoa(n)
		args = append(args, *f.UserID)
	}
	if f.LocationID != nil {
		n++
		where += ` AND ` + alias + `.location_id = $` + strconv.Itoa(n)
		args = append(args, *f.LocationID)
	}
	if f.Search != "" {
		n++
		where += ` AND ` + alias + `.license_plate ILIKE '%' || $` + strconv.Itoa(n) + ` || '%'`
		args = append(args, f.Search)
	}
	if f.From != nil {
		n++
		where += ` AND ` + alias + `.created_at >= $` + strconv.Itoa(n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		where += ` AND ` + alias + `.created_at < $` + strconv.Itoa(n)
		args = append(args, *f.To)
	}
	return where, args
}

func scanCarWash(row pgx.Row) (*domain.CarWash, error) {
	var (
		w            domain.CarWash
		washType     string
		specialPrice pgtype.Float8
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.LicensePlate, &w.LocationID, &w.CarType,
		&washType, &specialPrice, &w.FinalPrice, &w.Suspect, &w.CreatedBy,
		&w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	w.WashType = domain.WashType(washType)
	if specialPrice.Valid {
		v := specialPrice.Float64
		w.SpecialPrice = &v
	}
	return &w, nil
}
