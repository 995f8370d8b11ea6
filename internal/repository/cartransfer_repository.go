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

type CarTransferRepository struct {
	DB *db.Postgres
}

// CarTransferWithNames joins user and location display fields onto a record.
type CarTransferWithNames struct {
	domain.CarTransfer
	FirstName    string
	LastName     string
	LocationName string
}

const carTransferColumns = `id, user_id, license_plate, location_id, car_type, transfer_type,
	transfer_method, transfer_distance, transfer_place, final_price, suspect, created_by,
	created_at, updated_at`

func (r CarTransferRepository) Create(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO car_transfers
			(user_id, license_plate, location_id, car_type, transfer_type, transfer_method,
			 transfer_distance, transfer_place, final_price, suspect, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11, now(), now())
		RETURNING `+carTransferColumns+`
	`, t.UserID, t.LicensePlate, t.LocationID, t.CarType, t.TransferType, t.TransferMethod,
		t.TransferDistance, t.TransferPlace, t.FinalPrice, t.Suspect, t.CreatedBy)
	return scanCarTransfer(row)
}

func (r CarTransferRepository) Get(ctx context.Context, id int64) (*domain.CarTransfer, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+carTransferColumns+` FROM car_transfers WHERE id=$1`, id)
	t, err := scanCarTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// HasPlateWithin reports whether another transfer for the plate exists inside
// [from, to), excluding a record under edit.
func (r CarTransferRepository) HasPlateWithin(ctx context.Context, plate string, from, to time.Time, excludeID int64) (bool, error) {
	var exists bool
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM car_transfers
			WHERE license_plate=$1 AND created_at >= $2 AND created_at < $3 AND id <> $4
		)
	`, plate, from, to, excludeID).Scan(&exists)
	return exists, err
}

func (r CarTransferRepository) Update(ctx context.Context, t domain.CarTransfer) (*domain.CarTransfer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE car_transfers SET
			license_plate=$2, location_id=$3, car_type=$4, transfer_type=$5, transfer_method=$6,
			transfer_distance=$7, transfer_place=$8, final_price=$9, suspect=$10, updated_at=now()
		WHERE id=$1
		RETURNING `+carTransferColumns+`
	`, t.ID, t.LicensePlate, t.LocationID, t.CarType, t.TransferType, t.TransferMethod,
		t.TransferDistance, t.TransferPlace, t.FinalPrice, t.Suspect)
	updated, err := scanCarTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// ClearSuspect is the explicit admin acknowledgement of a flagged record.
func (r CarTransferRepository) ClearSuspect(ctx context.Context, id int64) (*domain.CarTransfer, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE car_transfers SET suspect=false, updated_at=now() WHERE id=$1
		RETURNING `+carTransferColumns+`
	`, id)
	t, err := scanCarTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r CarTransferRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `DELETE FROM car_transfers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns a page of transfers with joined names, newest first, plus the
// total match count.
func (r CarTransferRepository) List(ctx context.Context, f RecordFilter) ([]CarTransferWithNames, int64, error) {
	where, args := recordWhere(f, "t")

	var total int64
	if err := r.DB.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM car_transfers t `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT t.id, t.user_id, t.license_plate, t.location_id, t.car_type, t.transfer_type,
		       t.transfer_method, t.transfer_distance, t.transfer_place, t.final_price,
		       t.suspect, t.created_by, t.created_at, t.updated_at,
		       COALESCE(u.first_name,''), COALESCE(u.last_name,''), COALESCE(l.location_name,'')
		FROM car_transfers t
		LEFT JOIN users u ON u.id = t.user_id
		LEFT JOIN locations l ON l.id = t.location_id ` + where + `
		ORDER BY t.created_at DESC`
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

	var items []CarTransferWithNames
	for rows.Next() {
		var (
			item     CarTransferWithNames
			tType    string
			tMethod  string
			distance pgtype.Float8
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.LicensePlate, &item.LocationID,
			&item.CarType, &tType, &tMethod, &distance, &item.TransferPlace, &item.FinalPrice,
			&item.Suspect, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt,
			&item.FirstName, &item.LastName, &item.LocationName); err != nil {
			return nil, 0, err
		}
		item.TransferType = domain.TransferType(tType)
		item.TransferMethod = domain.TransferMethod(tMethod)
		if distance.Valid {
			v := distance.Float64
			item.TransferDistance = &v
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func scanCarTransfer(row pgx.Row) (*domain.CarTransfer, error) {
	var (
		t        domain.CarTransfer
		tType    string
		tMethod  string
		distance pgtype.Float8
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.LicensePlate, &t.LocationID, &t.CarType,
		&tType, &tMethod, &distance, &t.TransferPlace, &t.FinalPrice, &t.Suspect,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.TransferType = domain.TransferType(tType)
	t.TransferMethod = domain.TransferMethod(tMethod)
	if distance.Valid {
		v := distance.Float64
		t.TransferDistance = &v
	}
	return &t, nil
}
