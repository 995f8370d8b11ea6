package repository

import (
	"context"
	"encoding/json"
	"errors"

	"carcare-backend/internal/db"
	"carcare-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

type LocationRepository struct {
	DB *db.Postgres
}

// LocationWithCount pairs a location with the number of users assigned to it.
type LocationWithCount struct {
	domain.Location
	UsersCount int64
}

const locationColumns = `id, location_name, location_type, car_types, created_by, created_at, updated_at`

func (r LocationRepository) Create(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	carTypes, err := json.Marshal(loc.CarTypes)
	if err != nil {
		return nil, err
	}
	row := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO locations (location_name, location_type, car_types, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING `+locationColumns+`
	`, loc.LocationName, loc.LocationType, carTypes, loc.CreatedBy)
	return scanLocation(row)
}

func (r LocationRepository) Get(ctx context.Context, id int64) (*domain.Location, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT `+locationColumns+` FROM locations
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	loc, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return loc, nil
}

// List returns all locations sorted by name together with assigned-user
// counts.
func (r LocationRepository) List(ctx context.Context) ([]LocationWithCount, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT l.id, l.location_name, l.location_type, l.car_types, l.created_by,
		       l.created_at, l.updated_at,
		       COUNT(u.id) AS users_count
		FROM locations l
		LEFT JOIN users u ON u.location_id = l.id AND u.deleted_at IS NULL
		WHERE l.deleted_at IS NULL
		GROUP BY l.id
		ORDER BY l.location_name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LocationWithCount
	for rows.Next() {
		var (
			item     LocationWithCount
			locType  string
			carTypes []byte
		)
		if err := rows.Scan(&item.ID, &item.LocationName, &locType, &carTypes,
			&item.CreatedBy, &item.CreatedAt, &item.UpdatedAt, &item.UsersCount); err != nil {
			return nil, err
		}
		item.LocationType = domain.LocationType(locType)
		if err := json.Unmarshal(carTypes, &item.CarTypes); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r LocationRepository) Update(ctx context.Context, loc domain.Location) (*domain.Location, error) {
	carTypes, err := json.Marshal(loc.CarTypes)
	if err != nil {
		return nil, err
	}
	row := r.DB.Pool.QueryRow(ctx, `
		UPDATE locations
		SET location_name=$2, location_type=$3, car_types=$4, updated_at=now()
		WHERE id=$1 AND deleted_at IS NULL
		RETURNING `+locationColumns+`
	`, loc.ID, loc.LocationName, loc.LocationType, carTypes)
	updated, err := scanLocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r LocationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE locations SET deleted_at=now(), updated_at=now()
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

// Restore clears a location's soft-delete mark.
func (r LocationRepository) Restore(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		UPDATE locations SET deleted_at=NULL, updated_at=now()
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

// DeletePermanently removes a location that has already been soft deleted.
// Referencing wash or transfer rows still block the delete at the database.
func (r LocationRepository) DeletePermanently(ctx context.Context, id int64) error {
	tag, err := r.DB.Pool.Exec(ctx, `
		DELETE FROM locations WHERE id=$1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanLocation(row pgx.Row) (*domain.Location, error) {
	var (
		loc      domain.Location
		locType  string
		carTypes []byte
	)
	if err := row.Scan(&loc.ID, &loc.LocationName, &locType, &carTypes,
		&loc.CreatedBy, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
		return nil, err
	}
	loc.LocationType = domain.LocationType(locType)
	if err := json.Unmarshal(carTypes, &loc.CarTypes); err != nil {
		return nil, err
	}
	return &loc, nil
}
