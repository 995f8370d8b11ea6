package db

import "context"

// Migrate applies the schema. Statements are idempotent so startup can run
// them unconditionally.
func (p *Postgres) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			street TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			place TEXT NOT NULL DEFAULT '',
			ahv TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			hourly_pay DOUBLE PRECISION NOT NULL DEFAULT 0,
			location_id BIGINT,
			password_hash TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGSERIAL PRIMARY KEY,
			location_name TEXT NOT NULL,
			location_type TEXT NOT NULL,
			car_types JSONB NOT NULL DEFAULT '[]',
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS work_sessions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			session_date DATE NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT true,
			attempt INT NOT NULL DEFAULT 1,
			description TEXT NOT NULL DEFAULT '',
			hours TEXT NOT NULL DEFAULT '',
			work_minutes INT NOT NULL DEFAULT 0,
			daily_salary DOUBLE PRECISION NOT NULL DEFAULT 0,
			paid BOOLEAN NOT NULL DEFAULT false,
			suspect BOOLEAN NOT NULL DEFAULT false,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// One session per user per calendar day; the constraint, not a prior
		// read, is the conflict signal.
		`CREATE UNIQUE INDEX IF NOT EXISTS work_sessions_user_day
			ON work_sessions (user_id, session_date)`,
		`CREATE TABLE IF NOT EXISTS session_breaks (
			id BIGSERIAL PRIMARY KEY,
			session_id BIGINT NOT NULL REFERENCES work_sessions(id) ON DELETE CASCADE,
			start_break TIMESTAMPTZ NOT NULL,
			end_break TIMESTAMPTZ,
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS car_washes (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			license_plate TEXT NOT NULL,
			location_id BIGINT NOT NULL REFERENCES locations(id),
			car_type TEXT NOT NULL,
			wash_type TEXT NOT NULL,
			special_price DOUBLE PRECISION,
			final_price DOUBLE PRECISION NOT NULL,
			suspect BOOLEAN NOT NULL DEFAULT false,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS car_washes_plate_created
			ON car_washes (license_plate, created_at)`,
		`CREATE TABLE IF NOT EXISTS car_transfers (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			license_plate TEXT NOT NULL,
			location_id BIGINT NOT NULL REFERENCES locations(id),
			car_type TEXT NOT NULL,
			transfer_type TEXT NOT NULL,
			transfer_method TEXT NOT NULL,
			transfer_distance DOUBLE PRECISION,
			transfer_place TEXT NOT NULL DEFAULT '',
			final_price DOUBLE PRECISION NOT NULL,
			suspect BOOLEAN NOT NULL DEFAULT false,
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS car_transfers_plate_created
			ON car_transfers (license_plate, created_at)`,
		`CREATE TABLE IF NOT EXISTS payrolls (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			employer JSONB NOT NULL DEFAULT '{}',
			worker JSONB NOT NULL DEFAULT '{}',
			month_year TEXT NOT NULL,
			place_date TEXT NOT NULL DEFAULT '',
			canton TEXT NOT NULL DEFAULT '',
			billing_procedure TEXT NOT NULL DEFAULT '',
			total_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
			hourly_pay DOUBLE PRECISION NOT NULL DEFAULT 0,
			holiday_bonus DOUBLE PRECISION NOT NULL DEFAULT 0,
			hourly_pay_gross DOUBLE PRECISION NOT NULL DEFAULT 0,
			gross_salary DOUBLE PRECISION NOT NULL DEFAULT 0,
			hourly_deduction DOUBLE PRECISION NOT NULL DEFAULT 0,
			monthly_deduction DOUBLE PRECISION NOT NULL DEFAULT 0,
			monthly_pay DOUBLE PRECISION NOT NULL DEFAULT 0,
			taxes JSONB NOT NULL DEFAULT '{}',
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS today_plans (
			id BIGSERIAL PRIMARY KEY,
			users JSONB NOT NULL DEFAULT '{}',
			created_by BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS password_resets (
			token TEXT PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
