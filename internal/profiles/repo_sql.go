package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shopping-buddy/internal/shared/storage/db"
)

// SQLRepo stores profiles in the customer_profiles table. Driver selects the
// placeholder style and upsert statement.
type SQLRepo struct {
	DB     *sql.DB
	Driver string
}

func NewSQLRepo(database *sql.DB, driver string) (*SQLRepo, error) {
	if database == nil {
		return nil, errors.New("profiles: nil database")
	}
	if driver != db.DriverSQLite && driver != db.DriverPostgres {
		return nil, fmt.Errorf("profiles: unsupported driver %q", driver)
	}
	return &SQLRepo{DB: database, Driver: driver}, nil
}

func (r *SQLRepo) Get(ctx context.Context, customerID string) (Profile, error) {
	if r.Driver == db.DriverPostgres {
		return r.getPostgres(ctx, customerID)
	}
	return r.getSQLite(ctx, customerID)
}

func (r *SQLRepo) getSQLite(ctx context.Context, customerID string) (Profile, error) {
	const query = `
SELECT profile_summary, last_updated
FROM customer_profiles
WHERE customer_id = ?`
	var summary sql.NullString
	var updated sql.NullString
	err := r.DB.QueryRowContext(ctx, query, customerID).Scan(&summary, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if !summary.Valid {
		return Profile{}, ErrNotFound
	}
	profile := Profile{CustomerID: customerID, Summary: summary.String}
	if updated.Valid {
		if ts, perr := time.Parse(time.RFC3339Nano, updated.String); perr == nil {
			profile.UpdatedAt = ts
		}
	}
	return profile, nil
}

func (r *SQLRepo) getPostgres(ctx context.Context, customerID string) (Profile, error) {
	const query = `
SELECT profile_summary, last_updated
FROM customer_profiles
WHERE customer_id = $1`
	var summary sql.NullString
	var updated sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, customerID).Scan(&summary, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if !summary.Valid {
		return Profile{}, ErrNotFound
	}
	profile := Profile{CustomerID: customerID, Summary: summary.String}
	if updated.Valid {
		profile.UpdatedAt = updated.Time
	}
	return profile, nil
}

func (r *SQLRepo) Upsert(ctx context.Context, profile Profile) error {
	updated := profile.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	if r.Driver == db.DriverPostgres {
		const query = `
INSERT INTO customer_profiles (customer_id, profile_summary, last_updated)
VALUES ($1, $2, $3)
ON CONFLICT (customer_id) DO UPDATE SET
  profile_summary = EXCLUDED.profile_summary,
  last_updated = EXCLUDED.last_updated`
		_, err := r.DB.ExecContext(ctx, query, profile.CustomerID, profile.Summary, updated)
		return err
	}
	const query = `
INSERT OR REPLACE INTO customer_profiles (customer_id, profile_summary, last_updated)
VALUES (?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query, profile.CustomerID, profile.Summary, updated.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLRepo) Close() error {
	return r.DB.Close()
}
