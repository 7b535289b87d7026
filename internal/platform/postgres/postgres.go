// Package postgres owns the pgx connection pool and the schema the stores
// assume.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool against the given URL and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the tables and indexes the stores depend on. Safe to
// run at every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			blood_group TEXT NOT NULL DEFAULT '',
			district TEXT NOT NULL DEFAULT '',
			upazila TEXT NOT NULL DEFAULT '',
			password_hash BYTEA NOT NULL,
			role TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS donation_requests (
			id UUID PRIMARY KEY,
			requester_email TEXT NOT NULL,
			requester_name TEXT NOT NULL,
			recipient_name TEXT NOT NULL,
			recipient_district TEXT NOT NULL,
			recipient_upazila TEXT NOT NULL,
			hospital_name TEXT NOT NULL,
			full_address TEXT NOT NULL,
			blood_group TEXT NOT NULL,
			donation_date TEXT NOT NULL,
			donation_time TEXT NOT NULL,
			request_message TEXT NOT NULL DEFAULT '',
			donation_status TEXT NOT NULL,
			donor_name TEXT,
			donor_email TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_donation_requests_status ON donation_requests (donation_status)`,
		`CREATE INDEX IF NOT EXISTS idx_donation_requests_requester ON donation_requests (requester_email)`,
		`CREATE INDEX IF NOT EXISTS idx_donation_requests_created ON donation_requests (created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS funding (
			id UUID PRIMARY KEY,
			user_name TEXT NOT NULL,
			user_email TEXT NOT NULL,
			amount BIGINT NOT NULL,
			transaction_id TEXT NOT NULL,
			funding_date TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
