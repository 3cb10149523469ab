// Package db opens the PostgreSQL connection and creates the marketplace schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Schema is idempotent; it runs on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS app_owner (
    id BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
    principal TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS admins (
    seq BIGSERIAL UNIQUE,
    principal TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS vendor_profiles (
    id BIGSERIAL PRIMARY KEY,
    owner TEXT NOT NULL UNIQUE,
    company_name TEXT NOT NULL CHECK (company_name <> ''),
    logo_url TEXT NOT NULL DEFAULT '',
    is_verified BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    owner TEXT NOT NULL,
    title TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL DEFAULT '',
    price BIGINT NOT NULL CHECK (price > 0),
    currency CHAR(3) NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS products_owner_idx ON products (owner);
CREATE INDEX IF NOT EXISTS products_published_idx ON products (id) WHERE is_published;
`

const connectTimeout = 5 * time.Second

// InitPostgres opens dsn, verifies the connection and applies Schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies Schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
