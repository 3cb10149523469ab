package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/models"
)

const vendorColumns = `id, owner, company_name, logo_url, is_verified`

// PostgresVendorRepository stores vendor profiles.
type PostgresVendorRepository struct {
	DB *sql.DB
}

// NewPostgresVendorRepository creates a new PostgresVendorRepository.
func NewPostgresVendorRepository(db *sql.DB) *PostgresVendorRepository {
	return &PostgresVendorRepository{DB: db}
}

// UpsertVendorProfile creates the owner's profile or updates its name and logo
// in place. The verification flag is never touched.
func (r *PostgresVendorRepository) UpsertVendorProfile(ctx context.Context, owner models.Principal, companyName, logoURL string) (models.VendorID, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO vendor_profiles (owner, company_name, logo_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			logo_url = EXCLUDED.logo_url
		RETURNING id
	`, owner.String(), companyName, logoURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("UpsertVendorProfile: %w", mapPQError(err))
	}
	return models.VendorID(id), nil
}

// VerifyVendor marks the profile as verified. Verifying twice is a no-op.
func (r *PostgresVendorRepository) VerifyVendor(ctx context.Context, id models.VendorID) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE vendor_profiles SET is_verified = TRUE WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("VerifyVendor: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("VerifyVendor: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("vendor %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetVendorProfile fetches a profile by ID.
func (r *PostgresVendorRepository) GetVendorProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE id = $1`, int64(id))
	return scanVendorOption(row)
}

// GetVendorProfileByOwner fetches the profile owned by the given principal.
func (r *PostgresVendorRepository) GetVendorProfileByOwner(ctx context.Context, owner models.Principal) (models.Option[models.VendorProfile], error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendor_profiles WHERE owner = $1`, owner.String())
	return scanVendorOption(row)
}

// ListVendorProfiles returns profiles ordered by ID, optionally only verified ones.
func (r *PostgresVendorRepository) ListVendorProfiles(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendor_profiles`
	if verifiedOnly {
		query += ` WHERE is_verified`
	}
	query += ` ORDER BY id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListVendorProfiles: %w", err)
	}
	defer rows.Close()

	profiles := []models.VendorProfile{}
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		profiles = append(profiles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListVendorProfiles: %w", err)
	}
	return profiles, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVendor(s scanner) (models.VendorProfile, error) {
	var (
		v     models.VendorProfile
		id    int64
		owner string
	)
	err := s.Scan(&id, &owner, &v.CompanyName, &v.LogoURL, &v.IsVerified)
	v.ID = models.VendorID(id)
	v.Owner = models.Principal(owner)
	return v, err
}

func scanVendorOption(row *sql.Row) (models.Option[models.VendorProfile], error) {
	v, err := scanVendor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.None[models.VendorProfile](), nil
	}
	if err != nil {
		return models.None[models.VendorProfile](), fmt.Errorf("scan vendor: %w", err)
	}
	return models.Some(v), nil
}
