// Package repository provides PostgreSQL persistence for the authorization
// state, vendor profiles and products.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/models"
)

// lockAdmins serializes every statement that reads the size of the admin
// allowlist and then writes it. The mode conflicts with itself, so two
// concurrent removals cannot both observe two admins.
const lockAdmins = `LOCK TABLE admins IN SHARE ROW EXCLUSIVE MODE`

// PostgresAuthzRepository stores the app owner and the admin allowlist.
type PostgresAuthzRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresAuthzRepository creates a new PostgresAuthzRepository with the given database connection.
func NewPostgresAuthzRepository(db *sql.DB) *PostgresAuthzRepository {
	return &PostgresAuthzRepository{DB: db}
}

// GetAppOwner returns the app owner, or None if it was never claimed.
func (r *PostgresAuthzRepository) GetAppOwner(ctx context.Context) (models.Option[models.Principal], error) {
	var owner string
	err := r.DB.QueryRowContext(ctx, `SELECT principal FROM app_owner WHERE id`).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return models.None[models.Principal](), nil
	}
	if err != nil {
		return models.None[models.Principal](), fmt.Errorf("GetAppOwner: %w", err)
	}
	return models.Some(models.Principal(owner)), nil
}

// ClaimAppOwner records p as the app owner. The single-row table makes the
// claim atomic: exactly one concurrent caller inserts the row, every other
// caller gets ErrAlreadyClaimed.
func (r *PostgresAuthzRepository) ClaimAppOwner(ctx context.Context, p models.Principal) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO app_owner (id, principal) VALUES (TRUE, $1) ON CONFLICT (id) DO NOTHING`,
		p.String(),
	)
	if err != nil {
		return fmt.Errorf("ClaimAppOwner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ClaimAppOwner: %w", err)
	}
	if n == 0 {
		return models.ErrAlreadyClaimed
	}
	return nil
}

// IsAdmin reports whether p is in the admin allowlist.
func (r *PostgresAuthzRepository) IsAdmin(ctx context.Context, p models.Principal) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM admins WHERE principal = $1)`,
		p.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("IsAdmin: %w", err)
	}
	return exists, nil
}

// HasAdmin reports whether the admin allowlist is non-empty.
func (r *PostgresAuthzRepository) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM admins)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("HasAdmin: %w", err)
	}
	return exists, nil
}

// ListAdmins returns the allowlist in insertion order.
func (r *PostgresAuthzRepository) ListAdmins(ctx context.Context) ([]models.Principal, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT principal FROM admins ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("ListAdmins: %w", err)
	}
	defer rows.Close()

	admins := []models.Principal{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		admins = append(admins, models.Principal(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListAdmins: %w", err)
	}
	return admins, nil
}

// ClaimFirstAdmin adds p as the sole admin if the allowlist is empty,
// otherwise it returns ErrAlreadyBootstrapped and changes nothing.
func (r *PostgresAuthzRepository) ClaimFirstAdmin(ctx context.Context, p models.Principal) error {
	return r.withAdminsLocked(ctx, func(tx *sql.Tx, count int) error {
		if count > 0 {
			return models.ErrAlreadyBootstrapped
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO admins (principal) VALUES ($1)`, p.String()); err != nil {
			return fmt.Errorf("insert admin: %w", err)
		}
		return nil
	})
}

// AddAdmin adds p to the allowlist. Adding an existing admin is a no-op.
func (r *PostgresAuthzRepository) AddAdmin(ctx context.Context, p models.Principal) error {
	return r.withAdminsLocked(ctx, func(tx *sql.Tx, _ int) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admins (principal) VALUES ($1) ON CONFLICT (principal) DO NOTHING`,
			p.String(),
		)
		if err != nil {
			return fmt.Errorf("insert admin: %w", err)
		}
		return nil
	})
}

// RemoveAdmin removes p from the allowlist. It refuses with ErrLastAdmin while
// the allowlist has exactly one member, whoever that member is.
func (r *PostgresAuthzRepository) RemoveAdmin(ctx context.Context, p models.Principal) error {
	return r.withAdminsLocked(ctx, func(tx *sql.Tx, count int) error {
		if count == 1 {
			return models.ErrLastAdmin
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM admins WHERE principal = $1`, p.String()); err != nil {
			return fmt.Errorf("delete admin: %w", err)
		}
		return nil
	})
}

// withAdminsLocked runs fn inside a transaction holding the allowlist lock and
// passes it the current allowlist size. The transaction commits only if fn succeeds.
func (r *PostgresAuthzRepository) withAdminsLocked(ctx context.Context, fn func(tx *sql.Tx, count int) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, lockAdmins); err != nil {
		return fmt.Errorf("lock admins: %w", err)
	}
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if err := fn(tx, count); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
