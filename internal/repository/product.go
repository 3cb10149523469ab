package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/GophMarket/internal/models"
)

const productColumns = `p.id, p.owner, p.title, p.description, p.price, p.currency, p.image_url, p.category, p.is_published, p.created_at, p.updated_at`

// PostgresProductRepository stores products.
type PostgresProductRepository struct {
	DB *sql.DB
}

// NewPostgresProductRepository creates a new PostgresProductRepository.
func NewPostgresProductRepository(db *sql.DB) *PostgresProductRepository {
	return &PostgresProductRepository{DB: db}
}

// CreateProduct inserts a product owned by owner with both timestamps set to now.
func (r *PostgresProductRepository) CreateProduct(ctx context.Context, owner models.Principal, in models.ProductInput, now time.Time) (models.ProductID, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO products (owner, title, description, price, currency, image_url, category, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id
	`, owner.String(), in.Title, in.Description, in.Price, in.Currency, in.ImageURL, in.Category, in.IsPublished, now).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateProduct: %w", mapPQError(err))
	}
	return models.ProductID(id), nil
}

// UpdateProduct overwrites the caller-supplied fields of product id and sets
// updated_at to now. The row is locked before the ownership check so the check
// and the write see the same owner.
func (r *PostgresProductRepository) UpdateProduct(ctx context.Context, id models.ProductID, owner models.Principal, in models.ProductInput, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT owner FROM products WHERE id = $1 FOR UPDATE`, int64(id)).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lock product: %w", err)
	}
	if models.Principal(current) != owner {
		return models.ErrNotOwner
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products SET
			title = $2, description = $3, price = $4, currency = $5,
			image_url = $6, category = $7, is_published = $8, updated_at = $9
		WHERE id = $1
	`, int64(id), in.Title, in.Description, in.Price, in.Currency, in.ImageURL, in.Category, in.IsPublished, now)
	if err != nil {
		return fmt.Errorf("update product: %w", mapPQError(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetProduct fetches a product by ID regardless of its publication state.
func (r *PostgresProductRepository) GetProduct(ctx context.Context, id models.ProductID) (models.Option[models.Product], error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, int64(id))
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.None[models.Product](), nil
	}
	if err != nil {
		return models.None[models.Product](), fmt.Errorf("GetProduct: %w", err)
	}
	return models.Some(p), nil
}

// ListProducts returns the products matching filter ordered by ID.
func (r *PostgresProductRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query, args := buildProductQuery(filter)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListProducts: %w", err)
	}
	return products, nil
}

func buildProductQuery(filter models.ProductFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.Owner != "" {
		args = append(args, filter.Owner.String())
		where = append(where, "p.owner = $"+strconv.Itoa(len(args)))
	}
	if filter.PublishedOnly {
		where = append(where, "p.is_published")
	}
	if filter.VerifiedVendorsOnly {
		where = append(where, "EXISTS (SELECT 1 FROM vendor_profiles v WHERE v.owner = p.owner AND v.is_verified)")
	}

	query := `SELECT ` + productColumns + ` FROM products p`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	return query + ` ORDER BY p.id`, args
}

func scanProduct(s scanner) (models.Product, error) {
	var (
		p     models.Product
		id    int64
		owner string
	)
	err := s.Scan(&id, &owner, &p.Title, &p.Description, &p.Price, &p.Currency, &p.ImageURL,
		&p.Category, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt)
	p.ID = models.ProductID(id)
	p.Owner = models.Principal(owner)
	return p, err
}
