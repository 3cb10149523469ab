// Package service implements the marketplace authorization model and the
// operations gated by it, delegating persistence to repositories.
package service

import (
	"context"
	"time"

	"github.com/atinyakov/GophMarket/internal/models"
)

// AuthzRepository persists the app owner and the admin allowlist.
// Implementations must make each method atomic with respect to the others.
type AuthzRepository interface {
	// GetAppOwner returns None until the app owner has been claimed.
	GetAppOwner(ctx context.Context) (models.Option[models.Principal], error)
	// ClaimAppOwner returns models.ErrAlreadyClaimed if an owner is already set.
	ClaimAppOwner(ctx context.Context, p models.Principal) error
	IsAdmin(ctx context.Context, p models.Principal) (bool, error)
	HasAdmin(ctx context.Context) (bool, error)
	// ListAdmins returns the allowlist in a stable order.
	ListAdmins(ctx context.Context) ([]models.Principal, error)
	// ClaimFirstAdmin returns models.ErrAlreadyBootstrapped if the allowlist is not empty.
	ClaimFirstAdmin(ctx context.Context, p models.Principal) error
	AddAdmin(ctx context.Context, p models.Principal) error
	// RemoveAdmin returns models.ErrLastAdmin if the allowlist has exactly one member.
	RemoveAdmin(ctx context.Context, p models.Principal) error
}

// VendorRepository persists vendor profiles.
type VendorRepository interface {
	// UpsertVendorProfile never changes the verification flag of an existing profile.
	UpsertVendorProfile(ctx context.Context, owner models.Principal, companyName, logoURL string) (models.VendorID, error)
	// VerifyVendor returns an error wrapping models.ErrNotFound for unknown IDs.
	VerifyVendor(ctx context.Context, id models.VendorID) error
	GetVendorProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error)
	GetVendorProfileByOwner(ctx context.Context, owner models.Principal) (models.Option[models.VendorProfile], error)
	ListVendorProfiles(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	CreateProduct(ctx context.Context, owner models.Principal, in models.ProductInput, now time.Time) (models.ProductID, error)
	// UpdateProduct returns an error wrapping models.ErrNotFound for unknown IDs
	// and models.ErrNotOwner when owner does not own the product.
	UpdateProduct(ctx context.Context, id models.ProductID, owner models.Principal, in models.ProductInput, now time.Time) error
	GetProduct(ctx context.Context, id models.ProductID) (models.Option[models.Product], error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}
