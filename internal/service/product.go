package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/models"
)

// ProductService manages products. Only the owner may update a product;
// public queries see published products only.
type ProductService struct {
	products ProductRepository
	vendors  VendorRepository
	clock    *MonotonicClock
}

// NewProductService constructs a ProductService. A nil clock uses the wall clock.
func NewProductService(products ProductRepository, vendors VendorRepository, clock *MonotonicClock) *ProductService {
	if clock == nil {
		clock = NewMonotonicClock(nil)
	}
	return &ProductService{products: products, vendors: vendors, clock: clock}
}

// CreateProduct stores a product owned by caller and returns its ID.
func (s *ProductService) CreateProduct(ctx context.Context, caller models.Principal, in models.ProductInput) (models.ProductID, error) {
	if err := RequireAuthenticated(caller); err != nil {
		return 0, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return 0, err
	}
	return s.products.CreateProduct(ctx, caller, in, s.clock.Now())
}

// UpdateProduct replaces the fields of product id. CreatedAt is kept and
// UpdatedAt refreshed. Ownership is checked before the input is validated and
// again by the repository as part of the write.
func (s *ProductService) UpdateProduct(ctx context.Context, caller models.Principal, id models.ProductID, in models.ProductInput) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	current, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	p, ok := current.Get()
	if !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if p.Owner != caller {
		return models.ErrNotOwner
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	return s.products.UpdateProduct(ctx, id, caller, in, s.clock.Now())
}

// GetProduct returns the product if it is published or caller owns it.
// Drafts of other owners are reported as absent.
func (s *ProductService) GetProduct(ctx context.Context, caller models.Principal, id models.ProductID) (models.Option[models.Product], error) {
	got, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return models.None[models.Product](), err
	}
	p, ok := got.Get()
	if !ok || p.IsPublished || (!caller.IsAnonymous() && p.Owner == caller) {
		return got, nil
	}
	return models.None[models.Product](), nil
}

// ListPublished returns the generic catalog.
func (s *ProductService) ListPublished(ctx context.Context) ([]models.Product, error) {
	return s.products.ListProducts(ctx, models.ProductFilter{PublishedOnly: true})
}

// ListVerified returns published products whose owner is a verified vendor.
func (s *ProductService) ListVerified(ctx context.Context) ([]models.Product, error) {
	return s.products.ListProducts(ctx, models.ProductFilter{PublishedOnly: true, VerifiedVendorsOnly: true})
}

// ListCallerProducts returns all of the caller's products, drafts included.
func (s *ProductService) ListCallerProducts(ctx context.Context, caller models.Principal) ([]models.Product, error) {
	if err := RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	return s.products.ListProducts(ctx, models.ProductFilter{Owner: caller})
}

// ListVendorProducts returns the published products of the vendor's owner.
func (s *ProductService) ListVendorProducts(ctx context.Context, id models.VendorID) ([]models.Product, error) {
	vendor, err := s.vendors.GetVendorProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	v, ok := vendor.Get()
	if !ok {
		return nil, fmt.Errorf("vendor %d: %w", id, models.ErrNotFound)
	}
	return s.products.ListProducts(ctx, models.ProductFilter{Owner: v.Owner, PublishedOnly: true})
}
