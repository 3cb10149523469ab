// Package memory provides in-process implementations of the marketplace
// repositories. Data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Store holds the whole marketplace state behind one mutex, so every
// operation executes as if it were the only one running.
type Store struct {
	mu sync.RWMutex

	appOwner models.Principal
	admins   []models.Principal // insertion order

	vendors        map[models.VendorID]*models.VendorProfile
	vendorsByOwner map[models.Principal]models.VendorID
	lastVendorID   models.VendorID

	products      map[models.ProductID]*models.Product
	lastProductID models.ProductID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		vendors:        make(map[models.VendorID]*models.VendorProfile),
		vendorsByOwner: make(map[models.Principal]models.VendorID),
		products:       make(map[models.ProductID]*models.Product),
	}
}

// GetAppOwner returns the app owner, or None if it was never claimed.
func (s *Store) GetAppOwner(ctx context.Context) (models.Option[models.Principal], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.appOwner == "" {
		return models.None[models.Principal](), nil
	}
	return models.Some(s.appOwner), nil
}

// ClaimAppOwner sets the app owner once.
func (s *Store) ClaimAppOwner(ctx context.Context, p models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.appOwner != "" {
		return models.ErrAlreadyClaimed
	}
	s.appOwner = p
	return nil
}

// IsAdmin reports whether p is in the admin allowlist.
func (s *Store) IsAdmin(ctx context.Context, p models.Principal) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.adminIndex(p) >= 0, nil
}

// HasAdmin reports whether the admin allowlist is non-empty.
func (s *Store) HasAdmin(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.admins) > 0, nil
}

// ListAdmins returns a copy of the allowlist in insertion order.
func (s *Store) ListAdmins(ctx context.Context) ([]models.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.Principal{}, s.admins...), nil
}

// ClaimFirstAdmin adds p if the allowlist is empty.
func (s *Store) ClaimFirstAdmin(ctx context.Context, p models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.admins) > 0 {
		return models.ErrAlreadyBootstrapped
	}
	s.admins = append(s.admins, p)
	return nil
}

// AddAdmin adds p unless it is already present.
func (s *Store) AddAdmin(ctx context.Context, p models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adminIndex(p) < 0 {
		s.admins = append(s.admins, p)
	}
	return nil
}

// RemoveAdmin removes p; the last remaining admin is never removed.
func (s *Store) RemoveAdmin(ctx context.Context, p models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.admins) == 1 {
		return models.ErrLastAdmin
	}
	if i := s.adminIndex(p); i >= 0 {
		s.admins = append(s.admins[:i], s.admins[i+1:]...)
	}
	return nil
}

func (s *Store) adminIndex(p models.Principal) int {
	for i, a := range s.admins {
		if a == p {
			return i
		}
	}
	return -1
}

// UpsertVendorProfile creates or updates the owner's profile, keeping IsVerified.
func (s *Store) UpsertVendorProfile(ctx context.Context, owner models.Principal, companyName, logoURL string) (models.VendorID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.vendorsByOwner[owner]; ok {
		v := s.vendors[id]
		v.CompanyName = companyName
		v.LogoURL = logoURL
		return id, nil
	}

	s.lastVendorID++
	id := s.lastVendorID
	s.vendors[id] = &models.VendorProfile{
		ID:          id,
		Owner:       owner,
		CompanyName: companyName,
		LogoURL:     logoURL,
	}
	s.vendorsByOwner[owner] = id
	return id, nil
}

// VerifyVendor marks the profile as verified.
func (s *Store) VerifyVendor(ctx context.Context, id models.VendorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vendors[id]
	if !ok {
		return fmt.Errorf("vendor %d: %w", id, models.ErrNotFound)
	}
	v.IsVerified = true
	return nil
}

// GetVendorProfile fetches a profile by ID.
func (s *Store) GetVendorProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vendors[id]
	if !ok {
		return models.None[models.VendorProfile](), nil
	}
	return models.Some(*v), nil
}

// GetVendorProfileByOwner fetches the profile owned by owner.
func (s *Store) GetVendorProfileByOwner(ctx context.Context, owner models.Principal) (models.Option[models.VendorProfile], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.vendorsByOwner[owner]
	if !ok {
		return models.None[models.VendorProfile](), nil
	}
	return models.Some(*s.vendors[id]), nil
}

// ListVendorProfiles returns profiles ordered by ID.
func (s *Store) ListVendorProfiles(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.VendorProfile{}
	for _, v := range s.vendors {
		if verifiedOnly && !v.IsVerified {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateProduct stores a new product with both timestamps set to now.
func (s *Store) CreateProduct(ctx context.Context, owner models.Principal, in models.ProductInput, now time.Time) (models.ProductID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastProductID++
	id := s.lastProductID
	p := &models.Product{ID: id, Owner: owner, CreatedAt: now}
	applyInput(p, in, now)
	s.products[id] = p
	return id, nil
}

// UpdateProduct overwrites the product's fields if owner owns it.
func (s *Store) UpdateProduct(ctx context.Context, id models.ProductID, owner models.Principal, in models.ProductInput, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if p.Owner != owner {
		return models.ErrNotOwner
	}
	applyInput(p, in, now)
	return nil
}

func applyInput(p *models.Product, in models.ProductInput, now time.Time) {
	p.Title = in.Title
	p.Description = in.Description
	p.Price = in.Price
	p.Currency = in.Currency
	p.ImageURL = in.ImageURL
	p.Category = in.Category
	p.IsPublished = in.IsPublished
	p.UpdatedAt = now
}

// GetProduct fetches a product by ID regardless of its publication state.
func (s *Store) GetProduct(ctx context.Context, id models.ProductID) (models.Option[models.Product], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return models.None[models.Product](), nil
	}
	return models.Some(*p), nil
}

// ListProducts returns the products matching filter ordered by ID.
func (s *Store) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Product{}
	for _, p := range s.products {
		if filter.Owner != "" && p.Owner != filter.Owner {
			continue
		}
		if filter.PublishedOnly && !p.IsPublished {
			continue
		}
		if filter.VerifiedVendorsOnly && !s.ownerVerified(p.Owner) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ownerVerified(owner models.Principal) bool {
	id, ok := s.vendorsByOwner[owner]
	return ok && s.vendors[id].IsVerified
}
