package service

import (
	"context"
	"strings"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
)

// VendorService manages vendor profiles: self-service upsert by the owner
// and verification by authorized callers.
type VendorService struct {
	repo     VendorRepository
	resolver *Resolver
}

// NewVendorService constructs a VendorService.
func NewVendorService(repo VendorRepository, resolver *Resolver) *VendorService {
	return &VendorService{repo: repo, resolver: resolver}
}

// UpsertCallerProfile creates the caller's profile or updates its name and logo.
func (s *VendorService) UpsertCallerProfile(ctx context.Context, caller models.Principal, companyName, logoURL string) (models.VendorID, error) {
	if err := RequireAuthenticated(caller); err != nil {
		return 0, err
	}
	name, err := models.ValidateCompanyName(companyName)
	if err != nil {
		return 0, err
	}
	return s.repo.UpsertVendorProfile(ctx, caller, name, strings.TrimSpace(logoURL))
}

// GetCallerProfile returns the caller's own profile, or None.
func (s *VendorService) GetCallerProfile(ctx context.Context, caller models.Principal) (models.Option[models.VendorProfile], error) {
	if err := RequireAuthenticated(caller); err != nil {
		return models.None[models.VendorProfile](), err
	}
	return s.repo.GetVendorProfileByOwner(ctx, caller)
}

// VerifyVendor marks the profile verified. Only authorized callers may verify.
func (s *VendorService) VerifyVendor(ctx context.Context, caller models.Principal, id models.VendorID) error {
	if err := s.resolver.RequireAuthorized(ctx, caller); err != nil {
		return err
	}
	return s.repo.VerifyVendor(ctx, id)
}

// GetProfile returns the profile with the given ID, or None.
func (s *VendorService) GetProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error) {
	return s.repo.GetVendorProfile(ctx, id)
}

// GetProfileByOwner returns the profile owned by the principal named by owner, or None.
func (s *VendorService) GetProfileByOwner(ctx context.Context, owner string) (models.Option[models.VendorProfile], error) {
	p, err := identity.Parse(strings.TrimSpace(owner))
	if err != nil {
		return models.None[models.VendorProfile](), err
	}
	return s.repo.GetVendorProfileByOwner(ctx, p)
}

// ListAll returns every profile to an authorized caller.
func (s *VendorService) ListAll(ctx context.Context, caller models.Principal) ([]models.VendorProfile, error) {
	if err := s.resolver.RequireAuthorized(ctx, caller); err != nil {
		return nil, err
	}
	return s.repo.ListVendorProfiles(ctx, false)
}

// ListVerified returns the verified vendor directory.
func (s *VendorService) ListVerified(ctx context.Context) ([]models.VendorProfile, error) {
	return s.repo.ListVendorProfiles(ctx, true)
}
