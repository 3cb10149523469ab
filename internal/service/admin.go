package service

import (
	"context"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
)

// AdminService manages the admin allowlist on behalf of authorized callers.
type AdminService struct {
	repo     AuthzRepository
	resolver *Resolver
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo AuthzRepository, resolver *Resolver) *AdminService {
	return &AdminService{repo: repo, resolver: resolver}
}

// ListAdmins returns the allowlist to an authorized caller.
func (s *AdminService) ListAdmins(ctx context.Context, caller models.Principal) ([]models.Principal, error) {
	if err := s.resolver.RequireAuthorized(ctx, caller); err != nil {
		return nil, err
	}
	return s.repo.ListAdmins(ctx)
}

// AddAdmin adds the principal named by target. Adding an existing admin
// succeeds without change.
func (s *AdminService) AddAdmin(ctx context.Context, caller models.Principal, target string) error {
	if err := s.resolver.RequireAuthorized(ctx, caller); err != nil {
		return err
	}
	p, err := identity.ParseUser(target)
	if err != nil {
		return err
	}
	return s.repo.AddAdmin(ctx, p)
}

// RemoveAdmin removes the principal named by target. It fails with
// models.ErrLastAdmin while the allowlist has one member, even if target
// is not that member.
func (s *AdminService) RemoveAdmin(ctx context.Context, caller models.Principal, target string) error {
	if err := s.resolver.RequireAuthorized(ctx, caller); err != nil {
		return err
	}
	p, err := identity.ParseUser(target)
	if err != nil {
		return err
	}
	return s.repo.RemoveAdmin(ctx, p)
}
