package service

import (
	"context"

	"github.com/atinyakov/GophMarket/internal/models"
)

// BootstrapService performs the one-shot transitions out of an empty
// authorization state. Preconditions are checked by the repository in the
// same atomic step as the write, never from a prior read.
type BootstrapService struct {
	repo AuthzRepository
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(repo AuthzRepository) *BootstrapService {
	return &BootstrapService{repo: repo}
}

// GetAppOwner returns the app owner, or None if unclaimed.
func (s *BootstrapService) GetAppOwner(ctx context.Context) (models.Option[models.Principal], error) {
	return s.repo.GetAppOwner(ctx)
}

// ClaimAppOwner makes caller the app owner if nobody has claimed it yet.
func (s *BootstrapService) ClaimAppOwner(ctx context.Context, caller models.Principal) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	return s.repo.ClaimAppOwner(ctx, caller)
}

// ClaimFirstAdmin makes caller the sole admin if the allowlist is empty.
// It does not depend on whether an app owner exists.
func (s *BootstrapService) ClaimFirstAdmin(ctx context.Context, caller models.Principal) error {
	if err := RequireAuthenticated(caller); err != nil {
		return err
	}
	return s.repo.ClaimFirstAdmin(ctx, caller)
}
