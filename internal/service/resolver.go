package service

import (
	"context"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Resolver answers authorization questions about a principal from the
// current repository state. It has no side effects and caches nothing.
type Resolver struct {
	repo AuthzRepository
}

// NewResolver constructs a Resolver over repo.
func NewResolver(repo AuthzRepository) *Resolver {
	return &Resolver{repo: repo}
}

// IsAppOwner reports whether p is the claimed app owner.
// Anonymous principals are never the app owner.
func (r *Resolver) IsAppOwner(ctx context.Context, p models.Principal) (bool, error) {
	if p.IsAnonymous() {
		return false, nil
	}
	owner, err := r.repo.GetAppOwner(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve app owner: %w", err)
	}
	got, ok := owner.Get()
	return ok && got == p, nil
}

// IsAdmin reports whether p is in the admin allowlist.
func (r *Resolver) IsAdmin(ctx context.Context, p models.Principal) (bool, error) {
	if p.IsAnonymous() {
		return false, nil
	}
	ok, err := r.repo.IsAdmin(ctx, p)
	if err != nil {
		return false, fmt.Errorf("resolve admin: %w", err)
	}
	return ok, nil
}

// HasAnyAdmin reports whether the admin allowlist is non-empty.
func (r *Resolver) HasAnyAdmin(ctx context.Context) (bool, error) {
	ok, err := r.repo.HasAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve has admin: %w", err)
	}
	return ok, nil
}

// IsAuthorized reports whether p is the app owner or an admin. Nothing else
// grants authorization.
func (r *Resolver) IsAuthorized(ctx context.Context, p models.Principal) (bool, error) {
	owner, err := r.IsAppOwner(ctx, p)
	if err != nil || owner {
		return owner, err
	}
	return r.IsAdmin(ctx, p)
}

// Resolve computes all predicates for p.
func (r *Resolver) Resolve(ctx context.Context, p models.Principal) (models.Authorization, error) {
	var (
		authz models.Authorization
		err   error
	)
	if authz.IsAppOwner, err = r.IsAppOwner(ctx, p); err != nil {
		return models.Authorization{}, err
	}
	if authz.IsAdmin, err = r.IsAdmin(ctx, p); err != nil {
		return models.Authorization{}, err
	}
	if authz.HasAnyAdmin, err = r.HasAnyAdmin(ctx); err != nil {
		return models.Authorization{}, err
	}
	return authz, nil
}

// RequireAuthorized fails with models.ErrNotAuthenticated for anonymous callers
// and models.ErrNotAuthorized for callers that are neither app owner nor admin.
func (r *Resolver) RequireAuthorized(ctx context.Context, p models.Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	ok, err := r.IsAuthorized(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return models.ErrNotAuthorized
	}
	return nil
}

// RequireAuthenticated fails with models.ErrNotAuthenticated for anonymous callers.
func RequireAuthenticated(p models.Principal) error {
	if p.IsAnonymous() {
		return models.ErrNotAuthenticated
	}
	return nil
}
