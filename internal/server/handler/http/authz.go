package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// AuthzResolver resolves the caller's authorization predicates.
type AuthzResolver interface {
	Resolve(ctx context.Context, p models.Principal) (models.Authorization, error)
}

// BootstrapService performs the one-shot ownership and first-admin claims.
type BootstrapService interface {
	GetAppOwner(ctx context.Context) (models.Option[models.Principal], error)
	ClaimAppOwner(ctx context.Context, caller models.Principal) error
	ClaimFirstAdmin(ctx context.Context, caller models.Principal) error
}

// AuthzHandler serves identity, authorization and bootstrap endpoints.
type AuthzHandler struct {
	Resolver  AuthzResolver
	Bootstrap BootstrapService
	Log       *zap.Logger
	Metrics   *telemetry.Metrics
}

// WhoAmI handles GET /api/whoami. Unauthenticated callers see the anonymous principal.
func (h *AuthzHandler) WhoAmI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.WhoAmIResponse{Principal: middleware.PrincipalFromContext(r.Context())})
}

// Authz handles GET /api/authz. It never fails for anonymous callers.
func (h *AuthzHandler) Authz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.PrincipalFromContext(ctx)

	authz, err := h.Resolver.Resolve(ctx, caller)
	if err != nil {
		h.Metrics.RecordAuthzDecision(ctx, "error")
		writeError(w, r, h.Log, err)
		return
	}
	h.Metrics.RecordAuthzDecision(ctx, decision(caller, authz))

	writeJSON(w, http.StatusOK, models.AuthzResponse{
		Principal:     caller,
		Authorization: authz,
		IsAuthorized:  authz.IsAuthorized(),
	})
}

func decision(caller models.Principal, authz models.Authorization) string {
	switch {
	case caller.IsAnonymous():
		return "anonymous"
	case authz.IsAppOwner:
		return "owner"
	case authz.IsAdmin:
		return "admin"
	default:
		return "denied"
	}
}

// GetAppOwner handles GET /api/owner; the body is null until claimed.
func (h *AuthzHandler) GetAppOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.Bootstrap.GetAppOwner(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, owner)
}

// ClaimAppOwner handles POST /api/owner/claim.
func (h *AuthzHandler) ClaimAppOwner(w http.ResponseWriter, r *http.Request) {
	err := h.Bootstrap.ClaimAppOwner(r.Context(), middleware.PrincipalFromContext(r.Context()))
	h.Metrics.RecordMutation(r.Context(), "claim_app_owner", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClaimFirstAdmin handles POST /api/admins/bootstrap.
func (h *AuthzHandler) ClaimFirstAdmin(w http.ResponseWriter, r *http.Request) {
	err := h.Bootstrap.ClaimFirstAdmin(r.Context(), middleware.PrincipalFromContext(r.Context()))
	h.Metrics.RecordMutation(r.Context(), "bootstrap_first_admin", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
