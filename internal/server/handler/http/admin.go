package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// AdminService manages the admin allowlist.
type AdminService interface {
	ListAdmins(ctx context.Context, caller models.Principal) ([]models.Principal, error)
	AddAdmin(ctx context.Context, caller models.Principal, target string) error
	RemoveAdmin(ctx context.Context, caller models.Principal, target string) error
}

// AdminHandler serves the allowlist endpoints.
type AdminHandler struct {
	Admins  AdminService
	Log     *zap.Logger
	Metrics *telemetry.Metrics
}

// List handles GET /api/admins.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.Admins.ListAdmins(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// Add handles POST /api/admins with body {"principal": "..."}.
func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	err := h.Admins.AddAdmin(r.Context(), middleware.PrincipalFromContext(r.Context()), req.Principal)
	h.Metrics.RecordMutation(r.Context(), "add_admin", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Remove handles DELETE /api/admins/{principal}.
func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "principal")
	err := h.Admins.RemoveAdmin(r.Context(), middleware.PrincipalFromContext(r.Context()), target)
	h.Metrics.RecordMutation(r.Context(), "remove_admin", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
