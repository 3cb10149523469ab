package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/middleware"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// VendorService manages vendor profiles.
type VendorService interface {
	UpsertCallerProfile(ctx context.Context, caller models.Principal, companyName, logoURL string) (models.VendorID, error)
	GetCallerProfile(ctx context.Context, caller models.Principal) (models.Option[models.VendorProfile], error)
	VerifyVendor(ctx context.Context, caller models.Principal, id models.VendorID) error
	GetProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error)
	GetProfileByOwner(ctx context.Context, owner string) (models.Option[models.VendorProfile], error)
	ListAll(ctx context.Context, caller models.Principal) ([]models.VendorProfile, error)
	ListVerified(ctx context.Context) ([]models.VendorProfile, error)
}

// StorefrontService lists the published products of a vendor.
type StorefrontService interface {
	ListVendorProducts(ctx context.Context, id models.VendorID) ([]models.Product, error)
}

// VendorHandler serves the vendor profile endpoints.
type VendorHandler struct {
	Vendors    VendorService
	Storefront StorefrontService
	Log        *zap.Logger
	Metrics    *telemetry.Metrics
}

// List handles GET /api/vendors (authorized callers only).
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Vendors.ListAll(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// ListVerified handles GET /api/vendors/verified.
func (h *VendorHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Vendors.ListVerified(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// Get handles GET /api/vendors/{id}; the body is null for unknown IDs.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := vendorIDParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	profile, err := h.Vendors.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetByOwner handles GET /api/vendors/by-owner/{principal}.
func (h *VendorHandler) GetByOwner(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Vendors.GetProfileByOwner(r.Context(), chi.URLParam(r, "principal"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Products handles GET /api/vendors/{id}/products.
func (h *VendorHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, err := vendorIDParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	products, err := h.Storefront.ListVendorProducts(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetMine handles GET /api/me/vendor.
func (h *VendorHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Vendors.GetCallerProfile(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpsertMine handles PUT /api/me/vendor.
func (h *VendorHandler) UpsertMine(w http.ResponseWriter, r *http.Request) {
	var req models.VendorProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	id, err := h.Vendors.UpsertCallerProfile(r.Context(), middleware.PrincipalFromContext(r.Context()), req.CompanyName, req.LogoURL)
	h.Metrics.RecordMutation(r.Context(), "upsert_vendor_profile", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, models.IDResponse{ID: uint64(id)})
}

// Verify handles POST /api/vendors/{id}/verify.
func (h *VendorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := vendorIDParam(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	err = h.Vendors.VerifyVendor(r.Context(), middleware.PrincipalFromContext(r.Context()), id)
	h.Metrics.RecordMutation(r.Context(), "verify_vendor", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func vendorIDParam(r *http.Request) (models.VendorID, error) {
	id, err := parseID(chi.URLParam(r, "id"))
	return models.VendorID(id), err
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id %q", models.ErrInvalidInput, s)
	}
	return id, nil
}
