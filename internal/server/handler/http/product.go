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

// ProductService manages products and their public visibility.
type ProductService interface {
	CreateProduct(ctx context.Context, caller models.Principal, in models.ProductInput) (models.ProductID, error)
	UpdateProduct(ctx context.Context, caller models.Principal, id models.ProductID, in models.ProductInput) error
	GetProduct(ctx context.Context, caller models.Principal, id models.ProductID) (models.Option[models.Product], error)
	ListPublished(ctx context.Context) ([]models.Product, error)
	ListVerified(ctx context.Context) ([]models.Product, error)
	ListCallerProducts(ctx context.Context, caller models.Principal) ([]models.Product, error)
}

// ProductHandler serves the product endpoints.
type ProductHandler struct {
	Products ProductService
	Log      *zap.Logger
	Metrics  *telemetry.Metrics
}

// ListPublished handles GET /api/products.
func (h *ProductHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Products.ListPublished)
}

// ListVerified handles GET /api/products/verified.
func (h *ProductHandler) ListVerified(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Products.ListVerified)
}

// ListMine handles GET /api/me/products.
func (h *ProductHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func(ctx context.Context) ([]models.Product, error) {
		return h.Products.ListCallerProducts(ctx, middleware.PrincipalFromContext(ctx))
	})
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context) ([]models.Product, error)) {
	products, err := fetch(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}; the body is null when the product is
// missing or is another owner's draft.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	product, err := h.Products.GetProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), models.ProductID(id))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	id, err := h.Products.CreateProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	h.Metrics.RecordMutation(r.Context(), "create_product", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.IDResponse{ID: uint64(id)})
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	var in models.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	err = h.Products.UpdateProduct(r.Context(), middleware.PrincipalFromContext(r.Context()), models.ProductID(id), in)
	h.Metrics.RecordMutation(r.Context(), "update_product", resultCode(err))
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
