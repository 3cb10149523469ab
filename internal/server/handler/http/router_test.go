package http_test

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/repository/memory"
	handler "github.com/atinyakov/GophMarket/internal/server/handler/http"
	"github.com/atinyakov/GophMarket/internal/service"
)

var (
	ownerP  = identity.Encode([]byte("owner"))
	adminP  = identity.Encode([]byte("admin"))
	vendorP = identity.Encode([]byte("vendor"))
	otherP  = identity.Encode([]byte("other"))
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	st := memory.NewStore()
	resolver := service.NewResolver(st)
	products := service.NewProductService(st, st, nil)
	return handler.NewRouter(handler.RouterConfig{
		Authz:    &handler.AuthzHandler{Resolver: resolver, Bootstrap: service.NewBootstrapService(st)},
		Admins:   &handler.AdminHandler{Admins: service.NewAdminService(st, resolver)},
		Vendors:  &handler.VendorHandler{Vendors: service.NewVendorService(st, resolver), Storefront: products},
		Products: &handler.ProductHandler{Products: products},
		Health:   &handler.HealthHandler{},
	})
}

// call issues a request as caller; an empty caller sends no client certificate.
func call(t *testing.T, h http.Handler, caller models.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != "" {
		cert := &x509.Certificate{Subject: pkix.Name{CommonName: caller.String()}}
		req.TLS = &tls.ConnectionState{PeerCertificates: []*x509.Certificate{cert}}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode[models.ErrorResponse](t, rec)
	if body.Reason != "" {
		return body.Reason
	}
	return body.Error
}

func TestRouter_IdentityAndAuthz(t *testing.T) {
	h := newRouter(t)

	rec := call(t, h, "", http.MethodGet, "/api/whoami", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.AnonymousPrincipal, decode[models.WhoAmIResponse](t, rec).Principal)

	rec = call(t, h, "", http.MethodGet, "/api/authz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.AuthzResponse](t, rec).IsAuthorized)

	rec = call(t, h, "not-a-principal", http.MethodGet, "/api/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, h, "", http.MethodGet, "/api/owner", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestRouter_BootstrapFlow(t *testing.T) {
	h := newRouter(t)

	rec := call(t, h, "", http.MethodPost, "/api/owner/claim", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "not_authenticated", errorCode(t, rec))

	require.Equal(t, http.StatusNoContent, call(t, h, ownerP, http.MethodPost, "/api/owner/claim", nil).Code)
	rec = call(t, h, otherP, http.MethodPost, "/api/owner/claim", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_claimed", errorCode(t, rec))

	rec = call(t, h, otherP, http.MethodGet, "/api/owner", nil)
	assert.Equal(t, ownerP, decode[models.Principal](t, rec))

	require.Equal(t, http.StatusNoContent, call(t, h, adminP, http.MethodPost, "/api/admins/bootstrap", nil).Code)
	rec = call(t, h, otherP, http.MethodPost, "/api/admins/bootstrap", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_bootstrapped", errorCode(t, rec))

	rec = call(t, h, adminP, http.MethodGet, "/api/authz", nil)
	authz := decode[models.AuthzResponse](t, rec)
	assert.Equal(t, adminP, authz.Principal)
	assert.True(t, authz.IsAdmin)
	assert.True(t, authz.HasAnyAdmin)
	assert.True(t, authz.IsAuthorized)
}

func TestRouter_AdminAllowlist(t *testing.T) {
	h := newRouter(t)
	require.Equal(t, http.StatusNoContent, call(t, h, adminP, http.MethodPost, "/api/admins/bootstrap", nil).Code)

	rec := call(t, h, otherP, http.MethodGet, "/api/admins", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h, adminP, http.MethodDelete, "/api/admins/"+adminP.String(), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "last_admin", errorCode(t, rec))

	rec = call(t, h, adminP, http.MethodPost, "/api/admins", models.AdminRequest{Principal: "bogus"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_identity", errorCode(t, rec))

	require.Equal(t, http.StatusNoContent, call(t, h, adminP, http.MethodPost, "/api/admins", models.AdminRequest{Principal: otherP.String()}).Code)

	rec = call(t, h, otherP, http.MethodGet, "/api/admins", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Principal{adminP, otherP}, decode[[]models.Principal](t, rec))

	require.Equal(t, http.StatusNoContent, call(t, h, otherP, http.MethodDelete, "/api/admins/"+adminP.String(), nil).Code)
	rec = call(t, h, adminP, http.MethodGet, "/api/admins", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_VendorsAndProducts(t *testing.T) {
	h := newRouter(t)
	require.Equal(t, http.StatusNoContent, call(t, h, adminP, http.MethodPost, "/api/admins/bootstrap", nil).Code)

	rec := call(t, h, vendorP, http.MethodGet, "/api/me/vendor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())

	rec = call(t, h, vendorP, http.MethodPut, "/api/me/vendor", models.VendorProfileRequest{CompanyName: "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, vendorP, http.MethodPut, "/api/me/vendor", models.VendorProfileRequest{CompanyName: "Acme"})
	require.Equal(t, http.StatusOK, rec.Code)
	vendorID := decode[models.IDResponse](t, rec).ID
	path := "/api/vendors/" + itoa(vendorID)

	require.Equal(t, http.StatusForbidden, call(t, h, otherP, http.MethodPost, path+"/verify", nil).Code)
	require.Equal(t, http.StatusNotFound, call(t, h, adminP, http.MethodPost, "/api/vendors/999/verify", nil).Code)
	require.Equal(t, http.StatusBadRequest, call(t, h, adminP, http.MethodPost, "/api/vendors/abc/verify", nil).Code)
	require.Equal(t, http.StatusNoContent, call(t, h, adminP, http.MethodPost, path+"/verify", nil).Code)

	rec = call(t, h, "", http.MethodGet, "/api/vendors/verified", nil)
	require.Len(t, decode[[]models.VendorProfile](t, rec), 1)
	rec = call(t, h, "", http.MethodGet, "/api/vendors/by-owner/"+vendorP.String(), nil)
	profile := decode[models.VendorProfile](t, rec)
	assert.True(t, profile.IsVerified)
	assert.Equal(t, vendorP, profile.Owner)

	require.Equal(t, http.StatusForbidden, call(t, h, vendorP, http.MethodGet, "/api/vendors", nil).Code)
	require.Equal(t, http.StatusOK, call(t, h, adminP, http.MethodGet, "/api/vendors", nil).Code)

	draft := models.ProductInput{Title: "Mug", Price: 1999, Currency: "USD"}
	rec = call(t, h, vendorP, http.MethodPost, "/api/products", draft)
	require.Equal(t, http.StatusCreated, rec.Code)
	productPath := "/api/products/" + itoa(decode[models.IDResponse](t, rec).ID)

	rec = call(t, h, vendorP, http.MethodPost, "/api/products", models.ProductInput{Title: "Free", Price: 0, Currency: "USD"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h, "", http.MethodGet, "/api/products", nil)
	assert.Empty(t, decode[[]models.Product](t, rec))
	rec = call(t, h, otherP, http.MethodGet, productPath, nil)
	assert.Equal(t, "null\n", rec.Body.String())
	rec = call(t, h, vendorP, http.MethodGet, productPath, nil)
	assert.Equal(t, "Mug", decode[models.Product](t, rec).Title)

	draft.IsPublished = true
	rec = call(t, h, otherP, http.MethodPut, productPath, draft)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_owner", errorCode(t, rec))
	require.Equal(t, http.StatusNotFound, call(t, h, vendorP, http.MethodPut, "/api/products/404", draft).Code)
	require.Equal(t, http.StatusNoContent, call(t, h, vendorP, http.MethodPut, productPath, draft).Code)

	for _, p := range []string{"/api/products", "/api/products/verified", path + "/products"} {
		rec = call(t, h, "", http.MethodGet, p, nil)
		require.Equal(t, http.StatusOK, rec.Code, p)
		assert.Len(t, decode[[]models.Product](t, rec), 1, p)
	}
	require.Equal(t, http.StatusNotFound, call(t, h, "", http.MethodGet, "/api/vendors/77/products", nil).Code)

	rec = call(t, h, vendorP, http.MethodGet, "/api/me/products", nil)
	assert.Len(t, decode[[]models.Product](t, rec), 1)
	require.Equal(t, http.StatusUnauthorized, call(t, h, "", http.MethodGet, "/api/me/products", nil).Code)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	h := newRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString("title=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	h := newRouter(t)
	rec := call(t, h, "", http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := &handler.HealthHandler{Check: func() bool { return false }}
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type failingResolver struct{}

func (failingResolver) Resolve(ctx context.Context, p models.Principal) (models.Authorization, error) {
	return models.Authorization{}, errors.New("db down")
}

func TestAuthzHandler_ResolverFailureIsNotDenial(t *testing.T) {
	h := &handler.AuthzHandler{Resolver: failingResolver{}}
	rec := httptest.NewRecorder()
	h.Authz(rec, httptest.NewRequest(http.MethodGet, "/api/authz", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEqual(t, "not_authorized", decode[models.ErrorResponse](t, rec).Error)
}

func itoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}
