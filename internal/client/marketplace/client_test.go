package marketplace_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophMarket/internal/client/marketplace"
	"github.com/atinyakov/GophMarket/internal/client/rolemode"
	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/repository/memory"
	handler "github.com/atinyakov/GophMarket/internal/server/handler/http"
	"github.com/atinyakov/GophMarket/internal/service"
)

var _ rolemode.Authorizer = (*marketplace.Client)(nil)

var (
	ownerP  = identity.Encode([]byte("owner"))
	adminP  = identity.Encode([]byte("admin"))
	vendorP = identity.Encode([]byte("vendor"))
	otherP  = identity.Encode([]byte("other"))
)

type backend struct {
	url string
	key *rsa.PrivateKey
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	st := memory.NewStore()
	resolver := service.NewResolver(st)
	products := service.NewProductService(st, st, nil)
	srv := httptest.NewServer(handler.NewRouter(handler.RouterConfig{
		Authz:    &handler.AuthzHandler{Resolver: resolver, Bootstrap: service.NewBootstrapService(st)},
		Admins:   &handler.AdminHandler{Admins: service.NewAdminService(st, resolver)},
		Vendors:  &handler.VendorHandler{Vendors: service.NewVendorService(st, resolver), Storefront: products},
		Products: &handler.ProductHandler{Products: products},
		JWTKey:   &key.PublicKey,
	}))
	t.Cleanup(srv.Close)
	return &backend{url: srv.URL, key: key}
}

// client returns a client acting as p; an empty p is anonymous.
func (b *backend) client(t *testing.T, p models.Principal) *marketplace.Client {
	t.Helper()
	var opts []marketplace.Option
	if p != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
			Subject:   p.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(b.key)
		require.NoError(t, err)
		opts = append(opts, marketplace.WithBearerToken(token))
	}
	c, err := marketplace.New(b.url, opts...)
	require.NoError(t, err)
	return c
}

func TestClient_AnonymousCaller(t *testing.T) {
	ctx := context.Background()
	anon := newBackend(t).client(t, "")

	p, err := anon.WhoAmI(ctx)
	require.NoError(t, err)
	assert.True(t, p.IsAnonymous())

	a, err := anon.Authorization(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Authorization{}, a)

	assert.ErrorIs(t, anon.ClaimAppOwner(ctx), models.ErrNotAuthenticated)
	_, err = anon.CallerProducts(ctx)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestClient_BootstrapInvalidatesAuthorization(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	owner, admin, other := b.client(t, ownerP), b.client(t, adminP), b.client(t, otherP)

	a, err := owner.Authorization(ctx)
	require.NoError(t, err)
	require.False(t, a.IsAppOwner)

	require.NoError(t, owner.ClaimAppOwner(ctx))
	a, err = owner.Authorization(ctx)
	require.NoError(t, err)
	assert.True(t, a.IsAppOwner, "cached predicate must be re-fetched after the claim")

	// A losing claim still refreshes the owner view.
	got, err := other.AppOwner(ctx)
	require.NoError(t, err)
	assert.False(t, got.IsSome())
	err = other.ClaimAppOwner(ctx)
	assert.ErrorIs(t, err, models.ErrAlreadyClaimed)
	assert.ErrorIs(t, err, models.ErrPreconditionFailed)
	got, err = other.AppOwner(ctx)
	require.NoError(t, err)
	v, _ := got.Get()
	assert.Equal(t, ownerP, v)

	hasAdmin, err := admin.HasAdmin(ctx)
	require.NoError(t, err)
	require.False(t, hasAdmin)
	require.NoError(t, admin.BootstrapFirstAdmin(ctx))
	hasAdmin, err = admin.HasAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, hasAdmin)
	assert.ErrorIs(t, other.BootstrapFirstAdmin(ctx), models.ErrAlreadyBootstrapped)
}

func TestClient_AdminAllowlist(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	admin, other := b.client(t, adminP), b.client(t, otherP)
	require.NoError(t, admin.BootstrapFirstAdmin(ctx))

	list, err := admin.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Principal{adminP}, list)

	assert.ErrorIs(t, admin.RemoveAdmin(ctx, adminP.String()), models.ErrLastAdmin)
	assert.ErrorIs(t, admin.AddAdmin(ctx, "not a principal"), models.ErrInvalidIdentity)
	assert.ErrorIs(t, admin.AddAdmin(ctx, models.AnonymousPrincipal.String()), models.ErrInvalidIdentity)
	_, err = other.Admins(ctx)
	assert.ErrorIs(t, err, models.ErrNotAuthorized)

	require.NoError(t, admin.AddAdmin(ctx, otherP.String()))
	list, err = admin.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Principal{adminP, otherP}, list)

	require.NoError(t, admin.RemoveAdmin(ctx, otherP.String()))
	list, err = admin.Admins(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Principal{adminP}, list)
}

func TestClient_VendorAndProductLifecycle(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	admin, vendor, anon := b.client(t, adminP), b.client(t, vendorP), b.client(t, "")
	require.NoError(t, admin.BootstrapFirstAdmin(ctx))

	_, err := vendor.UpsertCallerVendorProfile(ctx, "   ", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	id, err := vendor.UpsertCallerVendorProfile(ctx, " Acme ", "https://acme.test/logo.png")
	require.NoError(t, err)
	mine, err := vendor.CallerVendorProfile(ctx)
	require.NoError(t, err)
	profile, ok := mine.Get()
	require.True(t, ok)
	assert.Equal(t, "Acme", profile.CompanyName)
	assert.False(t, profile.IsVerified)

	assert.ErrorIs(t, vendor.VerifyVendor(ctx, id), models.ErrNotAuthorized)
	assert.ErrorIs(t, admin.VerifyVendor(ctx, id+100), models.ErrNotFound)
	require.NoError(t, admin.VerifyVendor(ctx, id))

	byOwner, err := anon.VendorByOwner(ctx, vendorP.String())
	require.NoError(t, err)
	profile, _ = byOwner.Get()
	assert.True(t, profile.IsVerified)
	_, err = anon.VendorByOwner(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrInvalidIdentity)

	price, err := marketplace.ParsePrice("19.99", "USD")
	require.NoError(t, err)
	_, err = marketplace.ParsePrice("19,99", "USD")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = vendor.CreateProduct(ctx, models.ProductInput{Title: "Mug", Price: 0, Currency: "USD"})
	require.ErrorIs(t, err, models.ErrInvalidInput)

	pid, err := vendor.CreateProduct(ctx, models.ProductInput{Title: "Mug", Price: price, Currency: "usd"})
	require.NoError(t, err)

	published, err := anon.PublishedProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)
	draft, err := anon.Product(ctx, pid)
	require.NoError(t, err)
	assert.False(t, draft.IsSome())

	mineList, err := vendor.CallerProducts(ctx)
	require.NoError(t, err)
	require.Len(t, mineList, 1)
	created := mineList[0]

	err = admin.UpdateProduct(ctx, pid, models.ProductInput{Title: "Mine now", Price: 1, Currency: "USD"})
	assert.ErrorIs(t, err, models.ErrNotOwner)

	require.NoError(t, vendor.UpdateProduct(ctx, pid, models.ProductInput{
		Title: "Mug", Price: price, Currency: "USD", IsPublished: true,
	}))

	got, err := vendor.Product(ctx, pid)
	require.NoError(t, err)
	updated, ok := got.Get()
	require.True(t, ok)
	assert.True(t, updated.IsPublished)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	// The anonymous client's cached catalog is stale until its own
	// invalidation; a fresh view sees the published product.
	anon.Cache().Invalidate(marketplace.KeyPublishedProducts, marketplace.KeyVerifiedProducts, marketplace.VendorProductsKey(id))
	for _, list := range []func(context.Context) ([]models.Product, error){
		anon.PublishedProducts,
		anon.VerifiedProducts,
		func(ctx context.Context) ([]models.Product, error) { return anon.VendorProducts(ctx, id) },
	} {
		products, err := list(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	}
}

func TestClient_ErrorsBecomeUnavailable(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"gateway", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_authorized"}`, http.StatusBadGateway)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}},
		{"unknown error class", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte(`{"error":"teapot"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c, err := marketplace.New(srv.URL)
			require.NoError(t, err)

			_, err = c.IsCallerAdmin(ctx)
			assert.ErrorIs(t, err, models.ErrUnavailable)
			assert.False(t, errors.Is(err, models.ErrNotAuthorized))
		})
	}

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := marketplace.New(srv.URL)
	require.NoError(t, err)
	_, err = c.Authorization(ctx)
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestClient_RemoteErrorKeepsMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"vendor 9: not found"}`))
	}))
	defer srv.Close()

	c, err := marketplace.New(srv.URL)
	require.NoError(t, err)
	err = c.VerifyVendor(context.Background(), 9)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, "vendor 9: not found", err.Error())
}

func TestClient_GuardSeesAdminRemoval(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	admin, other := b.client(t, adminP), b.client(t, otherP)
	require.NoError(t, admin.BootstrapFirstAdmin(ctx))
	require.NoError(t, admin.AddAdmin(ctx, otherP.String()))

	sel := rolemode.NewSelector(rolemode.NewStore(filepath.Join(t.TempDir(), "state.json")), other)
	require.NoError(t, sel.Select(rolemode.Admin))
	got, err := sel.Guard(ctx, rolemode.Admin)
	require.NoError(t, err)
	require.Equal(t, rolemode.Granted, got)

	require.NoError(t, admin.RemoveAdmin(ctx, otherP.String()))

	// other's cache still holds the old answer; entering the view re-checks.
	a, err := other.Authorization(ctx)
	require.NoError(t, err)
	assert.True(t, a.IsAdmin)
	got, err = sel.Guard(ctx, rolemode.Admin)
	require.NoError(t, err)
	assert.Equal(t, rolemode.Denied, got)
	mode, err := sel.Mode()
	require.NoError(t, err)
	assert.Equal(t, rolemode.None, mode)
}

func TestClient_CreateProductDropsCachedAbsence(t *testing.T) {
	ctx := context.Background()
	b := newBackend(t)
	vendor := b.client(t, vendorP)
	_, err := vendor.UpsertCallerVendorProfile(ctx, "Acme", "")
	require.NoError(t, err)

	missing, err := vendor.Product(ctx, 1)
	require.NoError(t, err)
	require.False(t, missing.IsSome())

	pid, err := vendor.CreateProduct(ctx, models.ProductInput{Title: "Mug", Price: 500, Currency: "USD"})
	require.NoError(t, err)
	require.EqualValues(t, 1, pid)

	got, err := vendor.Product(ctx, pid)
	require.NoError(t, err)
	assert.True(t, got.IsSome())
}

func TestClient_AuthorizationIsOneSnapshot(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			_, _ = w.Write([]byte(`{"isAppOwner":false,"isAdmin":true,"hasAnyAdmin":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"isAppOwner":false,"isAdmin":false,"hasAnyAdmin":false}`))
	}))
	defer srv.Close()
	c, err := marketplace.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	isAdmin, err := c.IsCallerAdmin(ctx)
	require.NoError(t, err)
	a, err := c.Authorization(ctx)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	assert.Equal(t, models.Authorization{IsAdmin: true, HasAnyAdmin: true}, a)
	assert.EqualValues(t, 1, calls.Load())

	a, err = c.RevalidateAuthorization(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Authorization{}, a)
	assert.EqualValues(t, 2, calls.Load())
}

func TestClient_UnknownMutationOutcomeInvalidates(t *testing.T) {
	var authzCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/authz":
			authzCalls.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"isAdmin":true,"hasAnyAdmin":true}`))
		case "/api/admins":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"precondition_failed","reason":"last_admin"}`))
		}
	}))
	defer srv.Close()
	c, err := marketplace.New(srv.URL)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = c.Authorization(ctx)
	require.NoError(t, err)

	// A refused mutation changed nothing; the cached answer stays.
	err = c.RemoveAdmin(ctx, otherP.String())
	require.ErrorIs(t, err, models.ErrLastAdmin)
	_, err = c.Authorization(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, authzCalls.Load())

	// A mutation with an unknown outcome may have been applied.
	err = c.AddAdmin(ctx, otherP.String())
	require.ErrorIs(t, err, models.ErrUnavailable)
	_, err = c.Authorization(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, authzCalls.Load())
}
