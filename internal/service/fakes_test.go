package service

import (
	"context"
	"time"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
)

var (
	owner    = identity.Encode([]byte{0x01, 0x01})
	admin    = identity.Encode([]byte{0x02, 0x02})
	vendor   = identity.Encode([]byte{0x03, 0x03})
	stranger = identity.Encode([]byte{0x04, 0x04, 0x04})
)

type mockAuthzRepo struct {
	GetAppOwnerFunc     func(ctx context.Context) (models.Option[models.Principal], error)
	ClaimAppOwnerFunc   func(ctx context.Context, p models.Principal) error
	IsAdminFunc         func(ctx context.Context, p models.Principal) (bool, error)
	HasAdminFunc        func(ctx context.Context) (bool, error)
	ListAdminsFunc      func(ctx context.Context) ([]models.Principal, error)
	ClaimFirstAdminFunc func(ctx context.Context, p models.Principal) error
	AddAdminFunc        func(ctx context.Context, p models.Principal) error
	RemoveAdminFunc     func(ctx context.Context, p models.Principal) error
}

func (m *mockAuthzRepo) GetAppOwner(ctx context.Context) (models.Option[models.Principal], error) {
	return m.GetAppOwnerFunc(ctx)
}
func (m *mockAuthzRepo) ClaimAppOwner(ctx context.Context, p models.Principal) error {
	return m.ClaimAppOwnerFunc(ctx, p)
}
func (m *mockAuthzRepo) IsAdmin(ctx context.Context, p models.Principal) (bool, error) {
	return m.IsAdminFunc(ctx, p)
}
func (m *mockAuthzRepo) HasAdmin(ctx context.Context) (bool, error) {
	return m.HasAdminFunc(ctx)
}
func (m *mockAuthzRepo) ListAdmins(ctx context.Context) ([]models.Principal, error) {
	return m.ListAdminsFunc(ctx)
}
func (m *mockAuthzRepo) ClaimFirstAdmin(ctx context.Context, p models.Principal) error {
	return m.ClaimFirstAdminFunc(ctx, p)
}
func (m *mockAuthzRepo) AddAdmin(ctx context.Context, p models.Principal) error {
	return m.AddAdminFunc(ctx, p)
}
func (m *mockAuthzRepo) RemoveAdmin(ctx context.Context, p models.Principal) error {
	return m.RemoveAdminFunc(ctx, p)
}

// staticAuthz returns a repo where owner is the app owner and admins are the allowlist.
// Mutating methods are left nil so unexpected calls panic.
func staticAuthz(appOwner models.Principal, admins ...models.Principal) *mockAuthzRepo {
	return &mockAuthzRepo{
		GetAppOwnerFunc: func(ctx context.Context) (models.Option[models.Principal], error) {
			if appOwner == "" {
				return models.None[models.Principal](), nil
			}
			return models.Some(appOwner), nil
		},
		IsAdminFunc: func(ctx context.Context, p models.Principal) (bool, error) {
			for _, a := range admins {
				if a == p {
					return true, nil
				}
			}
			return false, nil
		},
		HasAdminFunc: func(ctx context.Context) (bool, error) {
			return len(admins) > 0, nil
		},
	}
}

type mockVendorRepo struct {
	UpsertVendorProfileFunc     func(ctx context.Context, owner models.Principal, companyName, logoURL string) (models.VendorID, error)
	VerifyVendorFunc            func(ctx context.Context, id models.VendorID) error
	GetVendorProfileFunc        func(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error)
	GetVendorProfileByOwnerFunc func(ctx context.Context, owner models.Principal) (models.Option[models.VendorProfile], error)
	ListVendorProfilesFunc      func(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error)
}

func (m *mockVendorRepo) UpsertVendorProfile(ctx context.Context, owner models.Principal, companyName, logoURL string) (models.VendorID, error) {
	return m.UpsertVendorProfileFunc(ctx, owner, companyName, logoURL)
}
func (m *mockVendorRepo) VerifyVendor(ctx context.Context, id models.VendorID) error {
	return m.VerifyVendorFunc(ctx, id)
}
func (m *mockVendorRepo) GetVendorProfile(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error) {
	return m.GetVendorProfileFunc(ctx, id)
}
func (m *mockVendorRepo) GetVendorProfileByOwner(ctx context.Context, owner models.Principal) (models.Option[models.VendorProfile], error) {
	return m.GetVendorProfileByOwnerFunc(ctx, owner)
}
func (m *mockVendorRepo) ListVendorProfiles(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error) {
	return m.ListVendorProfilesFunc(ctx, verifiedOnly)
}

type mockProductRepo struct {
	CreateProductFunc func(ctx context.Context, owner models.Principal, in models.ProductInput, now time.Time) (models.ProductID, error)
	UpdateProductFunc func(ctx context.Context, id models.ProductID, owner models.Principal, in models.ProductInput, now time.Time) error
	GetProductFunc    func(ctx context.Context, id models.ProductID) (models.Option[models.Product], error)
	ListProductsFunc  func(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
}

func (m *mockProductRepo) CreateProduct(ctx context.Context, owner models.Principal, in models.ProductInput, now time.Time) (models.ProductID, error) {
	return m.CreateProductFunc(ctx, owner, in, now)
}
func (m *mockProductRepo) UpdateProduct(ctx context.Context, id models.ProductID, owner models.Principal, in models.ProductInput, now time.Time) error {
	return m.UpdateProductFunc(ctx, id, owner, in, now)
}
func (m *mockProductRepo) GetProduct(ctx context.Context, id models.ProductID) (models.Option[models.Product], error) {
	return m.GetProductFunc(ctx, id)
}
func (m *mockProductRepo) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return m.ListProductsFunc(ctx, filter)
}
