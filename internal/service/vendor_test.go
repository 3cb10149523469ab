package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atinyakov/GophMarket/internal/models"
)

func TestVendorService_Upsert(t *testing.T) {
	var gotName, gotLogo string
	repo := &mockVendorRepo{
		UpsertVendorProfileFunc: func(ctx context.Context, o models.Principal, name, logo string) (models.VendorID, error) {
			require.Equal(t, vendor, o)
			gotName, gotLogo = name, logo
			return 3, nil
		},
	}
	svc := NewVendorService(repo, NewResolver(staticAuthz(owner)))
	ctx := context.Background()

	id, err := svc.UpsertCallerProfile(ctx, vendor, "  Acme  ", " https://acme.test/logo.png ")
	require.NoError(t, err)
	require.Equal(t, models.VendorID(3), id)
	require.Equal(t, "Acme", gotName)
	require.Equal(t, "https://acme.test/logo.png", gotLogo)

	_, err = svc.UpsertCallerProfile(ctx, vendor, "   ", "")
	require.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.UpsertCallerProfile(ctx, models.AnonymousPrincipal, "", "")
	require.ErrorIs(t, err, models.ErrNotAuthenticated)
}

func TestVendorService_Verify(t *testing.T) {
	var verified []models.VendorID
	repo := &mockVendorRepo{
		VerifyVendorFunc: func(ctx context.Context, id models.VendorID) error {
			verified = append(verified, id)
			return nil
		},
	}
	svc := NewVendorService(repo, NewResolver(staticAuthz(owner, admin)))
	ctx := context.Background()

	require.NoError(t, svc.VerifyVendor(ctx, admin, 1))
	require.NoError(t, svc.VerifyVendor(ctx, owner, 2))
	require.ErrorIs(t, svc.VerifyVendor(ctx, vendor, 1), models.ErrNotAuthorized)
	require.ErrorIs(t, svc.VerifyVendor(ctx, models.AnonymousPrincipal, 1), models.ErrNotAuthenticated)
	require.Equal(t, []models.VendorID{1, 2}, verified)
}

func TestVendorService_Queries(t *testing.T) {
	profile := models.VendorProfile{ID: 1, Owner: vendor, CompanyName: "Acme"}
	repo := &mockVendorRepo{
		GetVendorProfileByOwnerFunc: func(ctx context.Context, o models.Principal) (models.Option[models.VendorProfile], error) {
			if o == vendor {
				return models.Some(profile), nil
			}
			return models.None[models.VendorProfile](), nil
		},
		ListVendorProfilesFunc: func(ctx context.Context, verifiedOnly bool) ([]models.VendorProfile, error) {
			require.True(t, verifiedOnly)
			return []models.VendorProfile{}, nil
		},
	}
	svc := NewVendorService(repo, NewResolver(staticAuthz(owner)))
	ctx := context.Background()

	got, err := svc.GetProfileByOwner(ctx, vendor.String())
	require.NoError(t, err)
	require.True(t, got.IsSome())

	got, err = svc.GetCallerProfile(ctx, stranger)
	require.NoError(t, err)
	require.False(t, got.IsSome())

	_, err = svc.GetProfileByOwner(ctx, "bogus")
	require.ErrorIs(t, err, models.ErrInvalidIdentity)

	_, err = svc.GetCallerProfile(ctx, models.AnonymousPrincipal)
	require.ErrorIs(t, err, models.ErrNotAuthenticated)

	_, err = svc.ListAll(ctx, vendor)
	require.ErrorIs(t, err, models.ErrNotAuthorized)

	list, err := svc.ListVerified(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}
