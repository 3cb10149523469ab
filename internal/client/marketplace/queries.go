package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
)

func get[T any](c *Client, path string) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var out T
		err := c.do(ctx, http.MethodGet, path, nil, &out)
		return out, err
	}
}

// authz returns the caller's authorization as one snapshot, so the three
// predicates always come from the same backend answer.
func (c *Client) authz(ctx context.Context) (models.AuthzResponse, error) {
	return Fetch(ctx, c.cache, KeyAuthz, get[models.AuthzResponse](c, "/authz"))
}

// WhoAmI returns the caller's principal; the anonymous principal when
// the client presents no identity.
func (c *Client) WhoAmI(ctx context.Context) (models.Principal, error) {
	return Fetch(ctx, c.cache, KeyWhoAmI, func(ctx context.Context) (models.Principal, error) {
		resp, err := get[models.WhoAmIResponse](c, "/whoami")(ctx)
		return resp.Principal, err
	})
}

// IsCallerAppOwner reports whether the caller is the app owner.
func (c *Client) IsCallerAppOwner(ctx context.Context) (bool, error) {
	resp, err := c.authz(ctx)
	return resp.IsAppOwner, err
}

// IsCallerAdmin reports whether the caller is in the admin allowlist.
func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	resp, err := c.authz(ctx)
	return resp.IsAdmin, err
}

// HasAdmin reports whether any admin exists.
func (c *Client) HasAdmin(ctx context.Context) (bool, error) {
	resp, err := c.authz(ctx)
	return resp.HasAnyAdmin, err
}

// Authorization returns the caller's three predicates, possibly from the
// cache. An error means the authorization state is unknown.
func (c *Client) Authorization(ctx context.Context) (models.Authorization, error) {
	resp, err := c.authz(ctx)
	if err != nil {
		return models.Authorization{}, err
	}
	return resp.Authorization, nil
}

// RevalidateAuthorization drops the cached authorization and asks the backend
// again. Protected views call it on entry.
func (c *Client) RevalidateAuthorization(ctx context.Context) (models.Authorization, error) {
	c.cache.Invalidate(KeyAuthz)
	return c.Authorization(ctx)
}

// AppOwner returns the app owner, or None before it is claimed.
func (c *Client) AppOwner(ctx context.Context) (models.Option[models.Principal], error) {
	return Fetch(ctx, c.cache, KeyAppOwner, get[models.Option[models.Principal]](c, "/owner"))
}

// Admins lists the admin allowlist. Only authorized callers may list it.
func (c *Client) Admins(ctx context.Context) ([]models.Principal, error) {
	return Fetch(ctx, c.cache, KeyAdmins, get[[]models.Principal](c, "/admins"))
}

// AllVendors lists every vendor profile. Only authorized callers may list them.
func (c *Client) AllVendors(ctx context.Context) ([]models.VendorProfile, error) {
	return Fetch(ctx, c.cache, KeyAllVendors, get[[]models.VendorProfile](c, "/vendors"))
}

// VerifiedVendors lists verified vendor profiles.
func (c *Client) VerifiedVendors(ctx context.Context) ([]models.VendorProfile, error) {
	return Fetch(ctx, c.cache, KeyVerifiedVendors, get[[]models.VendorProfile](c, "/vendors/verified"))
}

// Vendor returns the vendor profile with the given ID.
func (c *Client) Vendor(ctx context.Context, id models.VendorID) (models.Option[models.VendorProfile], error) {
	return Fetch(ctx, c.cache, VendorKey(id), get[models.Option[models.VendorProfile]](c, fmt.Sprintf("/vendors/%d", id)))
}

// VendorByOwner returns the vendor profile owned by the given principal.
func (c *Client) VendorByOwner(ctx context.Context, owner string) (models.Option[models.VendorProfile], error) {
	p, err := identity.Parse(owner)
	if err != nil {
		return models.None[models.VendorProfile](), err
	}
	path := "/vendors/by-owner/" + url.PathEscape(p.String())
	return Fetch(ctx, c.cache, VendorByOwnerKey(p.String()), get[models.Option[models.VendorProfile]](c, path))
}

// CallerVendorProfile returns the caller's own vendor profile.
func (c *Client) CallerVendorProfile(ctx context.Context) (models.Option[models.VendorProfile], error) {
	return Fetch(ctx, c.cache, KeyCallerVendorProfile, get[models.Option[models.VendorProfile]](c, "/me/vendor"))
}

// VendorProducts lists the published products of a vendor's storefront.
func (c *Client) VendorProducts(ctx context.Context, id models.VendorID) ([]models.Product, error) {
	return Fetch(ctx, c.cache, VendorProductsKey(id), get[[]models.Product](c, fmt.Sprintf("/vendors/%d/products", id)))
}

// PublishedProducts lists the generic catalog.
func (c *Client) PublishedProducts(ctx context.Context) ([]models.Product, error) {
	return Fetch(ctx, c.cache, KeyPublishedProducts, get[[]models.Product](c, "/products"))
}

// VerifiedProducts lists published products of verified vendors.
func (c *Client) VerifiedProducts(ctx context.Context) ([]models.Product, error) {
	return Fetch(ctx, c.cache, KeyVerifiedProducts, get[[]models.Product](c, "/products/verified"))
}

// CallerProducts lists the caller's products, drafts included.
func (c *Client) CallerProducts(ctx context.Context) ([]models.Product, error) {
	return Fetch(ctx, c.cache, KeyCallerProducts, get[[]models.Product](c, "/me/products"))
}

// Product returns a product by ID. Drafts are visible to their owner only.
func (c *Client) Product(ctx context.Context, id models.ProductID) (models.Option[models.Product], error) {
	return Fetch(ctx, c.cache, ProductKey(id), get[models.Option[models.Product]](c, fmt.Sprintf("/products/%d", id)))
}
