package marketplace

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/money"
)

// ClaimAppOwner makes the caller the app owner. The owner queries are
// invalidated even when the claim fails so the actual owner is re-fetched.
func (c *Client) ClaimAppOwner(ctx context.Context) error {
	defer c.cache.Invalidate(claimAppOwnerKeys()...)
	return c.do(ctx, http.MethodPost, "/owner/claim", nil, nil)
}

// BootstrapFirstAdmin makes the caller the first admin. The admin queries are
// invalidated even when the claim fails.
func (c *Client) BootstrapFirstAdmin(ctx context.Context) error {
	defer c.cache.Invalidate(bootstrapFirstAdminKeys()...)
	return c.do(ctx, http.MethodPost, "/admins/bootstrap", nil, nil)
}

// invalidateAfter drops keys once a mutation succeeded or when its outcome
// is unknown, since the backend may have applied it.
func (c *Client) invalidateAfter(err error, keys ...string) {
	if err == nil || errors.Is(err, models.ErrUnavailable) {
		c.cache.Invalidate(keys...)
	}
}

// AddAdmin adds the principal to the admin allowlist.
func (c *Client) AddAdmin(ctx context.Context, principal string) error {
	p, err := identity.ParseUser(principal)
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodPost, "/admins", models.AdminRequest{Principal: p.String()}, nil)
	c.invalidateAfter(err, adminMutationKeys()...)
	return err
}

// RemoveAdmin removes the principal from the admin allowlist.
func (c *Client) RemoveAdmin(ctx context.Context, principal string) error {
	p, err := identity.ParseUser(principal)
	if err != nil {
		return err
	}
	err = c.do(ctx, http.MethodDelete, "/admins/"+url.PathEscape(p.String()), nil, nil)
	c.invalidateAfter(err, adminMutationKeys()...)
	return err
}

// UpsertCallerVendorProfile creates or updates the caller's vendor profile.
func (c *Client) UpsertCallerVendorProfile(ctx context.Context, companyName, logoURL string) (models.VendorID, error) {
	name, err := models.ValidateCompanyName(companyName)
	if err != nil {
		return 0, err
	}
	var resp models.IDResponse
	req := models.VendorProfileRequest{CompanyName: name, LogoURL: strings.TrimSpace(logoURL)}
	err = c.do(ctx, http.MethodPut, "/me/vendor", req, &resp)
	id := models.VendorID(resp.ID)
	c.invalidateAfter(err, upsertVendorKeys(id, err == nil)...)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// VerifyVendor marks a vendor profile as verified.
func (c *Client) VerifyVendor(ctx context.Context, id models.VendorID) error {
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/vendors/%d/verify", id), nil, nil)
	c.invalidateAfter(err, verifyVendorKeys(id)...)
	return err
}

// CreateProduct creates a product owned by the caller.
func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (models.ProductID, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return 0, err
	}
	var resp models.IDResponse
	err := c.do(ctx, http.MethodPost, "/products", in, &resp)
	id := models.ProductID(resp.ID)
	c.invalidateAfter(err, createProductKeys(id, err == nil)...)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateProduct replaces the fields of one of the caller's products.
func (c *Client) UpdateProduct(ctx context.Context, id models.ProductID, in models.ProductInput) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), in, nil)
	c.invalidateAfter(err, updateProductKeys(id)...)
	return err
}

// ParsePrice converts a user-entered decimal price into minor units.
func ParsePrice(text, currencyCode string) (int64, error) {
	amount, err := money.Parse(text, currencyCode)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return amount, nil
}
