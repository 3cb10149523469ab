// Package models defines the core data structures for principals, vendors and products.
package models

import (
	"strings"
	"time"
)

// AnonymousPrincipal is the textual form of the principal carried by callers
// that presented no identity.
const AnonymousPrincipal Principal = "2vxsx-fae"

// Principal is the opaque identity of a caller as supplied by the identity provider.
type Principal string

// IsAnonymous reports whether the principal carries no identity.
func (p Principal) IsAnonymous() bool {
	return p == "" || p == AnonymousPrincipal
}

// String returns the textual form of the principal.
func (p Principal) String() string {
	return string(p)
}

// VendorID identifies a vendor profile. IDs are assigned by the store in increasing order.
type VendorID uint64

// ProductID identifies a product. IDs are assigned by the store in increasing order.
type ProductID uint64

// VendorProfile describes the storefront of a single owning principal.
type VendorProfile struct {
	// ID is the store-assigned identifier of the profile.
	ID VendorID `json:"id"`
	// Owner is the principal that upserted the profile.
	Owner Principal `json:"user"`
	// CompanyName is the display name of the vendor.
	CompanyName string `json:"companyName"`
	// LogoURL optionally references the vendor's logo.
	LogoURL string `json:"logoUrl"`
	// IsVerified is set by an admin or the app owner, never by the owner.
	IsVerified bool `json:"isVerified"`
}

// Product is a listing owned by a single principal.
type Product struct {
	ID          ProductID `json:"id"`
	Owner       Principal `json:"ownerPrincipal"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	// Price is expressed in minor currency units (cents for USD).
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"imageUrl"`
	Category    string    `json:"category"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductInput holds the caller-supplied fields of a product.
type ProductInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	IsPublished bool   `json:"isPublished"`
}

// Normalize trims surrounding whitespace and upper-cases the currency code.
func (in ProductInput) Normalize() ProductInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// Authorization is the resolved privilege set of a caller. It is derived per query
// and must not be kept across mutations.
type Authorization struct {
	IsAppOwner  bool `json:"isAppOwner"`
	IsAdmin     bool `json:"isAdmin"`
	HasAnyAdmin bool `json:"hasAnyAdmin"`
}

// IsAuthorized reports whether the caller may use admin features.
func (a Authorization) IsAuthorized() bool {
	return a.IsAppOwner || a.IsAdmin
}

// ProductFilter narrows product listings. The zero value lists every product.
type ProductFilter struct {
	// Owner restricts the listing to one owning principal when non-empty.
	Owner Principal
	// PublishedOnly hides drafts.
	PublishedOnly bool
	// VerifiedVendorsOnly keeps products whose owner has a verified vendor profile.
	VerifiedVendorsOnly bool
}
