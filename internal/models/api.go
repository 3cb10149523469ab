package models

// WhoAmIResponse is the body of GET /api/whoami.
type WhoAmIResponse struct {
	Principal Principal `json:"principal"`
}

// AuthzResponse is the body of GET /api/authz.
type AuthzResponse struct {
	Principal Principal `json:"principal"`
	Authorization
	IsAuthorized bool `json:"isAuthorized"`
}

// AdminRequest is the body of POST /api/admins.
type AdminRequest struct {
	Principal string `json:"principal"`
}

// VendorProfileRequest is the body of PUT /api/me/vendor.
type VendorProfileRequest struct {
	CompanyName string `json:"companyName"`
	LogoURL     string `json:"logoUrl"`
}

// IDResponse carries the identifier assigned by a create or upsert.
type IDResponse struct {
	ID uint64 `json:"id"`
}
