package marketplace

import (
	"strconv"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Query keys.
const (
	KeyWhoAmI              = "whoami"
	KeyAppOwner            = "appOwner"
	KeyAuthz               = "authz"
	KeyAdmins              = "admins"
	KeyAllVendors          = "allVendors"
	KeyVerifiedVendors     = "verifiedVendors"
	KeyCallerVendorProfile = "callerVendorProfile"
	KeyPublishedProducts   = "publishedProducts"
	KeyVerifiedProducts    = "verifiedProducts"
	KeyCallerProducts      = "callerProducts"

	familyVendor         = "vendor"
	familyVendorByOwner  = "vendorByOwner"
	familyVendorProducts = "vendorProducts"
	familyProduct        = "product"
)

// VendorKey is the query key of a vendor profile by ID.
func VendorKey(id models.VendorID) string {
	return familyVendor + ":" + strconv.FormatUint(uint64(id), 10)
}

// VendorByOwnerKey is the query key of a vendor profile by owner.
func VendorByOwnerKey(owner string) string {
	return familyVendorByOwner + ":" + owner
}

// VendorProductsKey is the query key of a vendor's storefront.
func VendorProductsKey(id models.VendorID) string {
	return familyVendorProducts + ":" + strconv.FormatUint(uint64(id), 10)
}

// ProductKey is the query key of a product by ID.
func ProductKey(id models.ProductID) string {
	return familyProduct + ":" + strconv.FormatUint(uint64(id), 10)
}

func all(f string) string {
	return f + ":*"
}

// Keys invalidated by each mutation.

// The three authorization predicates share KeyAuthz.

func claimAppOwnerKeys() []string {
	return []string{KeyAppOwner, KeyAuthz}
}

func bootstrapFirstAdminKeys() []string {
	return []string{KeyAuthz, KeyAdmins}
}

func adminMutationKeys() []string {
	return []string{KeyAdmins, KeyAuthz}
}

// upsertVendorKeys drops every cached profile by ID when the ID is not known,
// as after a failed call.
func upsertVendorKeys(id models.VendorID, known bool) []string {
	byID := all(familyVendor)
	if known {
		byID = VendorKey(id)
	}
	return []string{KeyCallerVendorProfile, KeyAllVendors, KeyVerifiedVendors, byID, all(familyVendorByOwner)}
}

func verifyVendorKeys(id models.VendorID) []string {
	return []string{
		KeyAllVendors, KeyVerifiedVendors, VendorKey(id), all(familyVendorByOwner),
		KeyCallerVendorProfile, VendorProductsKey(id), KeyVerifiedProducts,
	}
}

func productListKeys() []string {
	return []string{KeyCallerProducts, KeyPublishedProducts, KeyVerifiedProducts, all(familyVendorProducts)}
}

// createProductKeys includes the new product's own entry, which may hold an
// earlier None. Without a known ID every product entry is dropped.
func createProductKeys(id models.ProductID, known bool) []string {
	if !known {
		return append(productListKeys(), all(familyProduct))
	}
	return append(productListKeys(), ProductKey(id))
}

func updateProductKeys(id models.ProductID) []string {
	return append(productListKeys(), ProductKey(id))
}
