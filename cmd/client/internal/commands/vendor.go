package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/atinyakov/GophMarket/internal/models"
)

// VendorCmd groups the vendor commands.
type VendorCmd struct {
	List     VendorListCmd     `cmd:"" default:"1" help:"List vendors"`
	Show     VendorShowCmd     `cmd:"" help:"Show a vendor by ID"`
	ByOwner  VendorByOwnerCmd  `cmd:"" name:"by-owner" help:"Show the vendor owned by a principal"`
	Mine     VendorMineCmd     `cmd:"" help:"Show your own vendor profile"`
	Upsert   VendorUpsertCmd   `cmd:"" help:"Create or update your vendor profile"`
	Verify   VendorVerifyCmd   `cmd:"" help:"Verify a vendor"`
	Products VendorProductsCmd `cmd:"" help:"List a vendor's storefront"`
}

type VendorListCmd struct {
	All bool `help:"Include unverified vendors (admins only)"`
}

func (c *VendorListCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	list := client.VerifiedVendors
	if c.All {
		list = client.AllVendors
	}
	vendors, err := list(ctx)
	if err != nil {
		return err
	}
	globals.printVendors(vendors)
	return nil
}

type VendorShowCmd struct {
	ID uint64 `arg:"" help:"Vendor ID"`
}

func (c *VendorShowCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	v, err := client.Vendor(ctx, models.VendorID(c.ID))
	if err != nil {
		return err
	}
	return globals.printOption(v)
}

type VendorByOwnerCmd struct {
	Principal string `arg:"" help:"Owning principal"`
}

func (c *VendorByOwnerCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	v, err := client.VendorByOwner(ctx, c.Principal)
	if err != nil {
		return err
	}
	return globals.printOption(v)
}

type VendorMineCmd struct{}

func (c *VendorMineCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	v, err := client.CallerVendorProfile(ctx)
	if err != nil {
		return err
	}
	return globals.printOption(v)
}

type VendorUpsertCmd struct {
	Company string `help:"Company name" required:""`
	Logo    string `help:"Logo URL"`
}

func (c *VendorUpsertCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	id, err := client.UpsertCallerVendorProfile(ctx, c.Company, c.Logo)
	if err != nil {
		return err
	}
	globals.println("vendor", id, "saved")
	return nil
}

type VendorVerifyCmd struct {
	ID uint64 `arg:"" help:"Vendor ID"`
}

func (c *VendorVerifyCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.VerifyVendor(ctx, models.VendorID(c.ID)); err != nil {
		return err
	}
	globals.println("vendor", c.ID, "verified")
	return nil
}

type VendorProductsCmd struct {
	ID uint64 `arg:"" help:"Vendor ID"`
}

func (c *VendorProductsCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	products, err := client.VendorProducts(ctx, models.VendorID(c.ID))
	if err != nil {
		return err
	}
	globals.printProducts(products)
	return nil
}

func (g *Globals) printVendors(vendors []models.VendorProfile) {
	w := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tVERIFIED\tOWNER")
	for _, v := range vendors {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", v.ID, v.CompanyName, v.IsVerified, v.Owner)
	}
	_ = w.Flush()
}

func (g *Globals) printOption(v interface{ IsSome() bool }) error {
	if !v.IsSome() {
		g.println("not found")
		return nil
	}
	return g.printJSON(v)
}
