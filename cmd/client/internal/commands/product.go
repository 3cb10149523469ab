package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/atinyakov/GophMarket/internal/client/marketplace"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/money"
)

// ProductCmd groups the product commands.
type ProductCmd struct {
	List   ProductListCmd   `cmd:"" default:"1" help:"List published products"`
	Show   ProductShowCmd   `cmd:"" help:"Show a product by ID"`
	Create ProductCreateCmd `cmd:"" help:"Create a product"`
	Update ProductUpdateCmd `cmd:"" help:"Update one of your products"`
}

type ProductListCmd struct {
	Verified bool `help:"Only products of verified vendors" xor:"scope"`
	Mine     bool `help:"Your own products, drafts included" xor:"scope"`
}

func (c *ProductListCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	list := client.PublishedProducts
	switch {
	case c.Verified:
		list = client.VerifiedProducts
	case c.Mine:
		list = client.CallerProducts
	}
	products, err := list(ctx)
	if err != nil {
		return err
	}
	globals.printProducts(products)
	return nil
}

type ProductShowCmd struct {
	ID uint64 `arg:"" help:"Product ID"`
}

func (c *ProductShowCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	p, err := client.Product(ctx, models.ProductID(c.ID))
	if err != nil {
		return err
	}
	return globals.printOption(p)
}

// ProductFields are the user-facing product attributes. Price is a decimal
// amount such as "19.99".
type ProductFields struct {
	Title       string `help:"Title" required:""`
	Description string `help:"Description"`
	Price       string `help:"Price, e.g. 19.99" required:""`
	Currency    string `help:"ISO 4217 currency code" default:"USD"`
	Image       string `help:"Image URL"`
	Category    string `help:"Category"`
	Publish     bool   `help:"Publish the product"`
}

// Input converts the fields into a ProductInput with the price in minor units.
func (f ProductFields) Input() (models.ProductInput, error) {
	price, err := marketplace.ParsePrice(f.Price, f.Currency)
	if err != nil {
		return models.ProductInput{}, err
	}
	return models.ProductInput{
		Title:       f.Title,
		Description: f.Description,
		Price:       price,
		Currency:    f.Currency,
		ImageURL:    f.Image,
		Category:    f.Category,
		IsPublished: f.Publish,
	}, nil
}

type ProductCreateCmd struct {
	ProductFields `embed:""`
}

func (c *ProductCreateCmd) Run(ctx context.Context, globals *Globals) error {
	in, err := c.Input()
	if err != nil {
		return err
	}
	client, err := globals.Client()
	if err != nil {
		return err
	}
	id, err := client.CreateProduct(ctx, in)
	if err != nil {
		return err
	}
	globals.println("product", id, "created")
	return nil
}

type ProductUpdateCmd struct {
	ID            uint64 `arg:"" help:"Product ID"`
	ProductFields `embed:""`
}

func (c *ProductUpdateCmd) Run(ctx context.Context, globals *Globals) error {
	in, err := c.Input()
	if err != nil {
		return err
	}
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.UpdateProduct(ctx, models.ProductID(c.ID), in); err != nil {
		return err
	}
	globals.println("product", c.ID, "updated")
	return nil
}

func (g *Globals) printProducts(products []models.Product) {
	w := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tPUBLISHED\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\n", p.ID, p.Title, money.Format(p.Price, p.Currency), p.IsPublished, p.Category)
	}
	_ = w.Flush()
}
