package commands

import (
	"context"
)

// AdminCmd groups the admin allowlist commands.
type AdminCmd struct {
	List      AdminListCmd      `cmd:"" default:"1" help:"List admins"`
	Add       AdminAddCmd       `cmd:"" help:"Add an admin"`
	Remove    AdminRemoveCmd    `cmd:"" help:"Remove an admin"`
	Bootstrap AdminBootstrapCmd `cmd:"" help:"Become the first admin"`
}

type AdminListCmd struct{}

func (c *AdminListCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	admins, err := client.Admins(ctx)
	if err != nil {
		return err
	}
	for _, p := range admins {
		globals.println(p)
	}
	return nil
}

type AdminAddCmd struct {
	Principal string `arg:"" help:"Principal to add"`
}

func (c *AdminAddCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.AddAdmin(ctx, c.Principal); err != nil {
		return err
	}
	globals.println("added", c.Principal)
	return nil
}

type AdminRemoveCmd struct {
	Principal string `arg:"" help:"Principal to remove"`
}

func (c *AdminRemoveCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.RemoveAdmin(ctx, c.Principal); err != nil {
		return err
	}
	globals.println("removed", c.Principal)
	return nil
}

type AdminBootstrapCmd struct{}

func (c *AdminBootstrapCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.BootstrapFirstAdmin(ctx); err != nil {
		return err
	}
	globals.println("you are now the first admin")
	return nil
}
