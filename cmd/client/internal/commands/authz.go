package commands

import (
	"context"
)

// WhoAmICmd prints the caller's principal.
type WhoAmICmd struct{}

func (c *WhoAmICmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	p, err := client.WhoAmI(ctx)
	if err != nil {
		return err
	}
	globals.println(p)
	return nil
}

// AuthzCmd prints the caller's authorization predicates.
type AuthzCmd struct{}

func (c *AuthzCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	a, err := client.Authorization(ctx)
	if err != nil {
		return err
	}
	return globals.printJSON(map[string]bool{
		"isAppOwner":   a.IsAppOwner,
		"isAdmin":      a.IsAdmin,
		"hasAnyAdmin":  a.HasAnyAdmin,
		"isAuthorized": a.IsAuthorized(),
	})
}

// OwnerCmd groups the app owner commands.
type OwnerCmd struct {
	Show  OwnerShowCmd  `cmd:"" default:"1" help:"Show the app owner"`
	Claim OwnerClaimCmd `cmd:"" help:"Claim app ownership"`
}

type OwnerShowCmd struct{}

func (c *OwnerShowCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	owner, err := client.AppOwner(ctx)
	if err != nil {
		return err
	}
	if p, ok := owner.Get(); ok {
		globals.println(p)
		return nil
	}
	globals.println("unclaimed")
	return nil
}

type OwnerClaimCmd struct{}

func (c *OwnerClaimCmd) Run(ctx context.Context, globals *Globals) error {
	client, err := globals.Client()
	if err != nil {
		return err
	}
	if err := client.ClaimAppOwner(ctx); err != nil {
		return err
	}
	globals.println("app ownership claimed")
	return nil
}
