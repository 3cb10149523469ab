package commands

import (
	"context"
	"fmt"

	"github.com/atinyakov/GophMarket/internal/client/rolemode"
)

// RoleCmd groups the role-mode commands.
type RoleCmd struct {
	Show   RoleShowCmd   `cmd:"" default:"1" help:"Show the selected role"`
	Select RoleSelectCmd `cmd:"" help:"Select a role (admin or vendor)"`
	Check  RoleCheckCmd  `cmd:"" help:"Check access for a role against the backend"`
	Clear  RoleClearCmd  `cmd:"" help:"Forget the selected role"`
}

type RoleShowCmd struct{}

func (c *RoleShowCmd) Run(ctx context.Context, globals *Globals) error {
	m, err := rolemode.NewStore(globals.State).Load()
	if err != nil {
		return err
	}
	globals.println(m)
	return nil
}

type RoleSelectCmd struct {
	Mode string `arg:"" enum:"admin,vendor" help:"Role to act in"`
}

func (c *RoleSelectCmd) Run(ctx context.Context, globals *Globals) error {
	m, err := rolemode.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	client, err := globals.Client()
	if err != nil {
		return err
	}
	sel := globals.Selector(client)
	if err := sel.Select(m); err != nil {
		return err
	}
	return report(ctx, globals, sel, m)
}

type RoleCheckCmd struct {
	Mode string `arg:"" enum:"admin,vendor" help:"Role to check"`
}

func (c *RoleCheckCmd) Run(ctx context.Context, globals *Globals) error {
	m, err := rolemode.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	client, err := globals.Client()
	if err != nil {
		return err
	}
	return report(ctx, globals, globals.Selector(client), m)
}

type RoleClearCmd struct{}

func (c *RoleClearCmd) Run(ctx context.Context, globals *Globals) error {
	if err := rolemode.NewStore(globals.State).Clear(); err != nil {
		return err
	}
	globals.println("role cleared")
	return nil
}

func report(ctx context.Context, globals *Globals, sel *rolemode.Selector, m rolemode.Mode) error {
	access, err := sel.Guard(ctx, m)
	switch access {
	case rolemode.Granted:
		globals.println(m, "access granted")
	case rolemode.Bootstrap:
		globals.println("no admin exists yet; run `admin bootstrap` to become the first admin")
	case rolemode.Denied:
		globals.println(m, "access denied; select a role again")
	case rolemode.SelectRole:
		globals.println("select a role first")
	default:
		return fmt.Errorf("access unknown: %w", err)
	}
	return nil
}
