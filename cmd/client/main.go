// Package main is the marketplace command-line client.
package main

import (
	"context"
	"time"

	"github.com/alecthomas/kong"

	"github.com/atinyakov/GophMarket/cmd/client/internal/commands"
)

var (
	// version is set via ldflags.
	version = "dev"
	cli     struct {
		Server  string        `help:"Server base URL" default:"https://localhost:8443" env:"MARKETPLACE_SERVER"`
		CA      string        `help:"CA certificate used to verify the server" default:"certs/ca.crt" env:"MARKETPLACE_CA"`
		Cert    string        `help:"Client certificate carrying your principal" env:"MARKETPLACE_CERT"`
		Key     string        `help:"Client certificate key" env:"MARKETPLACE_KEY"`
		Token   string        `help:"Bearer token instead of a client certificate" env:"MARKETPLACE_TOKEN"`
		State   string        `help:"Local state file" default:"marketplace-state.json" env:"MARKETPLACE_STATE"`
		Timeout time.Duration `help:"Request timeout" default:"10s"`

		Whoami  commands.WhoAmICmd  `cmd:"" help:"Show your principal"`
		Authz   commands.AuthzCmd   `cmd:"" help:"Show your authorization"`
		Owner   commands.OwnerCmd   `cmd:"" help:"App owner"`
		Admin   commands.AdminCmd   `cmd:"" help:"Admin allowlist"`
		Vendor  commands.VendorCmd  `cmd:"" help:"Vendors"`
		Product commands.ProductCmd `cmd:"" help:"Products"`
		Role    commands.RoleCmd    `cmd:"" help:"Role mode"`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("gophmarket"),
		kong.Description("Marketplace client."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Server:  cli.Server,
		CA:      cli.CA,
		Cert:    cli.Cert,
		Key:     cli.Key,
		Token:   cli.Token,
		State:   cli.State,
		Timeout: cli.Timeout,
		Version: version,
	})
	cmd.FatalIfErrorf(err)
}
