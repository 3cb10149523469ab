// Package commands implements the marketplace CLI subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atinyakov/GophMarket/internal/client/marketplace"
	"github.com/atinyakov/GophMarket/internal/client/rolemode"
)

// Globals carries connection settings shared by every command.
type Globals struct {
	Server  string
	CA      string
	Cert    string
	Key     string
	Token   string
	State   string
	Timeout time.Duration
	Version string

	// Out receives command output; stdout when nil.
	Out io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// Client builds a marketplace client from the connection settings. Without a
// CA the server URL is used with the system trust store.
func (g *Globals) Client() (*marketplace.Client, error) {
	opts := []marketplace.Option{}
	if g.CA != "" {
		cfg, err := marketplace.LoadTLSConfig(marketplace.TLSFiles{CA: g.CA, Cert: g.Cert, Key: g.Key})
		if err != nil {
			return nil, err
		}
		opts = append(opts, marketplace.WithHTTPClient(marketplace.NewHTTPClient(cfg, g.Timeout)))
	}
	if g.Token != "" {
		opts = append(opts, marketplace.WithBearerToken(g.Token))
	}
	return marketplace.New(g.Server, opts...)
}

// Selector returns the role-mode selector backed by the state file.
func (g *Globals) Selector(c *marketplace.Client) *rolemode.Selector {
	return rolemode.NewSelector(rolemode.NewStore(g.State), c)
}

func (g *Globals) printJSON(v any) error {
	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (g *Globals) println(a ...any) {
	fmt.Fprintln(g.out(), a...)
}
