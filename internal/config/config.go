// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"server_address"`

	// DatabaseDSN holds the database connection string. Empty selects the in-memory store.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// TLSCert, TLSKey and TLSCA point at the server key pair and the CA that
	// signs client certificates.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`
	TLSCA   string `json:"tls_ca"`

	// JWTPublicKey is the path to a PEM RSA public key. Empty disables bearer tokens.
	JWTPublicKey string `json:"jwt_public_key"`

	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string `json:"cors_origins"`

	LogLevel string `json:"log_level"`
}

// Parse reads os.Args and the environment. It exits the process on invalid input.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return opts
}

// ParseArgs resolves options in increasing precedence: defaults, config file,
// explicitly set flags, environment variables.
func ParseArgs(args []string, getenv func(string) string) (*Options, error) {
	opts := &Options{}
	var origins string

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.StringVar(&opts.Port, "a", "localhost:8443", "run on ip:port server")
	flags.StringVar(&opts.DatabaseDSN, "d", "", "db address (empty: in-memory store)")
	flags.StringVar(&opts.Config, "config", "config.json", "path to config file")
	flags.StringVar(&opts.Config, "c", "config.json", "path to config file (shorthand)")
	flags.StringVar(&opts.TLSCert, "tls-cert", "certs/server.crt", "server certificate")
	flags.StringVar(&opts.TLSKey, "tls-key", "certs/server.key", "server private key")
	flags.StringVar(&opts.TLSCA, "tls-ca", "certs/ca.crt", "CA certificate for client verification")
	flags.StringVar(&opts.JWTPublicKey, "jwt-public-key", "", "RSA public key for bearer tokens")
	flags.StringVar(&origins, "cors-origins", "", "comma separated allowed CORS origins")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if configPath := getenv("CONFIG"); configPath != "" {
		opts.Config = configPath
	}

	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if opts.Config != "" {
		if err := opts.loadFile(set); err != nil {
			return nil, err
		}
	}
	if set["cors-origins"] {
		opts.CORSOrigins = splitList(origins)
	}

	if serverAddress := getenv("SERVER_ADDRESS"); serverAddress != "" {
		opts.Port = serverAddress
	}
	if dsn := getenv("DATABASE_DSN"); dsn != "" {
		opts.DatabaseDSN = dsn
	}
	if key := getenv("JWT_PUBLIC_KEY"); key != "" {
		opts.JWTPublicKey = key
	}
	if origins := getenv("CORS_ORIGINS"); origins != "" {
		opts.CORSOrigins = splitList(origins)
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		opts.LogLevel = level
	}
	return opts, nil
}

// loadFile overlays the config file onto opts, keeping values of flags set on the command line.
// A missing file is not an error.
func (o *Options) loadFile(set map[string]bool) error {
	data, err := os.ReadFile(o.Config)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}

	file := *o
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}

	keep := map[string]func(){
		"a":              func() { file.Port = o.Port },
		"d":              func() { file.DatabaseDSN = o.DatabaseDSN },
		"tls-cert":       func() { file.TLSCert = o.TLSCert },
		"tls-key":        func() { file.TLSKey = o.TLSKey },
		"tls-ca":         func() { file.TLSCA = o.TLSCA },
		"jwt-public-key": func() { file.JWTPublicKey = o.JWTPublicKey },
		"log-level":      func() { file.LogLevel = o.LogLevel },
	}
	for name, restore := range keep {
		if set[name] {
			restore()
		}
	}
	*o = file
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
