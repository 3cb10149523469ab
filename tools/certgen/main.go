// Package main is the development identity provider: it generates a Certificate
// Authority, a server certificate and principal-bearing client certificates,
// writing them to files under the output directory.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/GophMarket/internal/identity"
)

func main() {
	var (
		dir     string
		hosts   string
		clients string
	)
	flag.StringVar(&dir, "out", "certs", "output directory")
	flag.StringVar(&hosts, "hosts", "localhost", "comma separated server DNS names")
	flag.StringVar(&clients, "clients", "owner,admin,vendor", "comma separated client certificate names")
	flag.Parse()

	principals, err := generate(dir, splitList(hosts), splitList(clients))
	if err != nil {
		log.Fatal(err)
	}

	for _, name := range splitList(clients) {
		fmt.Printf("%s\t%s\n", name, principals[name])
	}
	fmt.Printf("✅ Certificates generated into ./%s\n", dir)
}

// generate writes ca.{crt,key}, server.{crt,key} and <name>.{crt,key} for every client name.
// It returns the principal of each client certificate keyed by name.
func generate(dir string, hosts, clients []string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	caCert, caCreds, caKey, err := identity.NewCA("GophMarket CA")
	if err != nil {
		return nil, err
	}
	if err := writeCredentials(dir, "ca", caCreds); err != nil {
		return nil, err
	}

	serverCreds, err := identity.IssueServerCertificate(hosts, caCert, caKey)
	if err != nil {
		return nil, err
	}
	if err := writeCredentials(dir, "server", serverCreds); err != nil {
		return nil, err
	}

	principals := make(map[string]string, len(clients))
	for _, name := range clients {
		creds, err := identity.IssueClientCertificate(caCert, caKey)
		if err != nil {
			return nil, fmt.Errorf("issue %s: %w", name, err)
		}
		if err := writeCredentials(dir, name, creds); err != nil {
			return nil, err
		}
		principals[name] = creds.Principal.String()
	}
	return principals, nil
}

// writeCredentials writes <name>.crt and <name>.key; keys are only readable by the owner.
func writeCredentials(dir, name string, creds *identity.Credentials) error {
	if err := os.WriteFile(filepath.Join(dir, name+".crt"), creds.CertPEM, 0o644); err != nil {
		return fmt.Errorf("write %s.crt: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".key"), creds.KeyPEM, 0o600); err != nil {
		return fmt.Errorf("write %s.key: %w", name, err)
	}
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
