package marketplace

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 10 * time.Second

// TLSFiles names the PEM files used to reach the backend. Cert and Key are
// optional: without them the client calls the backend anonymously.
type TLSFiles struct {
	CA   string
	Cert string
	Key  string
}

// LoadTLSConfig builds a TLS configuration trusting the CA and presenting the
// client certificate whose Common Name carries the caller's principal.
func LoadTLSConfig(files TLSFiles) (*tls.Config, error) {
	caCert, err := os.ReadFile(files.CA)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA cert")
	}

	cfg := &tls.Config{
		RootCAs:    caPool,
		MinVersion: tls.VersionTLS12,
	}
	if files.Cert == "" && files.Key == "" {
		return cfg, nil
	}
	cert, err := tls.LoadX509KeyPair(files.Cert, files.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert/key: %w", err)
	}
	cfg.Certificates = []tls.Certificate{cert}
	return cfg, nil
}

// NewHTTPClient returns an HTTP client using cfg. A zero timeout uses DefaultTimeout.
func NewHTTPClient(cfg *tls.Config, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Transport: &http.Transport{TLSClientConfig: cfg},
		Timeout:   timeout,
	}
}

// bearerTransport attaches a bearer token to every request.
type bearerTransport struct {
	token string
	next  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(req)
}
