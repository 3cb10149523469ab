package identity

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Credentials is a PEM-encoded certificate, its private key and the principal it carries.
type Credentials struct {
	CertPEM   []byte
	KeyPEM    []byte
	Principal models.Principal
}

// LoadCACredentials loads a CA certificate and its private key from PEM files.
// EC and RSA keys are supported.
func LoadCACredentials(certPath, keyPath string) (*x509.Certificate, crypto.Signer, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read ca cert: %w", err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("read ca key: %w", err)
	}
	return ParseCACredentials(certPEM, keyPEM)
}

// ParseCACredentials parses a PEM-encoded CA certificate and private key.
func ParseCACredentials(certPEM, keyPEM []byte) (*x509.Certificate, crypto.Signer, error) {
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil || certBlock.Type != "CERTIFICATE" {
		return nil, nil, errors.New("invalid CA cert PEM")
	}
	caCert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("parse ca cert: %w", err)
	}

	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, nil, errors.New("invalid CA key PEM")
	}
	var caKey crypto.Signer
	switch keyBlock.Type {
	case "EC PRIVATE KEY":
		caKey, err = x509.ParseECPrivateKey(keyBlock.Bytes)
	case "RSA PRIVATE KEY":
		caKey, err = x509.ParsePKCS1PrivateKey(keyBlock.Bytes)
	default:
		return nil, nil, fmt.Errorf("unsupported key type: %s", keyBlock.Type)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse ca key: %w", err)
	}

	return caCert, caKey, nil
}

// NewCA creates a self-signed ECDSA P-256 certificate authority valid for ten years.
func NewCA(commonName string) (*x509.Certificate, *Credentials, crypto.Signer, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("gen key: %w", err)
	}
	serial, err := serialNumber()
	if err != nil {
		return nil, nil, nil, err
	}
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now().Add(-1 * time.Minute),
		NotAfter:              time.Now().AddDate(10, 0, 0),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create cert: %w", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse cert: %w", err)
	}
	creds, err := encode(certDER, priv, "")
	if err != nil {
		return nil, nil, nil, err
	}
	return cert, creds, priv, nil
}

// IssueServerCertificate issues a TLS server certificate for the given DNS names.
func IssueServerCertificate(dnsNames []string, caCert *x509.Certificate, caKey crypto.Signer) (*Credentials, error) {
	if len(dnsNames) == 0 {
		return nil, errors.New("at least one DNS name is required")
	}
	return issue(caCert, caKey, func(*ecdsa.PrivateKey) (*x509.Certificate, models.Principal, error) {
		return &x509.Certificate{
			Subject:     pkix.Name{CommonName: dnsNames[0]},
			DNSNames:    dnsNames,
			NotAfter:    time.Now().AddDate(1, 0, 0),
			KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
			ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		}, "", nil
	})
}

// IssueClientCertificate generates a fresh ECDSA P-256 key and a client
// certificate whose Common Name is the self-authenticating principal of that key.
func IssueClientCertificate(caCert *x509.Certificate, caKey crypto.Signer) (*Credentials, error) {
	return issue(caCert, caKey, func(priv *ecdsa.PrivateKey) (*x509.Certificate, models.Principal, error) {
		pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
		if err != nil {
			return nil, "", fmt.Errorf("marshal public key: %w", err)
		}
		principal := SelfAuthenticating(pubDER)
		return &x509.Certificate{
			Subject:     pkix.Name{CommonName: principal.String()},
			NotAfter:    time.Now().Add(365 * 24 * time.Hour),
			KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
			ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		}, principal, nil
	})
}

func issue(
	caCert *x509.Certificate,
	caKey crypto.Signer,
	build func(*ecdsa.PrivateKey) (*x509.Certificate, models.Principal, error),
) (*Credentials, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("gen key: %w", err)
	}
	template, principal, err := build(priv)
	if err != nil {
		return nil, err
	}
	if template.SerialNumber, err = serialNumber(); err != nil {
		return nil, err
	}
	template.NotBefore = time.Now().Add(-1 * time.Minute)

	certDER, err := x509.CreateCertificate(rand.Reader, template, caCert, &priv.PublicKey, caKey)
	if err != nil {
		return nil, fmt.Errorf("create cert: %w", err)
	}
	return encode(certDER, priv, principal)
}

func encode(certDER []byte, priv *ecdsa.PrivateKey, principal models.Principal) (*Credentials, error) {
	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("marshal priv key: %w", err)
	}
	return &Credentials{
		CertPEM:   pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER}),
		KeyPEM:    pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
		Principal: principal,
	}, nil
}

func serialNumber() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, fmt.Errorf("serial number: %w", err)
	}
	return serial, nil
}

// PrincipalFromCertificate returns the principal carried by a client certificate.
func PrincipalFromCertificate(cert *x509.Certificate) (models.Principal, error) {
	return ParseUser(cert.Subject.CommonName)
}
