package middleware

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/models"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

const maxClockSkew = 30 * time.Second

var errMissingSubject = errors.New("token has no subject")

// LoadRSAPublicKey reads a PEM encoded RSA public key for BearerAuth.
func LoadRSAPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jwt public key: %w", err)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("parse jwt public key: %w", err)
	}
	return key, nil
}

// BearerAuth establishes the caller's principal from an RS256 bearer token
// whose "sub" claim is the principal text. Requests without an Authorization
// header pass through unchanged; an invalid token is rejected with 401.
func BearerAuth(key *rsa.PublicKey, m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := extractBearerToken(r)
			if !ok {
				m.RecordAuthValidation(r.Context(), "bearer", "failure")
				writeUnauthenticated(w, "malformed authorization header")
				return
			}

			p, err := principalFromToken(tokenStr, key)
			if err != nil {
				m.RecordAuthValidation(r.Context(), "bearer", "failure")
				writeUnauthenticated(w, "invalid or expired token")
				return
			}

			m.RecordAuthValidation(r.Context(), "bearer", "success")
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

func principalFromToken(tokenStr string, key *rsa.PublicKey) (models.Principal, error) {
	// Only RS256 is accepted, which rules out algorithm confusion.
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(maxClockSkew),
	)
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errMissingSubject
	}
	return identity.ParseUser(sub)
}

func extractBearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
