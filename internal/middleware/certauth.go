package middleware

import (
	"net/http"

	"github.com/atinyakov/GophMarket/internal/identity"
	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// CertAuth establishes the caller's principal from the TLS client certificate.
//
// The server only verifies client certificates if given, so a request without
// one proceeds as anonymous. A verified certificate whose Common Name is not a
// valid principal is rejected with 401. If an earlier middleware has already
// established a principal, the request passes through untouched.
func CertAuth(m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasPrincipal(r.Context()) || r.TLS == nil || len(r.TLS.PeerCertificates) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			p, err := identity.PrincipalFromCertificate(r.TLS.PeerCertificates[0])
			if err != nil {
				m.RecordAuthValidation(r.Context(), "mtls", "failure")
				writeUnauthenticated(w, "client certificate does not carry a valid principal")
				return
			}
			m.RecordAuthValidation(r.Context(), "mtls", "success")
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}
