// Package middleware provides HTTP middlewares for caller identity, request
// IDs, logging and metrics.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/atinyakov/GophMarket/internal/models"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

type ctxKey string

const (
	principalKey ctxKey = "principal"
	requestIDKey ctxKey = "request_id"
	stateKey     ctxKey = "request_state"
)

// requestState is shared by reference so outer middlewares can observe
// values set further down the chain.
type requestState struct {
	principal models.Principal
}

// PrincipalFromContext returns the caller's principal, or the anonymous
// principal if no identity was established.
func PrincipalFromContext(ctx context.Context) models.Principal {
	if p, ok := ctx.Value(principalKey).(models.Principal); ok && p != "" {
		return p
	}
	return models.AnonymousPrincipal
}

// ContextWithPrincipal stores the caller's principal in ctx.
func ContextWithPrincipal(ctx context.Context, p models.Principal) context.Context {
	if st, ok := ctx.Value(stateKey).(*requestState); ok {
		st.principal = p
	}
	return context.WithValue(ctx, principalKey, p)
}

func hasPrincipal(ctx context.Context) bool {
	_, ok := ctx.Value(principalKey).(models.Principal)
	return ok
}

// RequestIDFromContext returns the request ID, or "" outside RequestID.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// StatusWriter wraps http.ResponseWriter to capture the status code.
type StatusWriter struct {
	http.ResponseWriter
	Code int
}

// WriteHeader captures code and forwards it.
func (sw *StatusWriter) WriteHeader(code int) {
	sw.Code = code
	sw.ResponseWriter.WriteHeader(code)
}

func writeUnauthenticated(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:   "not_authenticated",
		Message: message,
	})
}
