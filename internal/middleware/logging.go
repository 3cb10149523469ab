package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/GophMarket/internal/telemetry"
)

// WithRequestLogging logs one line per request, including the principal
// established by identity middlewares further down the chain.
func WithRequestLogging(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &StatusWriter{ResponseWriter: w, Code: http.StatusOK}
			st := &requestState{}

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), stateKey, st)))

			principal := st.principal
			if principal == "" {
				principal = PrincipalFromContext(r.Context())
			}
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.Code),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.String("principal", principal.String()),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

// Metrics records request count and latency by route pattern.
func Metrics(m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &StatusWriter{ResponseWriter: w, Code: http.StatusOK}

			next.ServeHTTP(sw, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			m.RecordHTTPRequest(r.Context(), r.Method, route, sw.Code, time.Since(start).Seconds())
		})
	}
}
