package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const ContextKeyAddress contextKey = "address"

// RequireAuth returns middleware that requires a valid session token
func (h *Handler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := h.validateToken(r)
		if err != nil || session == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyAddress, session.Address)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetAddressFromContext returns the authenticated wallet address, if any.
func GetAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyAddress).(string); ok {
		return v
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests returns middleware that logs every request with its status
// and latency.
func LogRequests(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}
