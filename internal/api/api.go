package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/scan2share/scan2share/internal/auth"
	"github.com/scan2share/scan2share/internal/config"
	"github.com/scan2share/scan2share/internal/ratelimit"
	"github.com/scan2share/scan2share/internal/rewards"
)

// Handler holds dependencies for API handlers
type Handler struct {
	rewards  *rewards.Store
	auth     *auth.Service
	limiter  ratelimit.Limiter
	cfg      *config.Config
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new API handler
func NewHandler(rs *rewards.Store, authSvc *auth.Service, limiter ratelimit.Limiter, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		rewards:  rs,
		auth:     authSvc,
		limiter:  limiter,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
}

// Response helpers

type ErrorResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeRateLimited(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
		Error:      "rate limit exceeded",
		RetryAfter: retryAfter,
	})
}

// writeStoreError maps a rewards error onto its HTTP status.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rewards.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, rewards.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, rewards.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, rewards.ErrEventEnded):
		writeError(w, http.StatusGone, err.Error())
	default:
		h.logger.Error("rewards operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Request helpers

// decodeBody decodes a JSON body into dst and validates it. An empty body is
// accepted when allowEmpty is set.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return false
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

func (h *Handler) getClientIP(r *http.Request) string {
	// Check X-Forwarded-For first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	// Check X-Real-IP
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	// Fall back to RemoteAddr
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func (h *Handler) getToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func (h *Handler) validateToken(r *http.Request) (*auth.Session, error) {
	tokenStr := h.getToken(r)
	if tokenStr == "" {
		return nil, nil
	}
	return h.auth.ValidateToken(tokenStr)
}

func (h *Handler) checkRateLimit(r *http.Request, action string, limit int) (bool, int) {
	key := action + ":" + auth.HashIP(h.getClientIP(r))
	if address := GetAddressFromContext(r.Context()); address != "" {
		key += ":" + address
	}

	if !h.limiter.Allow(key, limit, h.cfg.RateLimitWindow) {
		retryAfter := int(h.limiter.RetryAfter(key, h.cfg.RateLimitWindow).Seconds())
		return false, retryAfter
	}

	return true, 0
}

func (h *Handler) isAdmin(r *http.Request) bool {
	secret := r.Header.Get("X-Admin-Secret")
	return h.cfg.AdminSecret != "" && secret == h.cfg.AdminSecret
}
