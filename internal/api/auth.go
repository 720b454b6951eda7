package api

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/scan2share/scan2share/internal/auth"
)

type ChallengeRequest struct {
	Address string `json:"address" validate:"required"`
}

type ChallengeResponse struct {
	Message   string `json:"message"`
	Nonce     string `json:"nonce"`
	ExpiresAt string `json:"expires_at"`
}

type VerifyRequest struct {
	Address   string `json:"address" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at"`
	Address     string `json:"address"`
}

// CreateChallenge handles POST /api/auth/challenge
func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	challenge, err := h.auth.CreateChallenge(req.Address)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, "invalid wallet address")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create challenge")
		return
	}

	writeJSON(w, http.StatusOK, ChallengeResponse{
		Message:   challenge.Message,
		Nonce:     challenge.Nonce,
		ExpiresAt: challenge.ExpiresAt.Format("2006-01-02T15:04:05Z"),
	})
}

// VerifyChallenge handles POST /api/auth/verify. A successful login also
// becomes the store's connected address.
func (h *Handler) VerifyChallenge(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	session, err := h.auth.VerifyChallenge(req.Address, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidAddress):
			writeError(w, http.StatusBadRequest, "invalid wallet address")
		case errors.Is(err, auth.ErrInvalidSignature):
			writeError(w, http.StatusUnauthorized, "invalid signature")
		case errors.Is(err, auth.ErrChallengeNotFound), errors.Is(err, auth.ErrChallengeExpired):
			writeError(w, http.StatusBadRequest, "challenge expired or not found")
		default:
			writeError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	if err := h.rewards.SetAddress(r.Context(), session.Address); err != nil {
		h.logger.Warn("set connected address", zap.String("address", session.Address), zap.Error(err))
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		AccessToken: session.Token,
		ExpiresAt:   session.ExpiresAt.Format("2006-01-02T15:04:05Z"),
		Address:     session.Address,
	})
}
