package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/scan2share/scan2share/internal/rewards"
)

type RecordShareRequest struct {
	EventID  string `json:"event_id" validate:"required"`
	Platform string `json:"platform" validate:"required,oneof=twitter linkedin"`
	URL      string `json:"url" validate:"required,url"`
}

type ListSharesResponse struct {
	Shares      []rewards.ShareRecord `json:"shares"`
	TotalEarned decimal.Decimal       `json:"total_earned"`
}

// ListShares handles GET /api/shares
func (h *Handler) ListShares(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListSharesResponse{
		Shares:      h.rewards.Shares(),
		TotalEarned: h.rewards.TotalEarned(),
	})
}

// RecordShare handles POST /api/shares
func (h *Handler) RecordShare(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter := h.checkRateLimit(r, "share", h.cfg.ShareRateLimit)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	var req RecordShareRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	share, err := h.rewards.RecordShare(r.Context(), req.EventID, rewards.Platform(req.Platform), req.URL)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, share)
}
