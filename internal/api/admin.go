package api

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type VerifyShareRequest struct {
	Reward *decimal.Decimal `json:"reward,omitempty"`
}

// VerifyShare handles POST /api/admin/shares/{id}/verify. The reward
// defaults to the configured per-share reward.
func (h *Handler) VerifyShare(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, http.StatusUnauthorized, "admin authentication required")
		return
	}

	var req VerifyShareRequest
	if !h.decodeBody(w, r, &req, true) {
		return
	}

	reward := h.cfg.ShareReward
	if req.Reward != nil {
		reward = *req.Reward
	}

	share, err := h.rewards.VerifyShare(r.Context(), r.PathValue("id"), reward)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, share)
}
