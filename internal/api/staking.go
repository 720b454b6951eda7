package api

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/scan2share/scan2share/internal/rewards"
)

type StakeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type PositionResponse struct {
	rewards.Position
	Pending decimal.Decimal `json:"pending"`
}

type StakingResponse struct {
	Positions []PositionResponse `json:"positions"`
	Pending   decimal.Decimal    `json:"pending"`
	Balance   decimal.Decimal    `json:"balance"`
}

type BalanceResponse struct {
	Address string          `json:"address,omitempty"`
	Balance decimal.Decimal `json:"balance"`
	Staked  decimal.Decimal `json:"staked"`
	Pending decimal.Decimal `json:"pending"`
	Earned  decimal.Decimal `json:"earned"`
}

// ListStaking handles GET /api/staking
func (h *Handler) ListStaking(w http.ResponseWriter, r *http.Request) {
	now := h.rewards.Now()
	positions := h.rewards.Staked()

	resp := StakingResponse{
		Positions: make([]PositionResponse, 0, len(positions)),
		Pending:   h.rewards.AccrueRewards(),
		Balance:   h.rewards.Balance(),
	}
	for _, p := range positions {
		resp.Positions = append(resp.Positions, PositionResponse{Position: p, Pending: p.RewardAt(now)})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stake handles POST /api/staking
func (h *Handler) Stake(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter := h.checkRateLimit(r, "stake", h.cfg.StakeRateLimit)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	var req StakeRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	pos, err := h.rewards.Stake(r.Context(), req.Amount)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pos)
}

// Unstake handles DELETE /api/staking/{id}
func (h *Handler) Unstake(w http.ResponseWriter, r *http.Request) {
	allowed, retryAfter := h.checkRateLimit(r, "stake", h.cfg.StakeRateLimit)
	if !allowed {
		writeRateLimited(w, retryAfter)
		return
	}

	result, err := h.rewards.Unstake(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Balance handles GET /api/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	staked := decimal.Zero
	for _, p := range h.rewards.Staked() {
		staked = staked.Add(p.Amount)
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		Address: h.rewards.Address(),
		Balance: h.rewards.Balance(),
		Staked:  staked,
		Pending: h.rewards.AccrueRewards(),
		Earned:  h.rewards.TotalEarned(),
	})
}
