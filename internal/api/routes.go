package api

import "net/http"

// Register mounts the API on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Public API routes (read operations)
	mux.HandleFunc("GET /api/events", h.ListEvents)
	mux.HandleFunc("GET /api/share/{code}", h.SharePage)
	mux.HandleFunc("GET /api/shares", h.ListShares)
	mux.HandleFunc("GET /api/staking", h.ListStaking)
	mux.HandleFunc("GET /api/balance", h.Balance)

	// Auth flow (must be public to allow authentication)
	mux.HandleFunc("POST /api/auth/challenge", h.CreateChallenge)
	mux.HandleFunc("POST /api/auth/verify", h.VerifyChallenge)

	// Protected API routes (require a wallet session)
	mux.HandleFunc("POST /api/events", h.RequireAuth(h.CreateEvent))
	mux.HandleFunc("PUT /api/events/{id}/share-image", h.RequireAuth(h.AttachShareImage))
	mux.HandleFunc("DELETE /api/events/{id}", h.RequireAuth(h.DeleteEvent))
	mux.HandleFunc("DELETE /api/past-events/{id}", h.RequireAuth(h.DeletePastEvent))
	mux.HandleFunc("POST /api/shares", h.RequireAuth(h.RecordShare))
	mux.HandleFunc("POST /api/staking", h.RequireAuth(h.Stake))
	mux.HandleFunc("DELETE /api/staking/{id}", h.RequireAuth(h.Unstake))

	// Admin routes (requires admin secret)
	mux.HandleFunc("POST /api/admin/shares/{id}/verify", h.VerifyShare)
}
