package api

import (
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/scan2share/scan2share/internal/rewards"
)

type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Date        string   `json:"date"`
	Location    string   `json:"location" validate:"max=200"`
	Hashtags    []string `json:"hashtags" validate:"max=20,dive,max=64"`
	StartMs     *int64   `json:"start_ms,omitempty"`
	EndMs       *int64   `json:"end_ms,omitempty"`
}

type EventResponse struct {
	rewards.Event
	ShareURL string `json:"share_url"`
}

type ListEventsResponse struct {
	Events     []EventResponse `json:"events"`
	PastEvents []EventResponse `json:"past_events"`
	Purged     int             `json:"purged"`
}

type ShareImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type SharePageResponse struct {
	Event    EventResponse     `json:"event"`
	PostText string            `json:"post_text"`
	Intents  map[string]string `json:"intents"`
}

func (h *Handler) eventResponse(e rewards.Event) EventResponse {
	return EventResponse{Event: e, ShareURL: rewards.ShareURL(h.cfg.BaseURL, e.ShortCode)}
}

func (h *Handler) eventResponses(events []rewards.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, h.eventResponse(e))
	}
	return out
}

// ListEvents handles GET /api/events. Expired events are moved to the past
// list before listing.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	purged := h.rewards.PurgeExpiredEvents(r.Context())

	writeJSON(w, http.StatusOK, ListEventsResponse{
		Events:     h.eventResponses(h.rewards.Events()),
		PastEvents: h.eventResponses(h.rewards.PastEvents()),
		Purged:     purged,
	})
}

// CreateEvent handles POST /api/events. Start defaults to now, end to start
// and date to the start's calendar day.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	start := h.rewards.Now()
	if req.StartMs != nil {
		start = time.UnixMilli(*req.StartMs).UTC()
	}
	end := start
	if req.EndMs != nil {
		end = time.UnixMilli(*req.EndMs).UTC()
	}
	date := req.Date
	if date == "" {
		date = start.Format(time.DateOnly)
	}

	event, err := h.rewards.CreateEvent(r.Context(), rewards.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
		Hashtags:    req.Hashtags,
		Start:       start,
		End:         end,
	})
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.eventResponse(event))
}

// AttachShareImage handles PUT /api/events/{id}/share-image
func (h *Handler) AttachShareImage(w http.ResponseWriter, r *http.Request) {
	var req ShareImageRequest
	if !h.decodeBody(w, r, &req, false) {
		return
	}

	if err := h.rewards.AttachShareImage(r.Context(), r.PathValue("id"), req.Image); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteEvent handles DELETE /api/events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.rewards.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePastEvent handles DELETE /api/past-events/{id}
func (h *Handler) DeletePastEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.rewards.DeletePastEvent(r.Context(), r.PathValue("id")); err != nil {
		h.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SharePage handles GET /api/share/{code}: the event behind a short code
// with a suggested post and compose links for each platform.
func (h *Handler) SharePage(w http.ResponseWriter, r *http.Request) {
	event, err := h.rewards.EventByShortCode(r.PathValue("code"))
	if err != nil {
		if errors.Is(err, rewards.ErrEventEnded) {
			writeError(w, http.StatusGone, "event has ended; sharing is disabled")
			return
		}
		h.writeStoreError(w, err)
		return
	}

	resp := h.eventResponse(event)
	text := rewards.PostText(event)
	writeJSON(w, http.StatusOK, SharePageResponse{
		Event:    resp,
		PostText: text,
		Intents: map[string]string{
			string(rewards.PlatformTwitter):  rewards.IntentURL(rewards.PlatformTwitter, text, resp.ShareURL),
			string(rewards.PlatformLinkedIn): rewards.IntentURL(rewards.PlatformLinkedIn, text, resp.ShareURL),
		},
	})
}
