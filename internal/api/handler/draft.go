// Package handler provides HTTP handlers for the Wanderplan engine API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/wanderplan/wanderplan/internal/api/response"
	"github.com/wanderplan/wanderplan/internal/draft"
)

// DraftHandler handles trip draft endpoints.
type DraftHandler struct {
	builder *draft.Builder
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(builder *draft.Builder) *DraftHandler {
	return &DraftHandler{builder: builder}
}

// GetDraft handles GET /v1/draft - return the current draft.
func (h *DraftHandler) GetDraft(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, h.builder.Current())
}

// UpdateDraft handles PATCH /v1/draft - merge a partial update into the draft.
func (h *DraftHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch draft.TripPlanPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	response.JSON(w, http.StatusOK, h.builder.Update(patch))
}

// ResetDraft handles POST /v1/draft:reset - reset the draft to defaults.
func (h *DraftHandler) ResetDraft(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, h.builder.Reset())
}

// SaveDraft handles POST /v1/draft:save - persist the current draft.
func (h *DraftHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.builder.Save(r.Context()); err != nil {
		// The in-memory draft stays authoritative; surface the write
		// failure so the shell can decide whether to retry.
		response.ServiceUnavailable(w, r, "draft could not be persisted")
		return
	}
	response.NoContent(w)
}

// LoadDraft handles POST /v1/draft:load - reload the persisted draft.
func (h *DraftHandler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.builder.Load(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, "draft could not be read")
		return
	}
	response.JSON(w, http.StatusOK, h.builder.Current())
}

// ClearDraft handles DELETE /v1/draft - remove the persisted draft and reset.
func (h *DraftHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.builder.Clear(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, "persisted draft could not be removed")
		return
	}
	response.NoContent(w)
}

// pilotSeenBody is the wire form of the pilot wizard flag.
type pilotSeenBody struct {
	Seen bool `json:"seen"`
}

// GetPilotSeen handles GET /v1/draft/pilot-seen.
func (h *DraftHandler) GetPilotSeen(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, pilotSeenBody{Seen: h.builder.PilotSeen(r.Context())})
}

// SetPilotSeen handles PUT /v1/draft/pilot-seen.
func (h *DraftHandler) SetPilotSeen(w http.ResponseWriter, r *http.Request) {
	var body pilotSeenBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.builder.SetPilotSeen(r.Context(), body.Seen); err != nil {
		response.ServiceUnavailable(w, r, "pilot wizard flag could not be persisted")
		return
	}
	response.NoContent(w)
}
