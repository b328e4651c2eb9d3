package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wanderplan/wanderplan/internal/api/response"
	"github.com/wanderplan/wanderplan/internal/draft"
	"github.com/wanderplan/wanderplan/internal/itinerary"
)

// Generator produces a saved itinerary from a trip draft.
type Generator interface {
	Generate(ctx context.Context, request draft.TripDraftRequest) (*itinerary.SavedItinerary, error)
}

// ItineraryHandler handles saved itinerary endpoints.
type ItineraryHandler struct {
	store     *itinerary.Store
	builder   *draft.Builder
	generator Generator
}

// NewItineraryHandler creates a new ItineraryHandler.
func NewItineraryHandler(store *itinerary.Store, builder *draft.Builder, generator Generator) *ItineraryHandler {
	return &ItineraryHandler{
		store:     store,
		builder:   builder,
		generator: generator,
	}
}

// GetItinerary handles GET /v1/itinerary - return the loaded itinerary.
func (h *ItineraryHandler) GetItinerary(w http.ResponseWriter, r *http.Request) {
	it := h.store.Current()
	if it == nil {
		response.NotFound(w, r, "no itinerary loaded")
		return
	}
	response.JSON(w, http.StatusOK, it)
}

// SaveItinerary handles PUT /v1/itinerary - replace the itinerary wholesale.
func (h *ItineraryHandler) SaveItinerary(w http.ResponseWriter, r *http.Request) {
	var it itinerary.SavedItinerary
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.store.Save(r.Context(), it); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.JSON(w, http.StatusOK, h.store.Current())
}

// LoadItinerary handles POST /v1/itinerary:load - reload the persisted itinerary.
func (h *ItineraryHandler) LoadItinerary(w http.ResponseWriter, r *http.Request) {
	it, err := h.store.Load(r.Context())
	if err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be read")
		return
	}
	if it == nil {
		response.NotFound(w, r, "no itinerary persisted")
		return
	}
	response.JSON(w, http.StatusOK, it)
}

// ClearItinerary handles DELETE /v1/itinerary.
func (h *ItineraryHandler) ClearItinerary(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		response.ServiceUnavailable(w, r, "persisted itinerary could not be removed")
		return
	}
	response.NoContent(w)
}

// GenerateItinerary handles POST /v1/itinerary:generate - send the current
// draft to the generation service and save the result.
func (h *ItineraryHandler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	it, err := h.generator.Generate(r.Context(), h.builder.Current())
	if err != nil {
		response.ServiceUnavailable(w, r, "itinerary generation failed")
		return
	}

	if err := h.store.Save(r.Context(), *it); err != nil {
		response.ServiceUnavailable(w, r, "generated itinerary could not be persisted")
		return
	}
	response.JSON(w, http.StatusOK, h.store.Current())
}

// UpdateActivity handles PUT /v1/itinerary/days/{dayIndex}/activities/{activityId}.
// The engine preserves the activity's time and duration; a missing day or
// activity is a no-op.
func (h *ItineraryHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := dayIndexParam(w, r)
	if !ok {
		return
	}

	var act itinerary.PlannedActivity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.store.UpdateActivity(r.Context(), dayIndex, chi.URLParam(r, "activityId"), act); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.NoContent(w)
}

// RemoveActivity handles DELETE /v1/itinerary/days/{dayIndex}/activities/{activityId}.
func (h *ItineraryHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := dayIndexParam(w, r)
	if !ok {
		return
	}

	if err := h.store.RemoveActivity(r.Context(), dayIndex, chi.URLParam(r, "activityId")); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.NoContent(w)
}

// AddCustomActivity handles POST /v1/itinerary/days/{dayIndex}/activities.
func (h *ItineraryHandler) AddCustomActivity(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := dayIndexParam(w, r)
	if !ok {
		return
	}

	var act itinerary.PlannedActivity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.store.AddCustomActivity(r.Context(), dayIndex, act); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.NoContent(w)
}

// paymentStatusBody is the wire form of a payment status update.
type paymentStatusBody struct {
	PaymentStatus itinerary.PaymentStatus `json:"paymentStatus"`
}

// UpdatePaymentStatus handles PUT .../activities/{activityId}/payment-status.
func (h *ItineraryHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := dayIndexParam(w, r)
	if !ok {
		return
	}

	var body paymentStatusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	if body.PaymentStatus != itinerary.PaymentPending && body.PaymentStatus != itinerary.PaymentPaid {
		response.BadRequest(w, r, "paymentStatus must be pending or paid")
		return
	}

	if err := h.store.UpdatePaymentStatus(r.Context(), dayIndex, chi.URLParam(r, "activityId"), body.PaymentStatus); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.NoContent(w)
}

// noteBody is the wire form of a note update.
type noteBody struct {
	Note string `json:"note"`
}

// UpdateNote handles PUT .../activities/{activityId}/note.
func (h *ItineraryHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	dayIndex, ok := dayIndexParam(w, r)
	if !ok {
		return
	}

	var body noteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	if err := h.store.UpdateNote(r.Context(), dayIndex, chi.URLParam(r, "activityId"), body.Note); err != nil {
		response.ServiceUnavailable(w, r, "itinerary could not be persisted")
		return
	}
	response.NoContent(w)
}

// dayIndexParam parses the dayIndex URL parameter, answering 400 on a
// non-numeric value. Out-of-range indices are left to the store's no-op
// semantics.
func dayIndexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	dayIndex, err := strconv.Atoi(chi.URLParam(r, "dayIndex"))
	if err != nil {
		response.BadRequest(w, r, "dayIndex must be an integer")
		return 0, false
	}
	return dayIndex, true
}
