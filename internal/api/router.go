// Package api provides the HTTP facade over the Wanderplan trip engine.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wanderplan/wanderplan/internal/api/handler"
	"github.com/wanderplan/wanderplan/internal/api/middleware"
	"github.com/wanderplan/wanderplan/internal/draft"
	"github.com/wanderplan/wanderplan/internal/itinerary"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version        string
	BuildTime      string
	Logger         zerolog.Logger
	DraftBuilder   *draft.Builder
	ItineraryStore *itinerary.Store
	Generator      handler.Generator
}

// NewRouter creates a chi router with all engine routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequireJSON)
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime)
	draftHandler := handler.NewDraftHandler(cfg.DraftBuilder)
	itineraryHandler := handler.NewItineraryHandler(cfg.ItineraryStore, cfg.DraftBuilder, cfg.Generator)

	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)
	generateRateLimit := middleware.RateLimitByIP(middleware.GenerateRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (unlimited)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		// Trip draft
		r.Route("/draft", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", draftHandler.GetDraft)
			r.Patch("/", draftHandler.UpdateDraft)
			r.Delete("/", draftHandler.ClearDraft)
			r.Get("/pilot-seen", draftHandler.GetPilotSeen)
			r.Put("/pilot-seen", draftHandler.SetPilotSeen)
		})
		r.With(standardRateLimit).Post("/draft:reset", draftHandler.ResetDraft)
		r.With(standardRateLimit).Post("/draft:save", draftHandler.SaveDraft)
		r.With(standardRateLimit).Post("/draft:load", draftHandler.LoadDraft)

		// Saved itinerary
		r.Route("/itinerary", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", itineraryHandler.GetItinerary)
			r.Put("/", itineraryHandler.SaveItinerary)
			r.Delete("/", itineraryHandler.ClearItinerary)

			r.Route("/days/{dayIndex}/activities", func(r chi.Router) {
				r.Post("/", itineraryHandler.AddCustomActivity)
				r.Route("/{activityId}", func(r chi.Router) {
					r.Put("/", itineraryHandler.UpdateActivity)
					r.Delete("/", itineraryHandler.RemoveActivity)
					r.Put("/payment-status", itineraryHandler.UpdatePaymentStatus)
					r.Put("/note", itineraryHandler.UpdateNote)
				})
			})
		})
		r.With(standardRateLimit).Post("/itinerary:load", itineraryHandler.LoadItinerary)
		// Generation fans out to the external service - strict limit
		r.With(generateRateLimit).Post("/itinerary:generate", itineraryHandler.GenerateItinerary)
	})

	return r
}
