package api

import (
	"net/http"
	"time"

	"bookline/service"
	"bookline/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds the HTTP surface the UI layer consumes: read access to
// the entity store, the pure quote calculator, and the placement operation.
func NewRouter(st *store.Store, betting service.BettingService) http.Handler {
	h := NewHandler(st, betting)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/matches", h.ListMatches)
		r.Get("/matches/{matchID}", h.GetMatch)
		r.Get("/matches/{matchID}/primary-market", h.GetPrimaryMarket)
		r.Post("/quote", h.QuoteWager)
		r.Post("/wagers", h.PlaceWager)
		r.Get("/wagers", h.ListWagers)
		r.Get("/me", h.GetCurrentUser)
	})
	return r
}
