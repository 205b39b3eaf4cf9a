package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config contains dependencies needed for the router setup
type Config struct {
	ItineraryHandler ItineraryHandler
	ChatHandler      ChatHandler
}

type ItineraryHandler interface {
	CreateItinerary(w http.ResponseWriter, r *http.Request)
	StorePOISearch(w http.ResponseWriter, r *http.Request)
	StoreHotelSearch(w http.ResponseWriter, r *http.Request)
}

type ChatHandler interface {
	Chat(w http.ResponseWriter, r *http.Request)
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) is applied in main.go
// before this router is mounted.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/itineraries", cfg.ItineraryHandler.CreateItinerary)
		r.Post("/chat", cfg.ChatHandler.Chat)

		r.Route("/searches", func(r chi.Router) {
			r.Post("/pois", cfg.ItineraryHandler.StorePOISearch)
			r.Post("/hotels", cfg.ItineraryHandler.StoreHotelSearch)
		})
	})

	return r
}
